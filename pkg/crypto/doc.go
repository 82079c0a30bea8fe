/*
Package crypto provides the key derivation and enciphering functions used to
protect sstore records.

New records are encrypted with AES-256-GCM using a 16 byte IV which is freshly
generated for each call to EncryptWith. The record header is passed to the
cipher as additional data so that changes to either the header or the
ciphertext are detected on decryption.

Keys come from one of two places. Password protected records derive a root
key with DeriveKey using Argon2id (or PBKDF2) and a per-record random salt.
Password-less records use 32 random bytes held in the system keystore. In both
cases the root key is run through RecordKey before use.

Keys should be held in `memguard` buffers and destroyed as soon as the call
that needs them completes.

	package main

	import (
		"github.com/awnumar/memguard"
		"github.com/notapipeline/sstore/pkg/crypto"
		"github.com/notapipeline/sstore/pkg/types"
	)

	func main() {
		memguard.CatchInterrupt()
		defer memguard.Purge()

		salt, _ := crypto.RandomBytes(types.SALT_SIZE)
		root, err := crypto.DeriveKey([]byte("masterpw"), salt, types.DefaultKDF)
		if err != nil {
			panic(err)
		}
		rootBuf := memguard.NewBufferFromBytes(root) // root has now been wiped
		defer rootBuf.Destroy()

		header := types.Header{
			KeyMode: types.KeyModePassword,
			KDF:     types.DefaultKDF,
			Salt:    salt,
		}

		key, _ := crypto.RecordKey(rootBuf.Bytes(), header)
		keyBuf := memguard.NewBufferFromBytes(key)
		defer keyBuf.Destroy()

		blob, err := crypto.EncryptWith([]byte("secret"), header, keyBuf.Bytes())
		if err != nil {
			panic(err)
		}

		plain, err := crypto.DecryptWith(blob, keyBuf.Bytes())
		if err != nil {
			panic(err)
		}
		fmt.Println(string(plain)) // "secret"
	}

Records written before the header was introduced are laid out as
`IV || AES-CFB ciphertext` and are readable through DecryptLegacy. They carry
no authentication so a wrong key yields garbage rather than an error.
*/
package crypto
