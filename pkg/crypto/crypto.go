/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	cryptorand "crypto/rand"
	"fmt"
	"io"

	"github.com/notapipeline/sstore/pkg/types"
)

// randReader is the source for every IV and salt
var randReader io.Reader = cryptorand.Reader

// RandomBytes returns n bytes read from the cryptographically secure random
// source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// EncryptWith encrypts data with AES-256-GCM under key.
//
// A fresh IV is generated on every call and written into the header. The
// marshalled header is authenticated alongside the ciphertext so any change
// to it causes decryption to fail.
func EncryptWith(data []byte, header types.Header, key []byte) (types.Blob, error) {
	var b types.Blob
	if len(key) != types.KEY_SIZE {
		return b, fmt.Errorf("encrypt: key must be %d bytes, got %d", types.KEY_SIZE, len(key))
	}

	aead, err := newAEAD(key)
	if err != nil {
		return b, err
	}

	header.Version = types.FORMAT_VERSION
	header.Cipher = types.AesGcm256
	if header.IV, err = RandomBytes(types.IV_SIZE); err != nil {
		return b, err
	}

	var aad []byte
	if aad, err = header.MarshalBinary(); err != nil {
		return b, err
	}

	b.Header = header
	b.CT = aead.Seal(nil, header.IV, data, aad)
	return b, nil
}

// DecryptWith decrypts a blob with key, dispatching on the cipher recorded in
// the header.
func DecryptWith(b types.Blob, key []byte) ([]byte, error) {
	switch b.Header.Cipher {
	case types.AesGcm256:
	case types.AesCfb256_Legacy:
		if !b.Header.IsLegacy() {
			return nil, types.DecryptionError{Reason: "cipher AesCfb_Legacy is only valid for legacy records"}
		}
		return DecryptLegacy(b.Header.IV, b.CT, key)
	default:
		return nil, fmt.Errorf("decrypt: unsupported cipher type %q", b.Header.Cipher)
	}

	if len(key) != types.KEY_SIZE {
		return nil, types.DecryptionError{
			Reason: fmt.Sprintf("key must be %d bytes, got %d", types.KEY_SIZE, len(key)),
		}
	}
	if len(b.CT) < types.TAG_SIZE {
		return nil, types.DecryptionError{Reason: "ciphertext shorter than the authentication tag"}
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	var aad []byte
	if aad, err = b.Header.MarshalBinary(); err != nil {
		return nil, types.DecryptionError{Reason: "invalid header", Err: err}
	}

	var dst []byte
	if dst, err = aead.Open(nil, b.Header.IV, b.CT, aad); err != nil {
		return nil, types.DecryptionError{Reason: "authentication failed", Err: err}
	}
	return dst, nil
}

// DecryptLegacy decrypts headerless AES-CFB records.
//
// Legacy records carry no authentication tag so a wrong key or a damaged
// file decrypts to garbage rather than failing here.
func DecryptLegacy(iv, ct, key []byte) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, types.DecryptionError{
			Reason: fmt.Sprintf("legacy IV must be %d bytes, got %d", aes.BlockSize, len(iv)),
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, types.DecryptionError{Reason: "invalid legacy key", Err: err}
	}

	dst := make([]byte, len(ct))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(dst, ct)
	return dst, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, types.IV_SIZE)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}
