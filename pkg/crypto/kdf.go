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
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/notapipeline/sstore/pkg/types"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives a KEY_SIZE byte root key from password and salt.
func DeriveKey(password, salt []byte, kdf types.KDFInfo) ([]byte, error) {
	if err := kdf.Validate(); err != nil {
		return nil, err
	}

	switch kdf.Type {
	case types.KDFTypePBKDF2:
		return pbkdf2.Key(password, salt, kdf.Iterations, types.KEY_SIZE, sha256.New), nil
	case types.KDFTypeArgon2id:
		return argon2.IDKey(password, salt, uint32(kdf.Iterations),
			uint32(kdf.Memory*1024), uint8(kdf.Parallelism), types.KEY_SIZE), nil
	default:
		return nil, fmt.Errorf("unsupported KDF type %d", kdf.Type)
	}
}

// DeriveLegacyKey derives the key used by headerless records.
//
// Legacy records were written with an empty salt so identical passwords
// always produce identical keys. Only use this for reading.
func DeriveLegacyKey(password []byte) []byte {
	return pbkdf2.Key(password, []byte{}, types.LEGACY_ITERATIONS, types.KEY_SIZE, sha256.New)
}

// RecordKey expands a root key into the data key for a single record.
//
// The record salt and the cipher/version are mixed in so a root key held in
// the keystore never directly keys the cipher.
func RecordKey(root []byte, header types.Header) ([]byte, error) {
	var info string = fmt.Sprintf("sstore/v%d/%s/%s", types.FORMAT_VERSION, types.AesGcm256, header.KeyMode)
	return ExpandKey(root, header.Salt, []byte(info))
}

// ExpandKey runs HKDF-SHA256 over the root key returning KEY_SIZE bytes.
func ExpandKey(root, salt, info []byte) ([]byte, error) {
	if len(root) == 0 {
		return nil, fmt.Errorf("cannot expand an empty key")
	}

	key := make([]byte, types.KEY_SIZE)
	r := hkdf.New(sha256.New, root, salt, info)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
