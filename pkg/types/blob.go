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
package types

import (
	"fmt"
)

// Blob - an encrypted record as it is held on disk.
//
// For current records the on-disk form is the marshalled Header followed by
// the ciphertext, the authentication tag being the trailing TAG_SIZE bytes of
// CT. Legacy records carry no header and are laid out as:
//
//	<iv><ct>
//
// Where <iv> is 16 bytes and <ct> is AES-CFB ciphertext with no integrity
// protection.
type Blob struct {
	Header Header
	CT     []byte
}

// IsZero - returns true if the Blob is empty
func (b Blob) IsZero() bool {
	return b.Header.Version == 0 && b.Header.IV == nil && b.CT == nil
}

// MarshalBinary - convert a Blob to the bytes written to disk
func (b Blob) MarshalBinary() ([]byte, error) {
	if b.Header.IsLegacy() {
		if len(b.Header.IV) != IV_SIZE {
			return nil, fmt.Errorf("legacy blob requires a %d byte IV, got %d", IV_SIZE, len(b.Header.IV))
		}
		out := make([]byte, 0, IV_SIZE+len(b.CT))
		out = append(out, b.Header.IV...)
		return append(out, b.CT...), nil
	}

	h, err := b.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(h, b.CT...), nil
}

// UnmarshalBinary - convert bytes read from disk to a Blob
//
// Data which does not start with the sstore magic is treated as a legacy
// headerless record.
func (b *Blob) UnmarshalBinary(data []byte) error {
	if !HasMagic(data) {
		if len(data) < IV_SIZE {
			return DecryptionError{
				Reason: fmt.Sprintf("ciphertext is %d bytes, shorter than the %d byte IV", len(data), IV_SIZE),
			}
		}
		b.Header = Header{
			Version: 0,
			Cipher:  AesCfb256_Legacy,
			KDF:     KDFInfo{Type: KDFTypeNone},
			IV:      append([]byte(nil), data[:IV_SIZE]...),
		}
		b.CT = append([]byte(nil), data[IV_SIZE:]...)
		return nil
	}

	if err := b.Header.UnmarshalBinary(data); err != nil {
		return err
	}
	if len(data) < HEADER_SIZE+TAG_SIZE {
		return DecryptionError{
			Reason: fmt.Sprintf("ciphertext is %d bytes, shorter than the %d byte tag", len(data)-HEADER_SIZE, TAG_SIZE),
		}
	}
	b.CT = append([]byte(nil), data[HEADER_SIZE:]...)
	return nil
}

// StoredRecord describes a record written to disk by a store operation.
//
// The password, when one is used, is never part of the record and must be
// held by the caller.
type StoredRecord struct {
	Location     string
	Header       Header
	Size         int
	PasswordUsed bool
	Identifier   string
}
