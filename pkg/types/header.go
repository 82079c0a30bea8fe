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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Header - every record written by sstore starts with a fixed size header
// which is also fed to the cipher as additional authenticated data.
//
// The format is:
//
//	<magic><version><cipher><keymode><kdf><iterations><memory><parallelism><salt><record><iv>
//
// Where:
//
//	<magic> is the 4 byte string "SSTR"
//	<version> is the format version - currently 1
//	<cipher> is the CipherType
//	<keymode> identifies where the key comes from (password or keystore)
//	<kdf> is the KDFType, 255 when the key is not derived
//	<iterations> and <memory> are big endian uint32, <parallelism> is a uint8
//	<salt> is 16 random bytes fed to the KDF and the key expansion
//	<record> is the record uuid
//	<iv> is 16 random bytes, fresh for every write
type Header struct {
	Version  int
	Cipher   CipherType
	KeyMode  KeyMode
	KDF      KDFInfo
	Salt     []byte
	RecordID uuid.UUID
	IV       []byte
}

type CipherType int

type KeyMode int

func (t CipherType) String() string {
	switch t {
	case AesCfb256_Legacy:
		return "AesCfb_Legacy"
	case AesGcm256:
		return "AesGcm256"
	}
	return fmt.Sprintf("CipherType(%d)", int(t))
}

func (m KeyMode) String() string {
	switch m {
	case KeyModePassword:
		return "password"
	case KeyModeKeystore:
		return "keystore"
	}
	return "unknown"
}

// IsLegacy is true for records written without a header
func (h Header) IsLegacy() bool {
	return h.Version == 0
}

// MarshalBinary - convert a Header to its on-disk representation
func (h Header) MarshalBinary() ([]byte, error) {
	if h.IsLegacy() {
		return nil, InvalidHeaderError{Reason: "legacy records have no header"}
	}
	if len(h.Salt) != SALT_SIZE {
		return nil, InvalidHeaderError{Reason: fmt.Sprintf("salt must be %d bytes, got %d", SALT_SIZE, len(h.Salt))}
	}
	if len(h.IV) != IV_SIZE {
		return nil, InvalidHeaderError{Reason: fmt.Sprintf("iv must be %d bytes, got %d", IV_SIZE, len(h.IV))}
	}

	var buf bytes.Buffer
	buf.Grow(HEADER_SIZE)
	buf.WriteString(MAGIC)
	buf.WriteByte(byte(h.Version))
	buf.WriteByte(byte(h.Cipher))
	buf.WriteByte(byte(h.KeyMode))
	buf.WriteByte(byte(h.KDF.Type))

	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(h.KDF.Iterations))
	buf.Write(b[:])
	binary.BigEndian.PutUint32(b[:], uint32(h.KDF.Memory))
	buf.Write(b[:])
	buf.WriteByte(byte(h.KDF.Parallelism))

	buf.Write(h.Salt)
	buf.Write(h.RecordID[:])
	buf.Write(h.IV)
	return buf.Bytes(), nil
}

// UnmarshalBinary - read a Header from the first HEADER_SIZE bytes of data
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HEADER_SIZE {
		return InvalidHeaderError{Reason: fmt.Sprintf("expected %d bytes, got %d", HEADER_SIZE, len(data))}
	}
	if !bytes.Equal(data[:len(MAGIC)], []byte(MAGIC)) {
		return InvalidHeaderError{Reason: "missing magic"}
	}

	var p int = len(MAGIC)
	h.Version = int(data[p])
	if h.Version != FORMAT_VERSION {
		return UnsupportedVersionError{Value: h.Version}
	}

	h.Cipher = CipherType(data[p+1])
	if h.Cipher != AesGcm256 {
		return InvalidHeaderError{Reason: fmt.Sprintf("unsupported cipher %s", h.Cipher)}
	}
	h.KeyMode = KeyMode(data[p+2])
	switch h.KeyMode {
	case KeyModePassword, KeyModeKeystore:
	default:
		return InvalidHeaderError{Reason: fmt.Sprintf("unknown key mode %d", int(h.KeyMode))}
	}
	h.KDF.Type = KDFType(data[p+3])
	p += 4

	h.KDF.Iterations = int(binary.BigEndian.Uint32(data[p : p+4]))
	h.KDF.Memory = int(binary.BigEndian.Uint32(data[p+4 : p+8]))
	h.KDF.Parallelism = int(data[p+8])
	p += 9

	h.Salt = append([]byte(nil), data[p:p+SALT_SIZE]...)
	p += SALT_SIZE
	copy(h.RecordID[:], data[p:p+16])
	p += 16
	h.IV = append([]byte(nil), data[p:p+IV_SIZE]...)
	return nil
}

// HasMagic reports whether data starts with the sstore magic bytes
func HasMagic(data []byte) bool {
	return bytes.HasPrefix(data, []byte(MAGIC))
}
