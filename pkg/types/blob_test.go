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
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() Header {
	return Header{
		Version: FORMAT_VERSION,
		Cipher:  AesGcm256,
		KeyMode: KeyModePassword,
		KDF: KDFInfo{
			Type:        KDFTypeArgon2id,
			Iterations:  3,
			Memory:      64,
			Parallelism: 4,
		},
		Salt:     bytes.Repeat([]byte{0x01}, SALT_SIZE),
		RecordID: uuid.MustParse("0b5ac1b8-6a07-4a4e-9d8e-0a8c3f4e2b11"),
		IV:       bytes.Repeat([]byte{0x02}, IV_SIZE),
	}
}

func TestHeader_MarshalBinary(t *testing.T) {
	var h Header = testHeader()

	data, err := h.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, HEADER_SIZE)
	assert.True(t, HasMagic(data))

	var received Header
	require.NoError(t, received.UnmarshalBinary(data))
	if diff := pretty.Compare(h, received); diff != "" {
		t.Errorf("header differs after unmarshal (-want +got):\n%s", diff)
	}
}

func TestHeader_MarshalBinaryRejectsBadLengths(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *Header)
		message string
	}{
		{
			name:    "short salt",
			mutate:  func(h *Header) { h.Salt = []byte("salt") },
			message: "invalid record header: salt must be 16 bytes, got 4",
		},
		{
			name:    "missing iv",
			mutate:  func(h *Header) { h.IV = nil },
			message: "invalid record header: iv must be 16 bytes, got 0",
		},
		{
			name:    "legacy",
			mutate:  func(h *Header) { h.Version = 0 },
			message: "invalid record header: legacy records have no header",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := testHeader()
			test.mutate(&h)
			_, err := h.MarshalBinary()
			require.Error(t, err)
			assert.Equal(t, test.message, err.Error())
		})
	}
}

func TestHeader_UnmarshalBinary(t *testing.T) {
	valid, err := func() ([]byte, error) {
		h := testHeader()
		return h.MarshalBinary()
	}()
	require.NoError(t, err)

	withByte := func(i int, b byte) []byte {
		c := append([]byte(nil), valid...)
		c[i] = b
		return c
	}

	tests := []struct {
		name     string
		input    []byte
		expected error
		message  string
	}{
		{
			name:     "too short",
			input:    valid[:10],
			expected: InvalidHeaderError{},
			message:  "invalid record header: expected 65 bytes, got 10",
		},
		{
			name:     "missing magic",
			input:    withByte(0, 'X'),
			expected: InvalidHeaderError{},
			message:  "invalid record header: missing magic",
		},
		{
			name:     "unsupported version",
			input:    withByte(4, 9),
			expected: UnsupportedVersionError{},
			message:  "unsupported record format version: 9",
		},
		{
			name:     "unsupported cipher",
			input:    withByte(5, 0),
			expected: InvalidHeaderError{},
			message:  "invalid record header: unsupported cipher AesCfb_Legacy",
		},
		{
			name:     "unknown key mode",
			input:    withByte(6, 7),
			expected: InvalidHeaderError{},
			message:  "invalid record header: unknown key mode 7",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var h Header
			err := h.UnmarshalBinary(test.input)
			require.Error(t, err)
			assert.IsType(t, test.expected, err)
			assert.Equal(t, test.message, err.Error())
		})
	}
}

func TestBlob_UnmarshalBinaryLegacy(t *testing.T) {
	var (
		iv   []byte = bytes.Repeat([]byte{0xaa}, IV_SIZE)
		ct   []byte = []byte("legacy ciphertext")
		blob Blob
	)

	require.NoError(t, blob.UnmarshalBinary(append(append([]byte(nil), iv...), ct...)))
	assert.True(t, blob.Header.IsLegacy())
	assert.Equal(t, AesCfb256_Legacy, blob.Header.Cipher)
	assert.Equal(t, iv, blob.Header.IV)
	assert.Equal(t, ct, blob.CT)

	out, err := blob.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, append(iv, ct...), out)
}

func TestBlob_UnmarshalBinaryTooShort(t *testing.T) {
	var blob Blob
	err := blob.UnmarshalBinary([]byte("short"))

	var de DecryptionError
	if !errors.As(err, &de) {
		t.Fatalf("Expected DecryptionError but got %v", err)
	}
	if err.Error() != "decrypt: ciphertext is 5 bytes, shorter than the 16 byte IV" {
		t.Errorf("Unexpected error message %q", err.Error())
	}
}

func TestBlob_UnmarshalBinaryMissingTag(t *testing.T) {
	h := testHeader()
	data, err := h.MarshalBinary()
	require.NoError(t, err)

	var blob Blob
	err = blob.UnmarshalBinary(append(data, 0x01, 0x02))
	assert.ErrorAs(t, err, &DecryptionError{})
}

func TestBlob_MarshalBinary(t *testing.T) {
	var blob Blob = Blob{
		Header: testHeader(),
		CT:     bytes.Repeat([]byte{0x03}, 32),
	}

	data, err := blob.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, HEADER_SIZE+32)

	var received Blob
	require.NoError(t, received.UnmarshalBinary(data))
	if diff := pretty.Compare(blob, received); diff != "" {
		t.Errorf("blob differs after unmarshal (-want +got):\n%s", diff)
	}
	assert.False(t, received.IsZero())
	assert.True(t, Blob{}.IsZero())
}
