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
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/notapipeline/sstore/pkg/types"
)

var b64enc = base64.StdEncoding.Strict()

// Normalize converts data to the canonical string which gets encrypted.
//
// Strings pass through unchanged. []byte and json.RawMessage are treated as
// already serialised text. Anything else is marshalled to JSON.
func Normalize(data any) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", types.EncodingError{Err: err}
	}
	return string(b), nil
}

// Hash returns the hex encoded SHA-256 digest of the normalised form of data
func Hash(data any) (string, error) {
	s, err := Normalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// Denormalize decodes a retrieved string back into v.
//
// Retrieval never does this automatically, callers which stored a structure
// use this to get it back.
func Denormalize(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return types.EncodingError{Err: err}
	}
	return nil
}

// Encode wraps the normalised string in base64 before it is handed to the
// cipher.
func Encode(s string) []byte {
	dst := make([]byte, b64enc.EncodedLen(len(s)))
	b64enc.Encode(dst, []byte(s))
	return dst
}

// Decode reverses Encode on decrypted bytes.
//
// For legacy records, which carry no authentication tag, a failure here is
// the only sign that the wrong key was used.
func Decode(b []byte) (string, error) {
	dst := make([]byte, b64enc.DecodedLen(len(b)))
	n, err := b64enc.Decode(dst, b)
	if err != nil {
		return "", types.DecryptionError{Reason: "plaintext is not valid base64", Err: err}
	}
	return string(dst[:n]), nil
}
