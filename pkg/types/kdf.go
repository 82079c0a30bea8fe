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
	"strings"
)

type KDFType int

// KDFInfo carries the parameters handed to the key derivation function.
//
// Memory is expressed in MiB and, together with Parallelism, is only
// consulted for Argon2id.
type KDFInfo struct {
	Type        KDFType `yaml:"type" env:"TYPE"`
	Iterations  int     `yaml:"iterations" env:"ITERATIONS"`
	Memory      int     `yaml:"memory" env:"MEMORY"`
	Parallelism int     `yaml:"parallelism" env:"PARALLELISM"`
}

// DefaultKDF is used for every new password protected record.
var DefaultKDF KDFInfo = KDFInfo{
	Type:        KDFTypeArgon2id,
	Iterations:  3,
	Memory:      64,
	Parallelism: 4,
}

// String - convert a KDFType to a string
func (t KDFType) String() string {
	switch t {
	case KDFTypePBKDF2:
		return "pbkdf2"
	case KDFTypeArgon2id:
		return "argon2id"
	case KDFTypeNone:
		return "none"
	}
	return fmt.Sprintf("KDFType(%d)", int(t))
}

func (t KDFType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *KDFType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "pbkdf2", "pbkdf2-sha256", "0":
		*t = KDFTypePBKDF2
	case "argon2id", "argon2", "1":
		*t = KDFTypeArgon2id
	default:
		return fmt.Errorf("unsupported KDF type %q", text)
	}
	return nil
}

// Validate returns an error if the KDF parameters cannot be used to derive
// a key.
func (k KDFInfo) Validate() error {
	switch k.Type {
	case KDFTypePBKDF2:
		if k.Iterations < 1 {
			return fmt.Errorf("pbkdf2 requires at least 1 iteration, got %d", k.Iterations)
		}
		if k.Iterations > MAX_PBKDF2_ITERATIONS {
			return fmt.Errorf("pbkdf2 iterations must not exceed %d, got %d", MAX_PBKDF2_ITERATIONS, k.Iterations)
		}
	case KDFTypeArgon2id:
		if k.Iterations < 1 {
			return fmt.Errorf("argon2id requires at least 1 iteration, got %d", k.Iterations)
		}
		if k.Iterations > MAX_ARGON2_ITERATIONS {
			return fmt.Errorf("argon2id iterations must not exceed %d, got %d", MAX_ARGON2_ITERATIONS, k.Iterations)
		}
		if k.Memory < 1 {
			return fmt.Errorf("argon2id requires memory of at least 1 MiB, got %d", k.Memory)
		}
		if k.Memory > MAX_ARGON2_MEMORY {
			return fmt.Errorf("argon2id memory must not exceed %d MiB, got %d", MAX_ARGON2_MEMORY, k.Memory)
		}
		if k.Parallelism < 1 || k.Parallelism > 255 {
			return fmt.Errorf("argon2id parallelism must be between 1 and 255, got %d", k.Parallelism)
		}
	default:
		return fmt.Errorf("unsupported KDF type %d", k.Type)
	}
	return nil
}
