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
package keys

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/notapipeline/sstore/pkg/keystore"
	"github.com/notapipeline/sstore/pkg/types"
)

// Legacy password-less records were keyed with 16 random bytes
const LEGACY_KEY_SIZE int = 16

// newRandomKey is referenced as a variable to enable it to be mocked in tests
var newRandomKey func(size int) *memguard.LockedBuffer = memguard.NewBufferRandom

// Manager generates random record keys and keeps them in a SecretStore
type Manager struct {
	store keystore.SecretStore
}

func New(store keystore.SecretStore) *Manager {
	return &Manager{store: store}
}

// GenerateAndStore creates a fresh KEY_SIZE key and saves it under
// identifier, replacing any key previously held there.
//
// The caller owns the returned buffer and must Destroy it.
func (m *Manager) GenerateAndStore(identifier string) (*memguard.LockedBuffer, error) {
	key := newRandomKey(types.KEY_SIZE)
	if key == nil || key.Size() != types.KEY_SIZE {
		if key != nil {
			key.Destroy()
		}
		return nil, fmt.Errorf("failed to generate a %d byte key", types.KEY_SIZE)
	}

	if err := m.store.Set(identifier, base64.StdEncoding.EncodeToString(key.Bytes())); err != nil {
		key.Destroy()
		return nil, fmt.Errorf("failed to save key for %q: %w", identifier, err)
	}
	return key, nil
}

// Retrieve the key held under identifier.
//
// Both current and legacy key lengths are accepted. A missing entry is
// reported as types.KeyNotFoundError.
func (m *Manager) Retrieve(identifier string) (*memguard.LockedBuffer, error) {
	secret, err := m.store.Get(identifier)
	if err != nil {
		if errors.Is(err, keystore.ErrSecretNotFound) {
			return nil, types.KeyNotFoundError{Identifier: identifier}
		}
		return nil, fmt.Errorf("failed to read key for %q: %w", identifier, err)
	}

	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, types.DecryptionError{Reason: "stored key is not valid base64", Err: err}
	}

	switch len(raw) {
	case types.KEY_SIZE, LEGACY_KEY_SIZE:
	default:
		memguard.WipeBytes(raw)
		return nil, types.DecryptionError{
			Reason: fmt.Sprintf("stored key for %q is %d bytes", identifier, len(raw)),
		}
	}

	// NewBufferFromBytes wipes raw
	return memguard.NewBufferFromBytes(raw), nil
}
