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
package keystore

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/notapipeline/sstore/pkg/types"
)

// SecretStore persists named secrets for password-less records.
//
// Set overwrites any secret already held under identifier. Get returns an
// error matching ErrSecretNotFound when nothing is held.
type SecretStore interface {
	Set(identifier, secret string) error
	Get(identifier string) (string, error)
}

var ErrSecretNotFound = errors.New("secret not found")

const DefaultService = "sstore"

// openKeyring is referenced as a variable to enable it to be mocked in tests
var openKeyring func(cfg keyring.Config) (keyring.Keyring, error) = keyring.Open

// KeyringStore is a SecretStore backed by any keyring backend
type KeyringStore struct {
	ring    keyring.Keyring
	service string
}

func NewKeyringStore(ring keyring.Keyring, service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{
		ring:    ring,
		service: service,
	}
}

// NewMemoryStore returns a SecretStore which lives only as long as the
// process.
func NewMemoryStore() *KeyringStore {
	return NewKeyringStore(keyring.NewArrayKeyring(nil), DefaultService)
}

// Open the secret store configured in cfg.
//
// The "auto" backend picks the first native keystore available on this
// machine (secret-service, kwallet, keychain, wincred, keyctl, pass). The
// "file" backend keeps JOSE encrypted files under cfg.Dir and calls prompt
// for the vault password.
func Open(cfg types.KeystoreConfig, prompt keyring.PromptFunc) (SecretStore, error) {
	var service string = cfg.Service
	if service == "" {
		service = DefaultService
	}

	kc := keyring.Config{
		ServiceName:             service,
		KeychainName:            service,
		KWalletAppID:            service,
		KWalletFolder:           service,
		LibSecretCollectionName: service,
		PassPrefix:              service,
		WinCredPrefix:           service,
		FileDir:                 cfg.Dir,
		FilePasswordFunc:        prompt,
	}

	var backend string = cfg.Backend
	if backend == "" {
		backend = types.BackendAuto
	}

	switch backend {
	case types.BackendMemory:
		return NewMemoryStore(), nil
	case types.BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("the file keystore requires a directory")
		}
		if prompt == nil {
			return nil, fmt.Errorf("the file keystore requires a password prompt")
		}
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case types.BackendAuto:
		kc.AllowedBackends = nativeBackends()
		if len(kc.AllowedBackends) == 0 {
			return nil, fmt.Errorf("no native keystore is available on this system: %w", keyring.ErrNoAvailImpl)
		}
	default:
		return nil, fmt.Errorf("unknown keystore backend %q", cfg.Backend)
	}

	ring, err := openKeyring(kc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keystore: %w", backend, err)
	}
	return NewKeyringStore(ring, service), nil
}

func nativeBackends() []keyring.BackendType {
	var backends []keyring.BackendType
	for _, b := range keyring.AvailableBackends() {
		if b == keyring.FileBackend {
			continue
		}
		backends = append(backends, b)
	}
	return backends
}

func (k *KeyringStore) Set(identifier, secret string) error {
	if identifier == "" {
		return fmt.Errorf("cannot store a secret without an identifier")
	}
	return k.ring.Set(keyring.Item{
		Key:         identifier,
		Data:        []byte(secret),
		Label:       fmt.Sprintf("%s: %s", k.service, identifier),
		Description: "sstore record key",
	})
}

func (k *KeyringStore) Get(identifier string) (string, error) {
	item, err := k.ring.Get(identifier)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, identifier)
		}
		return "", err
	}
	return string(item.Data), nil
}
