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
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"github.com/notapipeline/sstore/pkg/codec"
	"github.com/notapipeline/sstore/pkg/config"
	"github.com/notapipeline/sstore/pkg/crypto"
	"github.com/notapipeline/sstore/pkg/keys"
	"github.com/notapipeline/sstore/pkg/keystore"
	"github.com/notapipeline/sstore/pkg/logging"
	"github.com/notapipeline/sstore/pkg/types"
)

const RECORD_PREFIX string = "sstore:"

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	writeFile func(name string, data []byte, perm os.FileMode) error = os.WriteFile
	newUUID   func() (uuid.UUID, error)                              = uuid.NewRandom
)

// Store encrypts values to files on the local disk.
//
// Records are either protected by a caller supplied password, which is
// never persisted, or by a random key held in a SecretStore. Operations are
// synchronous and callers must serialise access to a single location.
type Store struct {
	cfg  *config.Config
	keys *keys.Manager
	log  logging.Logger
}

func New(cfg *config.Config, secrets keystore.SecretStore, log logging.Logger) *Store {
	if cfg == nil {
		cfg = config.New()
	}
	return &Store{
		cfg:  cfg,
		keys: keys.New(secrets),
		log:  log,
	}
}

// Store writes data to location, overwriting anything already there.
//
// An empty password selects password-less mode: a random key is generated
// and saved in the secret store before the file is written. The keystore
// write is not rolled back if writing the file fails.
func (s *Store) Store(data any, location string, password []byte) (*types.StoredRecord, error) {
	normalized, err := codec.Normalize(data)
	if err != nil {
		return nil, err
	}

	var header types.Header
	if header.RecordID, err = newUUID(); err != nil {
		return nil, fmt.Errorf("failed to create record id: %w", err)
	}
	if header.Salt, err = crypto.RandomBytes(types.SALT_SIZE); err != nil {
		return nil, err
	}

	var (
		root       *memguard.LockedBuffer
		identifier string
	)
	if len(password) > 0 {
		s.log.Infof("Password provided, initiating password encryption.")
		header.KeyMode = types.KeyModePassword
		header.KDF = s.cfg.KDF

		var derived []byte
		if derived, err = crypto.DeriveKey(password, header.Salt, header.KDF); err != nil {
			return nil, err
		}
		root = memguard.NewBufferFromBytes(derived)
	} else {
		s.log.Infof("No password provided, initiating auto-password encryption.")
		s.log.Warnf("The file will NOT be decrypt-able on another machine.")
		if s.cfg.Identifier != types.IdentifierRecord {
			s.log.Warnf("The file MUST keep the same name and location or it will not be decrypt-able.")
		}
		header.KeyMode = types.KeyModeKeystore
		header.KDF = types.KDFInfo{Type: types.KDFTypeNone}

		if identifier, err = s.identifier(location, header); err != nil {
			return nil, err
		}
		if root, err = s.keys.GenerateAndStore(identifier); err != nil {
			return nil, err
		}
		s.log.Debugf("stored record key under %q", identifier)
	}
	defer root.Destroy()

	key, err := recordKey(root, header)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	blob, err := crypto.EncryptWith(codec.Encode(normalized), header, key.Bytes())
	if err != nil {
		return nil, err
	}

	var out []byte
	if out, err = blob.MarshalBinary(); err != nil {
		return nil, err
	}
	if err = writeFile(location, out, 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", location, err)
	}
	s.log.Debugf("wrote %d bytes to %s", len(out), location)

	return &types.StoredRecord{
		Location:     location,
		Header:       blob.Header,
		Size:         len(out),
		PasswordUsed: len(password) > 0,
		Identifier:   identifier,
	}, nil
}

// Retrieve decrypts the record at location and returns the string that was
// stored.
//
// Values stored as structures come back as their JSON text, use
// codec.Denormalize to decode them.
func (s *Store) Retrieve(location string, password []byte) (string, error) {
	blob, err := s.read(location)
	if err != nil {
		return "", err
	}

	var key *memguard.LockedBuffer
	if len(password) > 0 {
		key, err = s.passwordKey(blob.Header, password)
	} else {
		key, err = s.keystoreKey(location, blob.Header)
	}
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	var plain []byte
	if plain, err = crypto.DecryptWith(blob, key.Bytes()); err != nil {
		return "", err
	}
	defer memguard.WipeBytes(plain)

	return codec.Decode(plain)
}

// Inspect returns the header of the record at location without decrypting
// it. Legacy records report version 0.
func (s *Store) Inspect(location string) (types.Header, error) {
	blob, err := s.read(location)
	if err != nil {
		return types.Header{}, err
	}
	return blob.Header, nil
}

// Identifier returns the name the keystore key for the record at location
// is held under.
func (s *Store) Identifier(location string) (string, error) {
	blob, err := s.read(location)
	if err != nil {
		return "", err
	}
	return s.identifier(location, blob.Header)
}

func (s *Store) read(location string) (types.Blob, error) {
	var blob types.Blob
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return blob, types.FileNotFoundError{Path: location}
		}
		return blob, fmt.Errorf("failed to read %s: %w", location, err)
	}

	if err = blob.UnmarshalBinary(data); err != nil {
		var de types.DecryptionError
		if errors.As(err, &de) {
			return blob, err
		}
		return blob, types.DecryptionError{Reason: "invalid record header", Err: err}
	}
	return blob, nil
}

func (s *Store) passwordKey(header types.Header, password []byte) (*memguard.LockedBuffer, error) {
	if header.IsLegacy() {
		return memguard.NewBufferFromBytes(crypto.DeriveLegacyKey(password)), nil
	}
	if header.KeyMode != types.KeyModePassword {
		return nil, types.DecryptionError{Reason: "record was not written with a password"}
	}

	derived, err := crypto.DeriveKey(password, header.Salt, header.KDF)
	if err != nil {
		return nil, types.DecryptionError{Reason: "invalid key derivation parameters", Err: err}
	}
	root := memguard.NewBufferFromBytes(derived)
	defer root.Destroy()
	return recordKey(root, header)
}

func (s *Store) keystoreKey(location string, header types.Header) (*memguard.LockedBuffer, error) {
	identifier, err := s.identifier(location, header)
	if err != nil {
		return nil, err
	}
	if !header.IsLegacy() && header.KeyMode == types.KeyModePassword {
		return nil, types.KeyNotFoundError{Identifier: identifier}
	}

	root, err := s.keys.Retrieve(identifier)
	if err != nil {
		return nil, err
	}
	if header.IsLegacy() {
		return root, nil
	}
	if root.Size() != types.KEY_SIZE {
		root.Destroy()
		return nil, types.DecryptionError{Reason: fmt.Sprintf("keystore key for %q is not %d bytes", identifier, types.KEY_SIZE)}
	}
	defer root.Destroy()
	return recordKey(root, header)
}

// identifier is the absolute path of location unless record identifiers are
// configured, in which case the record uuid is used so the file may be
// moved. Legacy records have no uuid and always use the path.
func (s *Store) identifier(location string, header types.Header) (string, error) {
	if s.cfg.Identifier == types.IdentifierRecord && !header.IsLegacy() {
		return RECORD_PREFIX + header.RecordID.String(), nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	return abs, nil
}

func recordKey(root *memguard.LockedBuffer, header types.Header) (*memguard.LockedBuffer, error) {
	key, err := crypto.RecordKey(root.Bytes(), header)
	if err != nil {
		return nil, err
	}
	return memguard.NewBufferFromBytes(key), nil
}
