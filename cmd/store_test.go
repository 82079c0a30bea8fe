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
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notapipeline/sstore/pkg/types"
)

func TestStoreAndRetrieve(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		password bool
		expected string
	}{
		{
			name:     "argument without password",
			args:     []string{"hello world"},
			expected: "hello world\n",
		},
		{
			name:     "stdin without password",
			stdin:    "from stdin",
			expected: "from stdin\n",
		},
		{
			name:     "argument with password",
			args:     []string{"hello world"},
			password: true,
			expected: "hello world\n",
		},
		{
			name:     "json document",
			args:     []string{"--json", `{"user": "bob"}`},
			expected: "{\"user\": \"bob\"}\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tempDir, _, teardownSuite := setupSuite(t)
			defer teardownSuite(t)

			ogp, ognp := getPassword, getNewPassword
			defer func() { getPassword, getNewPassword = ogp, ognp }()
			getPassword = func() ([]byte, error) { return []byte("s3cr3t"), nil }
			getNewPassword = getPassword

			var (
				location = filepath.Join(tempDir, "record.enc")
				args     = []string{"store", location}
			)
			if test.password {
				args = append(args, "--password")
			}
			args = append(args, test.args...)

			_, stderr, err := run(t, test.stdin, args...)
			require.NoError(t, err)
			if test.password {
				assert.NotContains(t, stderr, "NOT be decrypt-able")
			} else {
				assert.Contains(t, stderr, "[warn] The file will NOT be decrypt-able on another machine.")
			}

			retrieveOpts = types.RetrieveCmd{}
			args = []string{"retrieve", location}
			if test.password {
				args = append(args, "-p")
			}
			stdout, _, err := run(t, "", args...)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(stdout, test.expected), "got %q", stdout)
		})
	}
}

func TestStoreFromFile(t *testing.T) {
	tempDir, _, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var (
		input    = filepath.Join(tempDir, "input.json")
		location = filepath.Join(tempDir, "record.enc")
		output   = filepath.Join(tempDir, "output.json")
	)
	require.NoError(t, os.WriteFile(input, []byte(`{"a":[1,2]}`), 0600))

	_, _, err := run(t, "", "store", location, "--file", input, "--json")
	require.NoError(t, err)

	_, _, err = run(t, "", "retrieve", location, "--output", output)
	require.NoError(t, err)

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, string(b))

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStoreInvalidJson(t *testing.T) {
	tempDir, _, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var location = filepath.Join(tempDir, "record.enc")
	_, _, err := run(t, "", "store", location, "--json", "{not json")

	var ee types.EncodingError
	assert.True(t, errors.As(err, &ee), "expected EncodingError, got %v", err)
	_, err = os.Stat(location)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRetrievePretty(t *testing.T) {
	tempDir, _, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	var location = filepath.Join(tempDir, "record.enc")
	_, _, err := run(t, "", "store", location, `{"user":"bob"}`)
	require.NoError(t, err)

	stdout, _, err := run(t, "", "retrieve", location, "--pretty")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"user\": \"bob\"")
}

func TestRetrieveErrors(t *testing.T) {
	tempDir, _, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	ogp, ognp := getPassword, getNewPassword
	defer func() { getPassword, getNewPassword = ogp, ognp }()

	var location = filepath.Join(tempDir, "record.enc")
	getNewPassword = func() ([]byte, error) { return []byte("right"), nil }
	_, _, err := run(t, "", "store", location, "--password", "value")
	require.NoError(t, err)

	storeOpts = types.StoreCmd{}
	getPassword = func() ([]byte, error) { return []byte("wrong"), nil }
	_, _, err = run(t, "", "retrieve", location, "--password")
	var de types.DecryptionError
	assert.True(t, errors.As(err, &de), "expected DecryptionError, got %v", err)

	retrieveOpts = types.RetrieveCmd{}
	_, _, err = run(t, "", "retrieve", location)
	var knf types.KeyNotFoundError
	assert.True(t, errors.As(err, &knf), "expected KeyNotFoundError, got %v", err)

	getPassword = func() ([]byte, error) { return nil, errors.New("Cancelled") }
	_, _, err = run(t, "", "retrieve", location, "--password")
	assert.EqualError(t, err, "Cancelled")
}

func TestInspect(t *testing.T) {
	tempDir, secrets, teardownSuite := setupSuite(t)
	defer teardownSuite(t)

	ognp := getNewPassword
	defer func() { getNewPassword = ognp }()
	getNewPassword = func() ([]byte, error) { return []byte("pw"), nil }

	var (
		passwordRecord = filepath.Join(tempDir, "password.enc")
		keystoreRecord = filepath.Join(tempDir, "keystore.enc")
	)

	_, _, err := run(t, "", "store", passwordRecord, "--password", "value")
	require.NoError(t, err)
	storeOpts = types.StoreCmd{}
	_, _, err = run(t, "", "store", keystoreRecord, "value")
	require.NoError(t, err)

	stdout, _, err := run(t, "", "inspect", passwordRecord)
	require.NoError(t, err)
	assert.Contains(t, stdout, "AesGcm256")
	assert.Contains(t, stdout, "password")
	assert.Contains(t, stdout, "pbkdf2")

	stdout, _, err = run(t, "", "inspect", keystoreRecord)
	require.NoError(t, err)
	assert.Contains(t, stdout, "keystore")

	abs, _ := filepath.Abs(keystoreRecord)
	assert.Contains(t, stdout, abs)
	_, err = secrets.Get(abs)
	assert.NoError(t, err)
}
