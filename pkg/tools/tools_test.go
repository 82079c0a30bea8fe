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
package tools

import (
	"errors"
	"testing"

	"github.com/twpayne/go-pinentry"
)

func pinentryReturning(lines ...string) func(options ...pinentry.ClientOption) (*pinentry.Client, error) {
	return func(options ...pinentry.ClientOption) (*pinentry.Client, error) {
		return pinentry.NewClient(pinentry.WithProcess(newMockProcess(lines...)))
	}
}

func noPinentry(options ...pinentry.ClientOption) (*pinentry.Client, error) {
	return nil, errors.New(`exec: "pinentry": executable file not found in $PATH`)
}

func TestGetPassword(t *testing.T) {
	tests := []struct {
		name             string
		expectedResult   string
		expectedErr      error
		mockClient       func(options ...pinentry.ClientOption) (c *pinentry.Client, err error)
		mockReadPassword func(prompt string) ([]byte, error)
	}{
		{
			name:        "cancelled context",
			expectedErr: ErrCancelled,
			mockClient: func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) {
				process := newMockProcess("OK")
				process.Lines = append(process.Lines,
					mockLine{Line: []byte{}, Err: &pinentry.AssuanError{Code: pinentry.AssuanErrorCodeCancelled}},
					mockLine{Line: []byte("BYE")},
				)
				return pinentry.NewClient(pinentry.WithProcess(process))
			},
		},
		{
			name:        "no pinentry binary",
			expectedErr: errors.New("liner: function not supported in this terminal"),
			mockClient:  noPinentry,
			mockReadPassword: func(prompt string) ([]byte, error) {
				return nil, errors.New("liner: function not supported in this terminal")
			},
		},
		{
			name:        "liner: no password provided",
			expectedErr: ErrNoPassword,
			mockClient:  noPinentry,
			mockReadPassword: func(prompt string) ([]byte, error) {
				return []byte{}, nil
			},
		},
		{
			name:           "liner: password is trimmed",
			expectedResult: "password",
			mockClient:     noPinentry,
			mockReadPassword: func(prompt string) ([]byte, error) {
				return []byte("  password\n"), nil
			},
		},
		{
			name:           "success",
			expectedResult: "password",
			mockClient:     pinentryReturning("OK", "D password", "OK", "BYE"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ope := GetPinentry
			orp := readPassword
			defer func() {
				GetPinentry = ope
				readPassword = orp
			}()
			GetPinentry = test.mockClient
			if test.mockReadPassword != nil {
				readPassword = test.mockReadPassword
			}
			actualResult, actualErr := GetPassword("title", "description", "Password:")

			if string(actualResult) != test.expectedResult {
				t.Errorf("Expected password %q, but got %q", test.expectedResult, actualResult)
			}

			if test.expectedErr != nil {
				if actualErr == nil || actualErr.Error() != test.expectedErr.Error() {
					t.Errorf("Expected error %v, but got %v", test.expectedErr, actualErr)
				}
				return
			}
			if actualErr != nil {
				t.Errorf("Expected nil error, but got %v", actualErr)
			}
		})
	}
}

func TestGetNewPassword(t *testing.T) {
	tests := []struct {
		name        string
		responses   []string
		expected    string
		expectedErr string
	}{
		{name: "matching", responses: []string{"s3cr3t", "s3cr3t"}, expected: "s3cr3t"},
		{name: "mismatch", responses: []string{"s3cr3t", "secret"}, expectedErr: "passwords do not match"},
		{name: "empty", responses: []string{""}, expectedErr: "No password provided"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ogp := GetPassword
			defer func() { GetPassword = ogp }()

			responses := test.responses
			GetPassword = func(title, description, prompt string) ([]byte, error) {
				r := responses[0]
				responses = responses[1:]
				if r == "" {
					return nil, ErrNoPassword
				}
				return []byte(r), nil
			}

			actual, err := GetNewPassword("title", "description", "Password:")
			if test.expectedErr != "" {
				if err == nil || err.Error() != test.expectedErr {
					t.Errorf("Expected error %q, but got %v", test.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected nil error, but got %v", err)
			}
			if string(actual) != test.expected {
				t.Errorf("Expected %q, but got %q", test.expected, actual)
			}
		})
	}
}
