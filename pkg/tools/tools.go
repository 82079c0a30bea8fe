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
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/twpayne/go-pinentry"
)

var (
	ErrCancelled  = errors.New("Cancelled")
	ErrNoPassword = errors.New("No password provided")
)

// ReadPassword reads a password from the user via STDIN
func ReadPassword(prompt string) ([]byte, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()
	var (
		password string
		err      error
	)
	if password, err = line.PasswordPrompt(prompt); err != nil {
		if err == liner.ErrPromptAborted {
			return nil, ErrCancelled
		}
		return nil, err
	}
	return []byte(password), nil
}

// ReadLine reads a line of text from the user via STDIN
func ReadLine(prompt string) ([]byte, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()
	var (
		text string
		err  error
	)
	if text, err = line.Prompt(prompt); err != nil {
		if err == liner.ErrPromptAborted {
			return nil, ErrCancelled
		}
		return nil, err
	}
	return []byte(text), nil
}

// GetPassword gets a password from the user
//
// This is a mockable entry point for testing and wraps the password function.
var GetPassword func(title, description, prompt string) ([]byte, error) = password

// GetNewPassword asks for a password twice and fails if the two entries
// differ.
func GetNewPassword(title, description, prompt string) ([]byte, error) {
	first, err := GetPassword(title, description, prompt)
	if err != nil {
		return nil, err
	}

	var second []byte
	if second, err = GetPassword(title, "Please repeat the password.", prompt); err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

// password asks the user for a password using pinentry if available and
// falls back to stdin if not.
func password(title, description, prompt string) ([]byte, error) {
	var (
		err         error
		client      *pinentry.Client
		password    string
		usePinentry bool = true
	)

	if client, err = GetPinentry(
		pinentry.WithBinaryNameFromGnuPGAgentConf(),
		pinentry.WithDesc(description),
		pinentry.WithGPGTTY(),
		pinentry.WithPrompt(prompt),
		pinentry.WithTitle(title),
	); err != nil {
		var b []byte
		if b, err = readPassword(prompt + " "); err != nil {
			return nil, err
		}
		password = string(b)
		usePinentry = false
	}

	if usePinentry {
		defer client.Close()
		password, _, err = client.GetPIN()
		if pinentry.IsCancelled(err) {
			return nil, ErrCancelled
		}
	}
	if password == "" {
		return nil, ErrNoPassword
	}
	password = strings.TrimSpace(password)
	return []byte(password), err
}

// GetPinentry gets a pinentry client
//
// This is a mockable entry point for testing and wraps the pinentry client.
var GetPinentry func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) = func(options ...pinentry.ClientOption) (c *pinentry.Client, err error) {
	return pinentry.NewClient(options...)
}

var readPassword func(prompt string) ([]byte, error) = ReadPassword
