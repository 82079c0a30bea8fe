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
	"time"

	"github.com/99designs/keyring"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/notapipeline/sstore/pkg/keystore"
	"github.com/notapipeline/sstore/pkg/store"
	"github.com/notapipeline/sstore/pkg/tools"
	"github.com/notapipeline/sstore/pkg/types"
)

// These functions are referenced as variables to enable them to
// be mocked in tests
var (
	getPassword func() ([]byte, error) = func() ([]byte, error) {
		return tools.GetPassword("Record password", "Please enter the password for this record.", "Password:")
	}

	getNewPassword func() ([]byte, error) = func() ([]byte, error) {
		return tools.GetNewPassword("Record password", "Please choose a password for this record.", "Password:")
	}

	openSecrets func(cfg types.KeystoreConfig) (keystore.SecretStore, error) = func(cfg types.KeystoreConfig) (keystore.SecretStore, error) {
		var prompt keyring.PromptFunc = vaultPrompt
		if cfg.Password != "" {
			prompt = keyring.FixedStringPrompt(cfg.Password)
		}
		return keystore.Open(cfg, prompt)
	}
)

// vaultPrompt unlocks the file keystore
var vaultPrompt keyring.PromptFunc = func(prompt string) (string, error) {
	b, err := tools.GetPassword("sstore keystore", prompt, "Password:")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func openStore() (*store.Store, error) {
	secrets, err := openSecrets(cfg.Keystore)
	if err != nil {
		return nil, err
	}
	return store.New(cfg, secrets, logger), nil
}

// withSpinner runs fn behind a spinner on stderr when enabled. Key derivation
// can take a second or more with the default argon2id parameters.
func withSpinner(cmd *cobra.Command, enabled bool, suffix string, fn func() error) error {
	if !enabled || cfg.Quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()

	return fn()
}
