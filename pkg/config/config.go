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
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"

	"github.com/notapipeline/sstore/pkg/types"
)

const ENV_PREFIX string = "SSTORE_"

// ConfigPath is referenced as a variable to enable it to be mocked in tests
var ConfigPath func() string = getConfigPath

type Config struct {
	Keystore   types.KeystoreConfig `yaml:"keystore" envPrefix:"KEYSTORE_"`
	KDF        types.KDFInfo        `yaml:"kdf" envPrefix:"KDF_"`
	Identifier string               `yaml:"identifier" env:"IDENTIFIER"`
	Debug      bool                 `yaml:"debug" env:"DEBUG"`
	Quiet      bool                 `yaml:"quiet" env:"QUIET"`
}

// New returns a config carrying the built in defaults
func New() *Config {
	return &Config{
		Keystore: types.KeystoreConfig{
			Backend: types.BackendAuto,
			Service: "sstore",
		},
		KDF:        types.DefaultKDF,
		Identifier: types.IdentifierPath,
	}
}

// Load the config file from user local config directory
//
// The config file will be loaded from ~/.config/sstore/config.yaml if it
// exists and then the environment will be checked for overrides.
//
// Users are expected to call `MergeCmd` afterwards to override the config
// with command line options.
func (c *Config) Load() (err error) {
	if err = c.loadYaml(); err != nil {
		return
	}
	if err = c.loadEnv(); err != nil {
		return
	}
	return
}

func (c *Config) loadYaml() (err error) {
	var (
		cp       string = ConfigPath()
		yamlFile []byte
	)

	if _, err = os.Stat(cp); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if yamlFile, err = os.ReadFile(cp); err != nil {
		return err
	}

	if err = yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", cp, err)
	}
	return
}

func (c *Config) loadEnv() (err error) {
	return env.ParseWithOptions(c, env.Options{Prefix: ENV_PREFIX})
}

func (c *Config) MergeCmd(cmd types.ClientCmd) {
	if cmd.Keystore != "" {
		c.Keystore.Backend = cmd.Keystore
	}
	if cmd.Identifier != "" {
		c.Identifier = cmd.Identifier
	}
	if cmd.Debug {
		c.Debug = cmd.Debug
	}
	if cmd.Quiet {
		c.Quiet = cmd.Quiet
	}
}

func (c *Config) Validate() error {
	switch c.Keystore.Backend {
	case types.BackendAuto, types.BackendFile, types.BackendMemory:
	default:
		return fmt.Errorf("unknown keystore backend %q", c.Keystore.Backend)
	}

	if c.Keystore.Backend == types.BackendFile && c.Keystore.Dir == "" {
		return fmt.Errorf("keystore.dir must be set for the file backend")
	}

	switch c.Identifier {
	case types.IdentifierPath, types.IdentifierRecord:
	default:
		return fmt.Errorf("unknown identifier mode %q", c.Identifier)
	}

	if c.KDF.Type == types.KDFTypeNone {
		return fmt.Errorf("a key derivation function is required for password records")
	}
	return c.KDF.Validate()
}

func (c *Config) Save() (err error) {
	var data []byte
	if data, err = yaml.Marshal(c); err != nil {
		return err
	}

	var cp string = ConfigPath()
	if err = os.MkdirAll(filepath.Dir(cp), 0700); err != nil {
		return err
	}
	return os.WriteFile(cp, data, 0600)
}

func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sstore", "config.yaml")
}
