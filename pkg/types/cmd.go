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

const (
	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendMemory = "memory"

	IdentifierPath   = "path"
	IdentifierRecord = "record"
)

// KeystoreConfig selects where password-less record keys are kept.
//
// Password unlocks the file backend and is only ever read from the
// environment.
type KeystoreConfig struct {
	Backend  string `yaml:"backend" env:"BACKEND"`
	Service  string `yaml:"service" env:"SERVICE"`
	Dir      string `yaml:"dir" env:"DIR"`
	Password string `yaml:"-" env:"PASSWORD"`
}

// ClientCmd holds the persistent flags shared by every command
type ClientCmd struct {
	Keystore   string
	Identifier string
	Debug      bool
	Quiet      bool
}

type StoreCmd struct {
	Password bool
	File     string
	Json     bool
}

type RetrieveCmd struct {
	Password bool
	Pretty   bool
	Output   string
}
