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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/notapipeline/sstore/pkg/types"
)

var storeOpts types.StoreCmd = types.StoreCmd{}

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store <location> [data]",
	Short: "Encrypt a value to a file",
	Long: `Encrypt a value and write it to location, replacing anything already
	there.

	The value is taken from the second argument, from the file named by --file
	or from stdin, in that order. With --json the value must be a valid JSON
	document.

	With --password you will be prompted for a password, which must be given
	again to read the record back. Without it a random key is generated and
	saved in the keystore. Such records can only be read on this machine and,
	unless record identifiers are in use, only from the same location.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			location string = args[0]
			data     any
			err      error
		)

		if data, err = readInput(cmd, args); err != nil {
			return err
		}

		var password []byte
		if storeOpts.Password {
			if password, err = getNewPassword(); err != nil {
				return err
			}
			defer memguard.WipeBytes(password)
		}

		if exists(location) {
			logger.Debugf("overwriting %s", location)
		}

		s, err := openStore()
		if err != nil {
			return err
		}

		var record *types.StoredRecord
		if err = withSpinner(cmd, storeOpts.Password, "Encrypting "+location, func() (err error) {
			record, err = s.Store(data, location, password)
			return
		}); err != nil {
			return err
		}

		logger.Infof("stored %d bytes to %s", record.Size, record.Location)
		if !record.PasswordUsed {
			logger.Debugf("key saved in keystore as %q", record.Identifier)
		}
		return nil
	},
}

func readInput(cmd *cobra.Command, args []string) (data any, err error) {
	var b []byte
	switch {
	case len(args) == 2:
		b = []byte(args[1])
	case storeOpts.File != "":
		if b, err = os.ReadFile(storeOpts.File); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", storeOpts.File, err)
		}
	default:
		if b, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if storeOpts.Json {
		if !json.Valid(b) {
			return nil, types.EncodingError{Err: fmt.Errorf("input is not valid JSON")}
		}
		return json.RawMessage(b), nil
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.Flags().BoolVarP(&storeOpts.Password, "password", "p", false, "protect the record with a password instead of a keystore key")
	storeCmd.Flags().StringVarP(&storeOpts.File, "file", "f", "", "read the value from this file")
	storeCmd.Flags().BoolVar(&storeOpts.Json, "json", false, "require the value to be a JSON document")
}
