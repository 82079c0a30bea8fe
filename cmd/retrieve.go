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
	"os"

	"github.com/awnumar/memguard"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/notapipeline/sstore/pkg/types"
)

var retrieveOpts types.RetrieveCmd = types.RetrieveCmd{}

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve <location>",
	Short: "Decrypt a value from a file",
	Long: `Decrypt the record at location and print the stored value.

	Records written with --password need the same password given here. All
	other records are unlocked with the key held in the keystore.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			location string = args[0]
			password []byte
			err      error
		)

		if retrieveOpts.Password {
			if password, err = getPassword(); err != nil {
				return err
			}
			defer memguard.WipeBytes(password)
		}

		s, err := openStore()
		if err != nil {
			return err
		}

		var value string
		if err = withSpinner(cmd, retrieveOpts.Password, "Decrypting "+location, func() (err error) {
			value, err = s.Retrieve(location, password)
			return
		}); err != nil {
			return err
		}

		var out []byte = []byte(value)
		if retrieveOpts.Pretty && json.Valid(out) {
			if out, err = prettyjson.Format(out); err != nil {
				return err
			}
		}

		if retrieveOpts.Output != "" {
			if err = os.WriteFile(retrieveOpts.Output, out, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", retrieveOpts.Output, err)
			}
			logger.Infof("wrote decrypted value to %s", retrieveOpts.Output)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	retrieveCmd.Flags().BoolVarP(&retrieveOpts.Password, "password", "p", false, "prompt for the record password")
	retrieveCmd.Flags().BoolVar(&retrieveOpts.Pretty, "pretty", false, "colourise JSON values")
	retrieveCmd.Flags().StringVarP(&retrieveOpts.Output, "output", "o", "", "write the value to this file instead of stdout")
}
