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
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/notapipeline/sstore/pkg/store"
	"github.com/notapipeline/sstore/pkg/types"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <location>",
	Short: "Show the header of an encrypted file",
	Long: `Print the format details of the record at location without
	decrypting it. Files written before headers were introduced are reported as
	legacy records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var location string = args[0]

		// inspecting never touches the keystore
		s := store.New(cfg, nil, logger)
		header, err := s.Inspect(location)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Location", location})

		if header.IsLegacy() {
			t.AppendRows([]table.Row{
				{"Format", "legacy (no header)"},
				{"Cipher", header.Cipher},
				{"Integrity", "none"},
			})
			t.Render()
			return nil
		}

		t.AppendRows([]table.Row{
			{"Format", header.Version},
			{"Cipher", header.Cipher},
			{"Key mode", header.KeyMode},
			{"Record", header.RecordID},
		})

		if header.KeyMode == types.KeyModePassword {
			t.AppendRow(table.Row{"KDF", header.KDF.Type})
			t.AppendRow(table.Row{"Iterations", header.KDF.Iterations})
			if header.KDF.Type == types.KDFTypeArgon2id {
				t.AppendRow(table.Row{"Memory (MiB)", header.KDF.Memory})
				t.AppendRow(table.Row{"Parallelism", header.KDF.Parallelism})
			}
		} else {
			identifier, err := s.Identifier(location)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{"Keystore identifier", identifier})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
