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
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/notapipeline/sstore/pkg/config"
	"github.com/notapipeline/sstore/pkg/logging"
	"github.com/notapipeline/sstore/pkg/types"
)

var clientCmd types.ClientCmd = types.ClientCmd{}

var cfgFile string

var (
	cfg    *config.Config
	logger logging.Logger
)

var fatal func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	logging.New(false, false).Errorf(format, v...)
	memguard.SafeExit(1)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sstore",
	Short: "Secure local storage",
	Long: `
Secure local storage

sstore encrypts strings and JSON documents into files on the local disk.

Records are protected either by a password which you must remember, or by a
random key held in the operating system keystore. Password-less records can
only be read on the machine that wrote them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("%s", err)
	}
}

func init() {
	// These are consistent across all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/sstore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&clientCmd.Keystore, "keystore", "", "keystore backend to use (auto, file, memory)")
	rootCmd.PersistentFlags().StringVar(&clientCmd.Identifier, "identifier", "", "name keystore keys by file path or by record id (path, record)")
	rootCmd.PersistentFlags().BoolVar(&clientCmd.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&clientCmd.Quiet, "quiet", false, "disable all logging except errors")
}

func loadConfig(cmd *cobra.Command) (err error) {
	if cfgFile != "" {
		var path string = cfgFile
		config.ConfigPath = func() string {
			return path
		}
	}

	c := config.New()
	if err = c.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.MergeCmd(clientCmd)
	if err = c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cfg = c
	logger = logging.New(c.Debug, c.Quiet)
	logger.Out = cmd.OutOrStdout()
	logger.Err = cmd.ErrOrStderr()
	logger.Debugf("using %s keystore, %s identifiers", c.Keystore.Backend, c.Identifier)
	return
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
