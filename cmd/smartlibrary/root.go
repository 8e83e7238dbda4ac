// go-smartlibrary
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-smartlibrary.
//
// go-smartlibrary is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-smartlibrary is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-smartlibrary; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"fmt"
	"log/slog"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands
type rootOptions struct {
	config     *smartlibrary.Config
	logger     *slog.Logger
	configPath string
	nfcPath    string
	rfidPort   string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "smartlibrary",
		Short:        "Library desk controller",
		Long:         "Runs the library desk: RFID checkout, NFC book search, occupancy and noise monitoring.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")
	cmd.PersistentFlags().StringVar(&opts.nfcPath, "nfc", "",
		"NFC reader path (e.g. /dev/i2c-1 or /dev/ttyUSB0); overrides the config file")
	cmd.PersistentFlags().StringVar(&opts.rfidPort, "rfid", "", "RFID reader SPI port; overrides the config file")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newDirectoryCommand(opts))
	cmd.AddCommand(newJournalCommand(opts))
	cmd.AddCommand(newDetectCommand(opts))
	cmd.AddCommand(newScanCommand(opts))

	return cmd
}

// load reads the configuration, applies flag overrides and sets up logging
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := smartlibrary.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("nfc") {
		cfg.Readers.NFCPath = o.nfcPath
	}
	if cmd.Flags().Changed("rfid") {
		cfg.Readers.RFIDPort = o.rfidPort
	}
	o.config = cfg

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	smartlibrary.SetLogger(o.logger)
	smartlibrary.SetDebugEnabled(o.debug)
	return nil
}

// directory builds the directory from the configured seed file, or the
// built-in records when none is set
func (o *rootOptions) directory() (*smartlibrary.Directory, error) {
	seed := smartlibrary.DefaultSeed()
	if path := o.config.Library.SeedFile; path != "" {
		var err error
		if seed, err = smartlibrary.LoadSeed(path); err != nil {
			return nil, err
		}
	}
	dir := smartlibrary.NewDirectory(o.config.Library.MaxStudents, o.config.Library.MaxBooks)
	if err := seed.Populate(dir); err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	return dir, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
