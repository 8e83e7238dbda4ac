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
	"errors"
	"time"

	"github.com/ZaparooProject/go-smartlibrary/detection"
	"github.com/spf13/cobra"
)

func newDetectCommand(opts *rootOptions) *cobra.Command {
	var (
		active  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List candidate NFC readers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dopts := detection.DefaultOptions()
			dopts.IgnorePaths = opts.config.Readers.NFCIgnorePaths
			dopts.Timeout = timeout
			if active {
				dopts.Mode = detection.Active
			}

			devices, err := detection.DetectAll(cmd.Context(), dopts)
			if errors.Is(err, detection.ErrNoDevicesFound) {
				printf(cmd, "No NFC readers found\n")
				return nil
			}
			if err != nil {
				return err
			}
			for i, d := range devices {
				printf(cmd, "%d. %s\n", i+1, d)
				if d.Name != "" {
					printf(cmd, "   %s\n", d.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "talk to candidate devices (I2C only)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "detection timeout")
	return cmd
}
