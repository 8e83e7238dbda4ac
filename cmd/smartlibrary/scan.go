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
	"context"
	"errors"
	"fmt"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/spf13/cobra"
)

func newScanCommand(opts *rootOptions) *cobra.Command {
	var (
		contact bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Wait for one tag and look it up in the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var cl closers
			defer func() { _ = cl.Close() }()

			var (
				reader smartlibrary.TagReader
				err    error
			)
			if contact {
				reader, err = openContact(ctx, opts.config, &cl)
			} else {
				reader, err = openProximity(ctx, opts.config, &cl)
			}
			if err != nil {
				return err
			}

			dir, err := opts.directory()
			if err != nil {
				return err
			}

			printf(cmd, "Present a tag...\n")
			tag, err := waitForTag(ctx, reader, opts.config.PollInterval)
			if err != nil {
				return err
			}
			printf(cmd, "Tag: %s\n", tag)
			describeTag(cmd, dir, tag)
			return nil
		},
	}

	cmd.Flags().BoolVar(&contact, "contact", false, "use the RFID contact reader instead of the NFC reader")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for a tag")
	return cmd
}

// waitForTag polls reader until a tag is seen or ctx is done
func waitForTag(ctx context.Context, reader smartlibrary.TagReader, interval time.Duration) (smartlibrary.TagID, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		tag, err := reader.Poll(ctx)
		switch {
		case err == nil:
			return tag, nil
		case errors.Is(err, smartlibrary.ErrNoTag):
		case ctx.Err() != nil:
			return "", fmt.Errorf("no tag detected: %w", ctx.Err())
		default:
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("no tag detected: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func describeTag(cmd *cobra.Command, dir *smartlibrary.Directory, tag smartlibrary.TagID) {
	if s, ok := dir.FindStudentByTag(tag); ok {
		printf(cmd, "Student %s: %s (checked in: %t, books: %d)\n",
			s.ID, s.Name, s.CheckedIn, s.BooksBorrowed())
		return
	}
	if b, ok := dir.FindBookByTag(tag); ok {
		printf(cmd, "Book %s: %s by %s, shelf %s (available: %t)\n",
			b.ID, b.Title, b.Author, b.Shelf, b.Available)
		return
	}
	printf(cmd, "Unknown tag\n")
}
