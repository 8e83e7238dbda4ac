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
	"strings"
	"text/tabwriter"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/spf13/cobra"
)

func newDirectoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "directory",
		Short: "List the students and books loaded at start-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.directory()
			if err != nil {
				return err
			}
			return printDirectory(cmd, dir)
		},
	}
}

func printDirectory(cmd *cobra.Command, dir *smartlibrary.Directory) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "STUDENT\tNAME\tTAG\tCHECKED IN\tBOOKS\n")
	for _, s := range dir.Students() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			s.ID, s.Name, s.Tag, s.CheckedIn, strings.Join(s.BorrowedBooks, ","))
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "BOOK\tTITLE\tAUTHOR\tTAG\tSHELF\tAVAILABLE\n")
	for _, b := range dir.Books() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
			b.ID, b.Title, b.Author, b.Tag, b.Shelf, b.Available)
	}
	return w.Flush()
}
