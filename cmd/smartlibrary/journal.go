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
	"fmt"
	"text/tabwriter"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/ZaparooProject/go-smartlibrary/journal"
	"github.com/spf13/cobra"
)

func newJournalCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent transactions from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.config.Journal.Path
			if path == "" {
				return errors.New("journal is disabled in the configuration")
			}
			if limit <= 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}

			j, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()

			total, err := j.Count(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printf(cmd, "%d transactions in %s\n", total, path)
			return printTransactions(cmd, txs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of transactions to show")
	return cmd
}

func printTransactions(cmd *cobra.Command, txs []smartlibrary.Transaction) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "TIME\tTYPE\tSTUDENT\tBOOK\n")
	for _, tx := range txs {
		student := tx.StudentID
		if tx.StudentName != "" {
			student = fmt.Sprintf("%s (%s)", tx.StudentName, tx.StudentID)
		}
		book := tx.BookID
		if tx.BookTitle != "" {
			book = fmt.Sprintf("%s (%s)", tx.BookTitle, tx.BookID)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			smartlibrary.FormatTimestamp(tx.At), tx.Type, student, book)
	}
	return w.Flush()
}
