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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/ZaparooProject/go-smartlibrary/journal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	errs []error
	tag  smartlibrary.TagID
	n    int
}

func (r *scriptedReader) Poll(context.Context) (smartlibrary.TagID, error) {
	defer func() { r.n++ }()
	if r.n < len(r.errs) {
		return "", r.errs[r.n]
	}
	return r.tag, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWaitForTag(t *testing.T) {
	t.Parallel()

	t.Run("SkipsAbsence", func(t *testing.T) {
		t.Parallel()
		r := &scriptedReader{
			errs: []error{smartlibrary.ErrNoTag, smartlibrary.ErrNoTag},
			tag:  "E7D2B865",
		}
		tag, err := waitForTag(context.Background(), r, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, smartlibrary.TagID("E7D2B865"), tag)
		assert.Equal(t, 3, r.n)
	})

	t.Run("ReaderFailure", func(t *testing.T) {
		t.Parallel()
		failure := errors.New("bus error")
		r := &scriptedReader{errs: []error{failure}}
		_, err := waitForTag(context.Background(), r, time.Millisecond)
		require.ErrorIs(t, err, failure)
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()
		errs := make([]error, 1000)
		for i := range errs {
			errs[i] = smartlibrary.ErrNoTag
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := waitForTag(ctx, &scriptedReader{errs: errs}, time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDescribeTag(t *testing.T) {
	t.Parallel()

	dir := smartlibrary.NewDirectory(0, 0)
	require.NoError(t, smartlibrary.DefaultSeed().Populate(dir))

	tests := []struct {
		name string
		tag  smartlibrary.TagID
		want string
	}{
		{name: "Student", tag: "13E31EA8", want: "Student S001: Student 1"},
		{name: "Book", tag: "E7D2B865", want: "Book B001: Arduino Guide by Tech Author, shelf A1"},
		{name: "Unknown", tag: "DEADBEEF", want: "Unknown tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := &cobra.Command{}
			var out bytes.Buffer
			cmd.SetOut(&out)
			describeTag(cmd, dir, tt.tag)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestClosers(t *testing.T) {
	t.Parallel()

	var order []int
	failure := errors.New("close failed")
	var cl closers
	cl.add(closeFunc(func() error { order = append(order, 1); return nil }))
	cl.add(closeFunc(func() error { order = append(order, 2); return failure }))
	cl.add(closeFunc(func() error { order = append(order, 3); return nil }))

	require.ErrorIs(t, cl.Close(), failure)
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestNewTransport_UnsupportedKind(t *testing.T) {
	t.Parallel()
	_, err := newTransport("/dev/spidev0.0", "spi")
	require.ErrorContains(t, err, "unsupported transport type")
}

func TestDirectoryCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "directory")
	require.NoError(t, err)
	assert.Contains(t, out, "S001")
	assert.Contains(t, out, "Arduino Guide")
	assert.Contains(t, out, "AVAILABLE")
}

func TestDirectoryCommand_SeedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
students:
  - {id: S100, name: Ada, tag: "01020304"}
books:
  - {id: B100, title: Compilers, author: Aho, tag: "0A0B0C0D", shelf: C3}
`), 0o600))
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("library:\n  seed_file: "+seed+"\n"), 0o600))

	out, err := execute(t, "--config", config, "directory")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Compilers")
	assert.NotContains(t, out, "Arduino Guide")
}

func TestJournalCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	student := &smartlibrary.Student{ID: "S001", Name: "Student 1"}
	book := &smartlibrary.Book{ID: "B001", Title: "Arduino Guide"}
	require.NoError(t, j.Append(ctx, smartlibrary.NewTransaction(smartlibrary.TransactionCheckIn, student, nil, at)))
	require.NoError(t, j.Append(ctx, smartlibrary.NewTransaction(smartlibrary.TransactionBorrow, student, book, at.Add(time.Minute))))
	require.NoError(t, j.Close())

	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("journal:\n  path: "+path+"\n"), 0o600))

	out, err := execute(t, "--config", config, "journal", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2 transactions")
	assert.Contains(t, out, "BORROW")
	assert.Contains(t, out, "Arduino Guide (B001)")
	assert.NotContains(t, out, "CHECK_IN")
}
