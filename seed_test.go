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

package smartlibrary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed_Populate(t *testing.T) {
	t.Parallel()
	dir := NewDirectory(0, 0)
	require.NoError(t, DefaultSeed().Populate(dir))

	assert.Equal(t, 3, dir.StudentCount())
	assert.Equal(t, 2, dir.BookCount())

	b, ok := dir.FindBookByTag("E7D2B865")
	require.True(t, ok)
	assert.Equal(t, "B001", b.ID)
	assert.Equal(t, "Arduino Guide", b.Title)
	assert.Equal(t, "Tech Author", b.Author)
	assert.Equal(t, "A1", b.Shelf)
	assert.True(t, b.Available)
	assert.Empty(t, b.BorrowedBy)

	for _, s := range dir.Students() {
		assert.False(t, s.CheckedIn)
		assert.Zero(t, s.BooksBorrowed())
	}
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := `students:
  - id: S010
    name: Ada
    tag: "de:ad:be:ef"
books:
  - id: B010
    title: Go Programming
    author: Someone
    tag: 0a0b0c0d
    shelf: C3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	dir := NewDirectory(0, 0)
	require.NoError(t, seed.Populate(dir))

	s, ok := dir.FindStudentByTag("DEADBEEF")
	require.True(t, ok)
	assert.Equal(t, "Ada", s.Name)

	b, ok := dir.FindBookByTag("0A0B0C0D")
	require.True(t, ok)
	assert.Equal(t, "C3", b.Shelf)
}

func TestLoadSeed_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("students: [\n"), 0o600))
	_, err = LoadSeed(path)
	require.Error(t, err)
}

func TestSeed_PopulateRejectsOverflow(t *testing.T) {
	t.Parallel()
	dir := NewDirectory(2, 10)
	err := DefaultSeed().Populate(dir)
	require.ErrorIs(t, err, ErrDirectoryFull)
}
