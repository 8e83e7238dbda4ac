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
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDisplay struct {
	err   error
	lines [][2]string
}

func (d *fakeDisplay) Show(line1, line2 string) error {
	d.lines = append(d.lines, [2]string{line1, line2})
	return d.err
}

type fakeBeeper struct {
	patterns [][]time.Duration
}

func (b *fakeBeeper) Beep(pattern ...time.Duration) {
	b.patterns = append(b.patterns, pattern)
}

func TestPanel_Show(t *testing.T) {
	t.Parallel()
	display := &fakeDisplay{}
	panel := &Panel{Display: display, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	panel.Show("The Very Long Book Title", "Shelf: A1")
	assert.Equal(t, [][2]string{{"The Very Long Bo", "Shelf: A1"}}, display.lines)

	// Display errors are logged, not returned
	display.err = errors.New("i2c nack")
	panel.Show("Library System", "Ready!")
	assert.Len(t, display.lines, 2)
}

func TestPanel_NoHardware(t *testing.T) {
	t.Parallel()
	panel := &Panel{}
	assert.NotPanics(t, func() {
		panel.Show("Library System", "Ready!")
		panel.Beep(BeepShort)
	})
}

func TestPanel_Beep(t *testing.T) {
	t.Parallel()
	buzzer := &fakeBeeper{}
	panel := &Panel{Buzzer: buzzer}

	panel.Beep()
	panel.Beep(BeepShort, BeepShort)
	assert.Equal(t, [][]time.Duration{{BeepShort, BeepShort}}, buzzer.patterns)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", Truncate("abc", 16))
	assert.Equal(t, "abcdefghijklmnop", Truncate("abcdefghijklmnopqrstuvwxyz", DisplayWidth))
	assert.Equal(t, "Ünï", Truncate("Ünïcode", 3))
	assert.Empty(t, Truncate("abc", 0))
}
