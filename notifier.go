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
	"time"
)

// DisplayWidth is the number of columns on the character display
const DisplayWidth = 16

// Beep lengths used by the controller
const (
	BeepShort  = 100 * time.Millisecond
	BeepSearch = 150 * time.Millisecond
	BeepLong   = 200 * time.Millisecond
	// BeepGap separates the beeps of a pattern
	BeepGap = 100 * time.Millisecond
)

// Notifier presents messages to the person at the desk
type Notifier interface {
	// Show replaces the two display lines
	Show(line1, line2 string)
	// Beep sounds each duration in turn, separated by BeepGap
	Beep(pattern ...time.Duration)
}

// Display is a two-line character display
type Display interface {
	Show(line1, line2 string) error
}

// Beeper drives a buzzer
type Beeper interface {
	Beep(pattern ...time.Duration)
}

// Panel combines an optional display and an optional buzzer into a Notifier.
// Every message is also logged.
type Panel struct {
	Display Display
	Buzzer  Beeper
	Logger  Logger
}

// Show writes the lines to the display and the log
func (p *Panel) Show(line1, line2 string) {
	line1, line2 = Truncate(line1, DisplayWidth), Truncate(line2, DisplayWidth)
	if p.Logger != nil {
		p.Logger.Debug("display", "line1", line1, "line2", line2)
	}
	if p.Display == nil {
		return
	}
	if err := p.Display.Show(line1, line2); err != nil && p.Logger != nil {
		p.Logger.Warn("display update failed", "error", err)
	}
}

// Beep forwards the pattern to the buzzer
func (p *Panel) Beep(pattern ...time.Duration) {
	if p.Buzzer != nil && len(pattern) > 0 {
		p.Buzzer.Beep(pattern...)
	}
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
