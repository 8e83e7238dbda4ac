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

package polling

import (
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// ScreenMode represents the finite state machine for the display
type ScreenMode int

const (
	// ScreenIdle shows the idle screen (ready, or the checkout prompt)
	ScreenIdle ScreenMode = iota
	// ScreenMessage shows an event message until its dwell ends
	ScreenMessage
	// ScreenSearch shows a book search result until its dwell ends
	ScreenSearch
)

func (m ScreenMode) String() string {
	switch m {
	case ScreenIdle:
		return "idle"
	case ScreenMessage:
		return "message"
	case ScreenSearch:
		return "search"
	default:
		return "unknown"
	}
}

// ScreenState tracks what the display is showing and until when
type ScreenState struct {
	Until     time.Time
	SearchTag smartlibrary.TagID
	Mode      ScreenMode
}

// TransitionToMessage shows a message for dwell
func (s *ScreenState) TransitionToMessage(now time.Time, dwell time.Duration) {
	s.Mode = ScreenMessage
	s.Until = now.Add(dwell)
	s.SearchTag = ""
}

// TransitionToSearch shows the search result for tag for dwell
func (s *ScreenState) TransitionToSearch(tag smartlibrary.TagID, now time.Time, dwell time.Duration) {
	s.Mode = ScreenSearch
	s.Until = now.Add(dwell)
	s.SearchTag = tag
}

// TransitionToIdle returns to the idle screen
func (s *ScreenState) TransitionToIdle() {
	s.Mode = ScreenIdle
	s.Until = time.Time{}
	s.SearchTag = ""
}

// DwellElapsed returns true once a message or search result has been shown
// for its full dwell
func (s *ScreenState) DwellElapsed(now time.Time) bool {
	return s.Mode != ScreenIdle && !now.Before(s.Until)
}

// ShowingSearch returns true while the search result for tag is on screen
func (s *ScreenState) ShowingSearch(tag smartlibrary.TagID, now time.Time) bool {
	return s.Mode == ScreenSearch && s.SearchTag == tag && now.Before(s.Until)
}
