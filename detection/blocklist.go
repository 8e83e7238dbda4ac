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

package detection

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB serial devices, as VID:PID, that must not be
// opened: the PN532 wakeup sequence upsets them
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets on open
	}
}

// IsBlocked reports whether the USB device vid:pid is on the blocklist.
// Hex digits compare case-insensitively.
func IsBlocked(vid, pid string, blocklist []string) bool {
	if vid == "" || pid == "" {
		return false
	}
	id := vid + ":" + pid
	for _, blocked := range blocklist {
		if strings.EqualFold(strings.TrimSpace(blocked), id) {
			return true
		}
	}
	return false
}

// IsPathIgnored reports whether devicePath is one of ignorePaths once both
// are cleaned. Paths compare case-insensitively.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := filepath.Clean(devicePath)
	for _, ignored := range ignorePaths {
		if ignored != "" && strings.EqualFold(filepath.Clean(ignored), device) {
			return true
		}
	}
	return false
}
