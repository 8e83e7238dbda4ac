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

import "time"

// Timestamp formatting
const (
	TimestampLayout = "2006-01-02 15:04:05"
	TimeUnavailable = "Time N/A"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock
type SystemClock struct{}

// Now returns time.Now
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FormatTimestamp renders t in local time. A clock that has not been set
// (zero time, or a year before 2020 on boards without an RTC) yields
// TimeUnavailable.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() || t.Year() < 2020 {
		return TimeUnavailable
	}
	return t.Local().Format(TimestampLayout)
}
