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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, TimeUnavailable, FormatTimestamp(time.Time{}))
	assert.Equal(t, TimeUnavailable, FormatTimestamp(time.Unix(42, 0)))
	assert.Equal(t, "2025-03-01 09:05:07",
		FormatTimestamp(time.Date(2025, 3, 1, 9, 5, 7, 0, time.Local)))
}

func TestManualClock(t *testing.T) {
	t.Parallel()
	c := NewManualClock(testEpoch)
	assert.Equal(t, testEpoch, c.Now())
	assert.Equal(t, testEpoch.Add(time.Second), c.Advance(time.Second))
	assert.Equal(t, testEpoch.Add(time.Second), c.Now())
}

func TestNewTransaction(t *testing.T) {
	t.Parallel()
	s := &Student{ID: "S001", Name: "Student 1"}
	b := &Book{ID: "B001", Title: "Arduino Guide"}

	borrow := NewTransaction(TransactionBorrow, s, b, testEpoch)
	assert.Equal(t, TransactionBorrow, borrow.Type)
	assert.Equal(t, "S001", borrow.StudentID)
	assert.Equal(t, "Student 1", borrow.StudentName)
	assert.Equal(t, "B001", borrow.BookID)
	assert.Equal(t, "Arduino Guide", borrow.BookTitle)
	assert.Equal(t, testEpoch, borrow.At)
	assert.Len(t, borrow.ID, 36)

	checkIn := NewTransaction(TransactionCheckIn, s, nil, testEpoch)
	assert.Empty(t, checkIn.BookID)
	assert.NotEqual(t, borrow.ID, checkIn.ID)
}
