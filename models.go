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
	"encoding/hex"
	"strings"
	"time"
)

// MaxBorrowedBooks is the number of book slots a student record holds
const MaxBorrowedBooks = 5

// TagID is the upper-case hexadecimal UID of an RFID/NFC tag, without
// separators (e.g. "13E31EA8").
type TagID string

// ParseTagID normalizes a textual UID: separators are dropped and hex digits
// upper-cased. "13:e3:1e:a8" and "13e31ea8" both become "13E31EA8".
func ParseTagID(s string) TagID {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			_, _ = b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			_, _ = b.WriteRune(r - 'a' + 'A')
		}
	}
	return TagID(b.String())
}

// TagIDFromBytes formats a raw UID
func TagIDFromBytes(uid []byte) TagID {
	return TagID(strings.ToUpper(hex.EncodeToString(uid)))
}

// String returns the identifier as text
func (t TagID) String() string {
	return string(t)
}

// Short returns at most n characters of the identifier, for display
func (t TagID) Short(n int) string {
	return Truncate(string(t), n)
}

// Student is a registered library user
type Student struct {
	CheckInTime   time.Time
	ID            string
	Name          string
	Tag           TagID
	BorrowedBooks []string
	CheckedIn     bool
}

// BooksBorrowed returns the number of books currently held
func (s *Student) BooksBorrowed() int {
	return len(s.BorrowedBooks)
}

// Holds reports whether the student holds the given book
func (s *Student) Holds(bookID string) bool {
	for _, id := range s.BorrowedBooks {
		if id == bookID {
			return true
		}
	}
	return false
}

func (s *Student) addBook(bookID string) error {
	if len(s.BorrowedBooks) >= MaxBorrowedBooks {
		return ErrBorrowLimit
	}
	s.BorrowedBooks = append(s.BorrowedBooks, bookID)
	return nil
}

func (s *Student) removeBook(bookID string) bool {
	for i, id := range s.BorrowedBooks {
		if id == bookID {
			s.BorrowedBooks = append(s.BorrowedBooks[:i], s.BorrowedBooks[i+1:]...)
			return true
		}
	}
	return false
}

// Book is a catalogued, tagged book.
//
// Available is true exactly when BorrowedBy is empty.
type Book struct {
	BorrowedAt time.Time
	DueAt      time.Time
	ID         string
	Title      string
	Author     string
	Tag        TagID
	BorrowedBy string
	Shelf      string
	Available  bool
}

// OnLoan reports whether the book is checked out
func (b *Book) OnLoan() bool {
	return !b.Available
}

// Status returns a human-readable availability
func (b *Book) Status() string {
	if b.Available {
		return "Available"
	}
	return "On Loan"
}
