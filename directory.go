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
	"fmt"
)

// Default directory capacities
const (
	DefaultMaxStudents = 50
	DefaultMaxBooks    = 100
)

// Directory holds the student and book records known to the controller.
//
// Records are kept in insertion order and looked up by linear scan, so when
// two records share a tag the earlier one always wins. Tags are not checked
// for uniqueness.
type Directory struct {
	students    []*Student
	books       []*Book
	maxStudents int
	maxBooks    int
}

// NewDirectory creates an empty directory. Non-positive capacities select
// the defaults.
func NewDirectory(maxStudents, maxBooks int) *Directory {
	if maxStudents <= 0 {
		maxStudents = DefaultMaxStudents
	}
	if maxBooks <= 0 {
		maxBooks = DefaultMaxBooks
	}
	return &Directory{
		maxStudents: maxStudents,
		maxBooks:    maxBooks,
	}
}

// AddStudent stores a copy of s and returns the stored record
func (d *Directory) AddStudent(s Student) (*Student, error) {
	if s.ID == "" || s.Tag == "" {
		return nil, fmt.Errorf("%w: student needs an ID and a tag", ErrInvalidRecord)
	}
	if len(d.students) >= d.maxStudents {
		return nil, fmt.Errorf("%w: %d students", ErrDirectoryFull, d.maxStudents)
	}
	if len(s.BorrowedBooks) > MaxBorrowedBooks {
		return nil, fmt.Errorf("%w: student %s holds more than %d books", ErrInvalidRecord, s.ID, MaxBorrowedBooks)
	}

	rec := s
	rec.BorrowedBooks = append([]string(nil), s.BorrowedBooks...)
	d.students = append(d.students, &rec)
	return &rec, nil
}

// AddBook stores a copy of b and returns the stored record. Availability is
// derived from BorrowedBy.
func (d *Directory) AddBook(b Book) (*Book, error) {
	if b.ID == "" || b.Tag == "" {
		return nil, fmt.Errorf("%w: book needs an ID and a tag", ErrInvalidRecord)
	}
	if len(d.books) >= d.maxBooks {
		return nil, fmt.Errorf("%w: %d books", ErrDirectoryFull, d.maxBooks)
	}

	rec := b
	rec.Available = rec.BorrowedBy == ""
	d.books = append(d.books, &rec)
	return &rec, nil
}

// FindStudentByTag returns the first student registered with tag
func (d *Directory) FindStudentByTag(tag TagID) (*Student, bool) {
	for _, s := range d.students {
		if s.Tag == tag {
			return s, true
		}
	}
	return nil, false
}

// FindBookByTag returns the first book registered with tag
func (d *Directory) FindBookByTag(tag TagID) (*Book, bool) {
	for _, b := range d.books {
		if b.Tag == tag {
			return b, true
		}
	}
	return nil, false
}

// StudentByID returns the student with the given ID
func (d *Directory) StudentByID(id string) (*Student, bool) {
	for _, s := range d.students {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// BookByID returns the book with the given ID
func (d *Directory) BookByID(id string) (*Book, bool) {
	for _, b := range d.books {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Students returns the student records in insertion order
func (d *Directory) Students() []*Student {
	return append([]*Student(nil), d.students...)
}

// Books returns the book records in insertion order
func (d *Directory) Books() []*Book {
	return append([]*Book(nil), d.books...)
}

// StudentCount returns the number of student records
func (d *Directory) StudentCount() int {
	return len(d.students)
}

// BookCount returns the number of book records
func (d *Directory) BookCount() int {
	return len(d.books)
}
