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
	"github.com/stretchr/testify/require"
)

func newTestCheckout(t *testing.T) (*Checkout, *Directory) {
	t.Helper()
	dir := seededDirectory(t)
	return NewCheckout(dir, 0, 0), dir
}

func lookup(t *testing.T, dir *Directory, studentID, bookID string) (*Student, *Book) {
	t.Helper()
	s, ok := dir.StudentByID(studentID)
	require.True(t, ok)
	b, ok := dir.BookByID(bookID)
	require.True(t, ok)
	return s, b
}

func borrow(t *testing.T, c *Checkout, book *Book, studentTag TagID, now time.Time) CheckoutResult {
	t.Helper()
	require.NoError(t, c.Begin(book, now))
	result, done := c.Scan(studentTag, now.Add(time.Second))
	require.True(t, done)
	return result
}

func TestCheckout_Borrow(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	student, book := lookup(t, dir, "S001", "B001")

	require.NoError(t, c.Begin(book, testEpoch))
	assert.Equal(t, CheckoutAwaitStudent, c.State())
	assert.Same(t, book, c.Book())
	assert.Equal(t, testEpoch.Add(DefaultCheckoutTimeout), c.Deadline())

	at := testEpoch.Add(3 * time.Second)
	result, done := c.Scan("13E31EA8", at)
	require.True(t, done)

	assert.Equal(t, OutcomeBorrowed, result.Outcome)
	assert.Same(t, student, result.Student)
	assert.Same(t, book, result.Book)
	assert.Equal(t, at, result.At)
	assert.False(t, book.Available)
	assert.Equal(t, "S001", book.BorrowedBy)
	assert.Equal(t, at, book.BorrowedAt)
	assert.Equal(t, at.Add(DefaultLoanPeriod), book.DueAt)
	assert.Equal(t, 1, student.BooksBorrowed())
	assert.True(t, student.Holds("B001"))

	assert.Equal(t, CheckoutIdle, c.State())
	assert.Nil(t, c.Book())
	assert.True(t, c.Deadline().IsZero())
}

func TestCheckout_BorrowThenReturn(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	student, book := lookup(t, dir, "S001", "B001")
	before := student.BooksBorrowed()

	assert.Equal(t, OutcomeBorrowed, borrow(t, c, book, student.Tag, testEpoch).Outcome)
	result := borrow(t, c, book, student.Tag, testEpoch.Add(time.Minute))

	assert.Equal(t, OutcomeReturned, result.Outcome)
	assert.True(t, book.Available)
	assert.Empty(t, book.BorrowedBy)
	assert.True(t, book.BorrowedAt.IsZero())
	assert.True(t, book.DueAt.IsZero())
	assert.Equal(t, before, student.BooksBorrowed())
}

func TestCheckout_WrongBorrower(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	owner, book := lookup(t, dir, "S001", "B001")
	other, _ := lookup(t, dir, "S002", "B001")

	borrow(t, c, book, owner.Tag, testEpoch)
	bookBefore := *book
	ownerBooks := append([]string(nil), owner.BorrowedBooks...)

	result := borrow(t, c, book, other.Tag, testEpoch.Add(time.Minute))
	assert.Equal(t, OutcomeRejectedWrongBorrower, result.Outcome)
	assert.False(t, result.Outcome.Mutated())

	assert.Equal(t, bookBefore, *book)
	assert.Equal(t, ownerBooks, owner.BorrowedBooks)
	assert.Zero(t, other.BooksBorrowed())
	assert.Equal(t, CheckoutIdle, c.State())
}

func TestCheckout_Timeout(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	student, book := lookup(t, dir, "S001", "B001")
	bookBefore := *book

	require.NoError(t, c.Begin(book, testEpoch))

	_, expired := c.Expire(testEpoch.Add(DefaultCheckoutTimeout - time.Millisecond))
	assert.False(t, expired)
	assert.True(t, c.Pending())

	result, expired := c.Expire(testEpoch.Add(DefaultCheckoutTimeout))
	require.True(t, expired)
	assert.Equal(t, OutcomeTimedOut, result.Outcome)
	assert.Nil(t, result.Student)
	assert.Same(t, book, result.Book)
	assert.Equal(t, bookBefore, *book)
	assert.Zero(t, student.BooksBorrowed())
	assert.False(t, c.Pending())

	_, expired = c.Expire(testEpoch.Add(time.Hour))
	assert.False(t, expired, "idle checkout never expires")
}

func TestCheckout_LateScanTimesOut(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	student, book := lookup(t, dir, "S001", "B001")

	require.NoError(t, c.Begin(book, testEpoch))
	result, done := c.Scan(student.Tag, testEpoch.Add(11*time.Second))
	require.True(t, done)
	assert.Equal(t, OutcomeTimedOut, result.Outcome)
	assert.True(t, book.Available)
	assert.Zero(t, student.BooksBorrowed())
}

func TestCheckout_IgnoresNonStudentTags(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	_, book := lookup(t, dir, "S001", "B001")

	require.NoError(t, c.Begin(book, testEpoch))
	for _, tag := range []TagID{"7340AFFD", "E7D2B865", "DEADBEEF"} {
		_, done := c.Scan(tag, testEpoch.Add(time.Second))
		assert.False(t, done, tag)
	}
	assert.True(t, c.Pending())
}

func TestCheckout_BeginErrors(t *testing.T) {
	t.Parallel()
	c, dir := newTestCheckout(t)
	_, book := lookup(t, dir, "S001", "B001")

	require.ErrorIs(t, c.Begin(nil, testEpoch), ErrUnknownTag)
	require.NoError(t, c.Begin(book, testEpoch))
	require.ErrorIs(t, c.Begin(book, testEpoch), ErrCheckoutPending)

	c.Cancel()
	assert.False(t, c.Pending())
	_, done := c.Scan("13E31EA8", testEpoch)
	assert.False(t, done, "scan without a pending checkout")
}

func TestCheckout_BorrowLimit(t *testing.T) {
	t.Parallel()
	dir := NewDirectory(0, 0)
	student, err := dir.AddStudent(Student{
		ID:            "S001",
		Tag:           "13E31EA8",
		BorrowedBooks: []string{"X1", "X2", "X3", "X4", "X5"},
	})
	require.NoError(t, err)
	book, err := dir.AddBook(Book{ID: "B001", Tag: "E7D2B865"})
	require.NoError(t, err)

	c := NewCheckout(dir, 0, time.Hour)
	result := borrow(t, c, book, student.Tag, testEpoch)
	assert.Equal(t, OutcomeRejectedLimit, result.Outcome)
	assert.False(t, result.Outcome.Mutated())
	assert.Same(t, student, result.Student)
	assert.Equal(t, CheckoutIdle, c.State())
	assert.True(t, book.Available)
	assert.Empty(t, book.BorrowedBy)
	assert.Equal(t, MaxBorrowedBooks, student.BooksBorrowed())
	assert.False(t, student.Holds("B001"))
}

func TestCheckout_ScanAtDeadlineTimesOut(t *testing.T) {
	t.Parallel()
	dir := NewDirectory(0, 0)
	_, err := dir.AddStudent(Student{ID: "S001", Tag: "13E31EA8"})
	require.NoError(t, err)
	book, err := dir.AddBook(Book{ID: "B001", Tag: "E7D2B865"})
	require.NoError(t, err)

	c := NewCheckout(dir, time.Second, time.Hour)
	result := borrow(t, c, book, "13E31EA8", testEpoch)
	assert.Equal(t, OutcomeTimedOut, result.Outcome)
	assert.True(t, book.Available)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "BORROWED", OutcomeBorrowed.String())
	assert.Equal(t, "RETURNED", OutcomeReturned.String())
	assert.Equal(t, "REJECTED_WRONG_BORROWER", OutcomeRejectedWrongBorrower.String())
	assert.Equal(t, "TIMED_OUT", OutcomeTimedOut.String())
	assert.Equal(t, "REJECTED_LIMIT", OutcomeRejectedLimit.String())
	assert.Equal(t, "Outcome(0)", Outcome(0).String())
	assert.Equal(t, "IDLE", CheckoutIdle.String())
	assert.Equal(t, "AWAIT_STUDENT_TAG", CheckoutAwaitStudent.String())
}
