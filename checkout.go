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
	"time"
)

// Checkout defaults
const (
	DefaultCheckoutTimeout = 10 * time.Second
	DefaultLoanPeriod      = 14 * 24 * time.Hour
)

// CheckoutState is the state of the two-scan checkout protocol
type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	CheckoutAwaitStudent
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutIdle:
		return "IDLE"
	case CheckoutAwaitStudent:
		return "AWAIT_STUDENT_TAG"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

// Outcome is the terminal result of a checkout
type Outcome int

const (
	OutcomeBorrowed Outcome = iota + 1
	OutcomeReturned
	OutcomeRejectedWrongBorrower
	OutcomeTimedOut
	OutcomeRejectedLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBorrowed:
		return "BORROWED"
	case OutcomeReturned:
		return "RETURNED"
	case OutcomeRejectedWrongBorrower:
		return "REJECTED_WRONG_BORROWER"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	case OutcomeRejectedLimit:
		return "REJECTED_LIMIT"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Mutated reports whether the outcome changed any record
func (o Outcome) Mutated() bool {
	return o == OutcomeBorrowed || o == OutcomeReturned
}

// CheckoutResult describes a finished checkout. Student is nil on timeout.
type CheckoutResult struct {
	At      time.Time
	Book    *Book
	Student *Student
	Outcome Outcome
}

// Checkout correlates a book scan with the following student scan.
//
// Begin moves the protocol from CheckoutIdle to CheckoutAwaitStudent. From
// there, Scan completes it when a registered student tag arrives, and Expire
// completes it with OutcomeTimedOut once the deadline passes. The pending
// state is plain data, so the caller can keep servicing other inputs while
// a checkout is waiting.
type Checkout struct {
	started    time.Time
	dir        *Directory
	book       *Book
	timeout    time.Duration
	loanPeriod time.Duration
	state      CheckoutState
}

// NewCheckout creates an idle checkout over dir. Non-positive durations
// select the defaults.
func NewCheckout(dir *Directory, timeout, loanPeriod time.Duration) *Checkout {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}
	return &Checkout{
		dir:        dir,
		timeout:    timeout,
		loanPeriod: loanPeriod,
	}
}

// State returns the protocol state
func (c *Checkout) State() CheckoutState {
	return c.state
}

// Pending reports whether a student scan is awaited
func (c *Checkout) Pending() bool {
	return c.state == CheckoutAwaitStudent
}

// Book returns the book of the pending checkout, or nil
func (c *Checkout) Book() *Book {
	return c.book
}

// Deadline returns when the pending checkout times out
func (c *Checkout) Deadline() time.Time {
	if !c.Pending() {
		return time.Time{}
	}
	return c.started.Add(c.timeout)
}

// Begin starts a checkout for book
func (c *Checkout) Begin(book *Book, now time.Time) error {
	if book == nil {
		return ErrUnknownTag
	}
	if c.Pending() {
		return ErrCheckoutPending
	}
	c.state = CheckoutAwaitStudent
	c.book = book
	c.started = now
	debugf("checkout started for book %s, deadline %s", book.ID, c.Deadline().Format(time.StampMilli))
	return nil
}

// Scan offers a contact-reader tag to the pending checkout. Tags that do
// not belong to a registered student are ignored and the checkout keeps
// waiting; done is false in that case.
func (c *Checkout) Scan(tag TagID, now time.Time) (result CheckoutResult, done bool) {
	if !c.Pending() {
		return CheckoutResult{}, false
	}
	if c.expired(now) {
		return c.Expire(now)
	}

	student, ok := c.dir.FindStudentByTag(tag)
	if !ok {
		debugf("checkout ignoring non-student tag %s", tag)
		return CheckoutResult{}, false
	}
	return c.complete(student, now), true
}

// Expire ends the pending checkout with OutcomeTimedOut once its deadline
// has passed
func (c *Checkout) Expire(now time.Time) (CheckoutResult, bool) {
	if !c.Pending() || !c.expired(now) {
		return CheckoutResult{}, false
	}
	result := CheckoutResult{Outcome: OutcomeTimedOut, Book: c.book, At: now}
	c.reset()
	return result, true
}

// Cancel abandons a pending checkout without an outcome
func (c *Checkout) Cancel() {
	c.reset()
}

func (c *Checkout) expired(now time.Time) bool {
	return now.Sub(c.started) >= c.timeout
}

func (c *Checkout) reset() {
	c.state = CheckoutIdle
	c.book = nil
	c.started = time.Time{}
}

func (c *Checkout) complete(student *Student, now time.Time) CheckoutResult {
	book := c.book
	defer c.reset()

	result := CheckoutResult{Book: book, Student: student, At: now}
	switch {
	case book.Available:
		if err := student.addBook(book.ID); err != nil {
			result.Outcome = OutcomeRejectedLimit
			return result
		}
		book.Available = false
		book.BorrowedBy = student.ID
		book.BorrowedAt = now
		book.DueAt = now.Add(c.loanPeriod)
		result.Outcome = OutcomeBorrowed
	case book.BorrowedBy == student.ID:
		student.removeBook(book.ID)
		book.Available = true
		book.BorrowedBy = ""
		book.BorrowedAt = time.Time{}
		book.DueAt = time.Time{}
		result.Outcome = OutcomeReturned
	default:
		result.Outcome = OutcomeRejectedWrongBorrower
	}

	debugf("checkout of %s by %s: %s", book.ID, student.ID, result.Outcome)
	return result
}
