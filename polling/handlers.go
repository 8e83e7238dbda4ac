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
	"context"
	"fmt"
	"strconv"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// Screens
const (
	readyLine1  = "Library System"
	readyLine2  = "Ready!"
	promptLine1 = "Scan Student"
	promptLine2 = "Card Now"
)

// showIdle shows the ready screen, or the student prompt while a checkout
// is pending
func (m *Monitor) showIdle() {
	m.screen.TransitionToIdle()
	if m.checkout.Pending() {
		m.notifier.Show(promptLine1, promptLine2)
		return
	}
	m.notifier.Show(readyLine1, readyLine2)
}

func (m *Monitor) showMessage(line1, line2 string) {
	m.notifier.Show(line1, line2)
	m.screen.TransitionToMessage(m.clock.Now(), m.config.MessageDwell)
}

// handleContact routes a contact-reader tag: to the pending checkout if
// there is one, otherwise to check-in/out or to a new checkout
func (m *Monitor) handleContact(ctx context.Context, tag smartlibrary.TagID) {
	now := m.clock.Now()
	if m.checkout.Pending() {
		if result, done := m.checkout.Scan(tag, now); done {
			m.finishCheckout(ctx, result)
		}
		return
	}

	if student, ok := m.dir.FindStudentByTag(tag); ok {
		m.toggleStudent(ctx, student)
		return
	}
	if book, ok := m.dir.FindBookByTag(tag); ok {
		m.beginCheckout(book)
		return
	}

	m.metrics.unknownTags.Add(1)
	m.logger.Info("unknown tag", "reader", "contact", "tag", tag.String())
	m.showMessage("Unknown Card", tag.Short(12))
	m.notifier.Beep(smartlibrary.BeepShort, smartlibrary.BeepShort)
}

// toggleStudent checks a student in or out
func (m *Monitor) toggleStudent(ctx context.Context, s *smartlibrary.Student) {
	now := m.clock.Now()
	var (
		count int
		typ   smartlibrary.TransactionType
	)
	if !s.CheckedIn {
		s.CheckedIn = true
		s.CheckInTime = now
		count = m.occupancy.Enter()
		typ = smartlibrary.TransactionCheckIn
		m.showMessage("Welcome!", s.Name)
	} else {
		s.CheckedIn = false
		count = m.occupancy.Leave()
		typ = smartlibrary.TransactionCheckOut
		m.showMessage("Goodbye!", s.Name)
	}
	m.notifier.Beep(smartlibrary.BeepLong)
	m.logger.Info("student "+string(typ), "student", s.ID, "name", s.Name, "people", count)

	m.mirror.PublishCheckIn(s, now)
	m.mirror.PublishOccupancy(count)
	m.record(ctx, smartlibrary.NewTransaction(typ, s, nil, now))
}

// beginCheckout starts the two-scan protocol for book
func (m *Monitor) beginCheckout(book *smartlibrary.Book) {
	if err := m.checkout.Begin(book, m.clock.Now()); err != nil {
		m.logger.Warn("failed to start checkout", "book", book.ID, "error", err)
		return
	}
	m.logger.Info("book scanned, waiting for student",
		"book", book.ID, "title", book.Title, "status", book.Status())
	m.showIdle()
	m.notifier.Beep(smartlibrary.BeepShort)
}

// finishCheckout presents and records a checkout outcome
func (m *Monitor) finishCheckout(ctx context.Context, result smartlibrary.CheckoutResult) {
	book := result.Book
	switch result.Outcome {
	case smartlibrary.OutcomeBorrowed:
		m.showMessage("Book Borrowed", book.Title)
		m.notifier.Beep(smartlibrary.BeepLong)
	case smartlibrary.OutcomeReturned:
		m.showMessage("Book Returned", book.Title)
		m.notifier.Beep(smartlibrary.BeepLong)
	case smartlibrary.OutcomeRejectedWrongBorrower:
		m.showMessage("Wrong Student!", "Not your book")
		m.notifier.Beep(smartlibrary.BeepShort, smartlibrary.BeepShort)
	case smartlibrary.OutcomeRejectedLimit:
		m.showMessage("Limit Reached", fmt.Sprintf("Max %d books", smartlibrary.MaxBorrowedBooks))
		m.notifier.Beep(smartlibrary.BeepShort, smartlibrary.BeepShort)
	case smartlibrary.OutcomeTimedOut:
		m.metrics.checkoutTimeouts.Add(1)
		m.showMessage("Timeout!", "Try Again")
		m.notifier.Beep(smartlibrary.BeepShort)
	}

	args := []any{"book", book.ID, "outcome", result.Outcome.String()}
	if result.Student != nil {
		args = append(args, "student", result.Student.ID)
	}
	m.logger.Info("checkout finished", args...)

	if !result.Outcome.Mutated() {
		return
	}
	m.mirror.PublishLoan(result)
	typ := smartlibrary.TransactionBorrow
	if result.Outcome == smartlibrary.OutcomeReturned {
		typ = smartlibrary.TransactionReturn
	}
	m.record(ctx, smartlibrary.NewTransaction(typ, result.Student, book, result.At))
}

// record appends a transaction to the mirror and the journal
func (m *Monitor) record(ctx context.Context, tx smartlibrary.Transaction) {
	m.transactions++
	m.metrics.transactions.Add(1)
	m.mirror.PublishTransaction(tx)
	if m.journal == nil {
		return
	}
	if err := m.journal.Append(ctx, tx); err != nil {
		m.logger.Warn("failed to journal transaction", "id", tx.ID, "type", string(tx.Type), "error", err)
	}
}

// handleProximity shows where a book is shelved. The same tag is ignored
// while its result is on screen.
func (m *Monitor) handleProximity(tag smartlibrary.TagID) {
	now := m.clock.Now()
	if m.screen.ShowingSearch(tag, now) {
		return
	}

	book, ok := m.dir.FindBookByTag(tag)
	if !ok {
		m.metrics.unknownTags.Add(1)
		m.logger.Info("unknown tag", "reader", "proximity", "tag", tag.String())
		m.notifier.Show("Book Not Found", tag.Short(12))
		m.notifier.Beep(smartlibrary.BeepShort, smartlibrary.BeepShort)
		m.screen.TransitionToSearch(tag, now, m.config.MessageDwell)
		return
	}

	m.logger.Info("book found", "book", book.ID, "shelf", book.Shelf, "status", book.Status())
	m.notifier.Show(book.Title, "Shelf: "+book.Shelf)
	m.notifier.Beep(smartlibrary.BeepSearch)
	m.screen.TransitionToSearch(tag, now, m.config.SearchDwell)
}

func (m *Monitor) handleEntry() {
	count := m.occupancy.Enter()
	m.metrics.entries.Add(1)
	m.showOccupancy("Entry Detected", count)
}

func (m *Monitor) handleExit() {
	count := m.occupancy.Leave()
	m.metrics.exits.Add(1)
	m.showOccupancy("Exit Detected", count)
}

func (m *Monitor) showOccupancy(line1 string, count int) {
	m.logger.Info(line1, "people", count)
	m.notifier.Show(line1, "Count: "+strconv.Itoa(count))
	m.notifier.Beep(smartlibrary.BeepShort)
	m.screen.TransitionToMessage(m.clock.Now(), m.config.OccupancyDwell)
	m.mirror.PublishOccupancy(count)
}

func (m *Monitor) handleNoise(alert smartlibrary.NoiseAlert) {
	m.metrics.noiseAlerts.Add(1)
	m.logger.Warn("noise alert", "level", alert.Level, "threshold", m.noise.Threshold())
	m.showMessage("QUIET PLEASE!", "Noise: "+strconv.Itoa(alert.Level))
	m.notifier.Beep(smartlibrary.BeepShort, smartlibrary.BeepShort)
	m.mirror.PublishNoiseAlert(alert)
}
