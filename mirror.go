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
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Gateway writes scalar values to a remote hierarchical store. Paths are
// slash-delimited ("/stats/peopleCount"). Each write stands alone; there is
// no batching and no rollback.
type Gateway interface {
	SetString(ctx context.Context, path, value string) error
	SetBool(ctx context.Context, path string, value bool) error
	SetInt(ctx context.Context, path string, value int) error
}

// MirrorConfig configures a Mirror
type MirrorConfig struct {
	// Logger receives write failures. Defaults to DefaultLogger.
	Logger Logger
	// QueueSize bounds the number of writes waiting for the gateway
	QueueSize int
	// WriteTimeout bounds each gateway call
	WriteTimeout time.Duration
}

// DefaultMirrorConfig returns default mirror settings
func DefaultMirrorConfig() *MirrorConfig {
	return &MirrorConfig{
		QueueSize:    256,
		WriteTimeout: 10 * time.Second,
	}
}

type mirrorWrite struct {
	value any
	path  string
}

// Mirror pushes field changes to a Gateway without blocking the caller.
//
// Writes are queued and applied in order by a single worker goroutine.
// Failures are logged and dropped, never retried; the in-memory records
// stay authoritative. A Mirror without a gateway is offline and discards
// every write.
type Mirror struct {
	gateway Gateway
	logger  Logger
	queue   chan mirrorWrite
	done    chan struct{}
	timeout time.Duration
	written atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
}

// NewMirror creates a mirror over gateway. A nil gateway yields an offline
// mirror.
func NewMirror(gateway Gateway, config *MirrorConfig) *Mirror {
	if config == nil {
		config = DefaultMirrorConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = DefaultLogger()
	}
	size := config.QueueSize
	if size <= 0 {
		size = DefaultMirrorConfig().QueueSize
	}
	timeout := config.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultMirrorConfig().WriteTimeout
	}

	m := &Mirror{
		gateway: gateway,
		logger:  logger,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	if gateway == nil {
		close(m.done)
		return m
	}

	m.queue = make(chan mirrorWrite, size)
	go m.run()
	return m
}

// Online reports whether writes reach a gateway
func (m *Mirror) Online() bool {
	return m.gateway != nil
}

// SetString queues a string write
func (m *Mirror) SetString(path, value string) {
	m.enqueue(path, value)
}

// SetBool queues a boolean write
func (m *Mirror) SetBool(path string, value bool) {
	m.enqueue(path, value)
}

// SetInt queues an integer write
func (m *Mirror) SetInt(path string, value int) {
	m.enqueue(path, value)
}

// Stats returns the number of applied, failed and dropped writes
func (m *Mirror) Stats() (written, failed, dropped int64) {
	return m.written.Load(), m.failed.Load(), m.dropped.Load()
}

// Close stops accepting writes and waits until the queue is drained or ctx
// is done
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		if m.queue != nil {
			close(m.queue)
		}
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mirror drain interrupted: %w", ctx.Err())
	}
}

func (m *Mirror) enqueue(path string, value any) {
	if m.gateway == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		m.dropped.Add(1)
		debugf("dropping write to %s: %v", path, ErrMirrorClosed)
		return
	}

	select {
	case m.queue <- mirrorWrite{path: path, value: value}:
	default:
		m.dropped.Add(1)
		m.logger.Warn("mirror queue full, dropping write", "path", path)
	}
}

func (m *Mirror) run() {
	defer close(m.done)
	for w := range m.queue {
		if err := m.apply(w); err != nil {
			m.failed.Add(1)
			m.logger.Warn("mirror write failed", "path", w.path, "error", err)
			continue
		}
		m.written.Add(1)
	}
}

func (m *Mirror) apply(w mirrorWrite) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	switch v := w.value.(type) {
	case string:
		return m.gateway.SetString(ctx, w.path, v)
	case bool:
		return m.gateway.SetBool(ctx, w.path, v)
	case int:
		return m.gateway.SetInt(ctx, w.path, v)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// Stats is the summary pushed under /stats
type Stats struct {
	LastSync          time.Time
	TotalStudents     int
	TotalBooks        int
	PeopleCount       int
	TotalTransactions int
}

// Remote paths
const (
	pathStudents     = "/students/"
	pathBooks        = "/books/"
	pathTransactions = "/transactions/"
	pathNoiseAlerts  = "/alerts/noise/"
	pathStats        = "/stats/"

	// PathPeopleCount is the remote occupancy field
	PathPeopleCount = pathStats + "peopleCount"
)

func millisKey(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// PublishStudent pushes the full student record
func (m *Mirror) PublishStudent(s *Student) {
	path := pathStudents + s.ID
	m.SetString(path+"/name", s.Name)
	m.SetString(path+"/rfidCard", s.Tag.String())
	m.SetBool(path+"/isCheckedIn", s.CheckedIn)
	m.SetInt(path+"/booksBorrowed", s.BooksBorrowed())
}

// PublishCheckIn pushes a student check-in or check-out
func (m *Mirror) PublishCheckIn(s *Student, at time.Time) {
	path := pathStudents + s.ID
	if s.CheckedIn {
		m.PublishStudent(s)
		m.SetString(path+"/lastCheckIn", FormatTimestamp(at))
		return
	}
	m.SetBool(path+"/isCheckedIn", false)
	m.SetString(path+"/lastCheckOut", FormatTimestamp(at))
}

// PublishBook pushes the full book record
func (m *Mirror) PublishBook(b *Book) {
	path := pathBooks + b.ID
	m.SetString(path+"/title", b.Title)
	m.SetString(path+"/author", b.Author)
	m.SetString(path+"/rfidTag", b.Tag.String())
	m.SetString(path+"/shelf", b.Shelf)
	m.SetBool(path+"/isAvailable", b.Available)
	m.SetString(path+"/borrowedBy", b.BorrowedBy)
}

// PublishLoan pushes the fields changed by a borrow or a return
func (m *Mirror) PublishLoan(result CheckoutResult) {
	book, student := result.Book, result.Student
	path := pathBooks + book.ID
	switch result.Outcome {
	case OutcomeBorrowed:
		m.PublishBook(book)
		m.SetString(path+"/borrowedTime", FormatTimestamp(book.BorrowedAt))
	case OutcomeReturned:
		m.SetBool(path+"/isAvailable", true)
		m.SetString(path+"/borrowedBy", "")
		m.SetString(path+"/returnedTime", FormatTimestamp(result.At))
	default:
		return
	}
	m.SetInt(pathStudents+student.ID+"/booksBorrowed", student.BooksBorrowed())
}

// transactionKey sorts by time and stays unique for records sharing a
// millisecond.
func transactionKey(tx Transaction) string {
	if tx.ID == "" {
		return millisKey(tx.At)
	}
	return millisKey(tx.At) + "-" + tx.ID
}

// PublishTransaction appends a transaction record keyed by its time and ID
func (m *Mirror) PublishTransaction(tx Transaction) {
	path := pathTransactions + transactionKey(tx)
	m.SetString(path+"/type", string(tx.Type))
	m.SetString(path+"/studentId", tx.StudentID)
	m.SetString(path+"/studentName", tx.StudentName)
	if tx.BookID != "" {
		m.SetString(path+"/bookId", tx.BookID)
		m.SetString(path+"/bookTitle", tx.BookTitle)
	}
	m.SetString(path+"/timestamp", FormatTimestamp(tx.At))
}

// PublishOccupancy pushes the room head count
func (m *Mirror) PublishOccupancy(count int) {
	m.SetInt(PathPeopleCount, count)
}

// PublishNoiseAlert records a noise alert keyed by its time
func (m *Mirror) PublishNoiseAlert(alert NoiseAlert) {
	m.SetInt(pathNoiseAlerts+millisKey(alert.At), alert.Level)
}

// PublishStats pushes the statistics block
func (m *Mirror) PublishStats(s Stats) {
	m.SetInt(pathStats+"totalStudents", s.TotalStudents)
	m.SetInt(pathStats+"totalBooks", s.TotalBooks)
	m.SetInt(PathPeopleCount, s.PeopleCount)
	m.SetInt(pathStats+"totalTransactions", s.TotalTransactions)
	m.SetString(pathStats+"lastSync", FormatTimestamp(s.LastSync))
}

// PublishDirectory uploads every seeded record, as done once at start-up
func (m *Mirror) PublishDirectory(dir *Directory) {
	for _, s := range dir.Students() {
		m.PublishStudent(s)
		m.SetString(pathStudents+s.ID+"/lastCheckIn", "")
	}
	for _, b := range dir.Books() {
		m.PublishBook(b)
	}
	debugln("directory queued for upload")
}
