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
	"errors"
	"sync"
	"time"
)

// ErrMockFailure is returned by mocks configured to fail
var ErrMockFailure = errors.New("mock failure")

// ManualClock is a Clock that only moves when told to
type ManualClock struct {
	now time.Time
	mu  sync.Mutex
}

// NewManualClock creates a clock stopped at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// MockTagReader returns queued tags, one per poll, then ErrNoTag
type MockTagReader struct {
	queue []mockRead
	polls int
	mu    sync.Mutex
}

type mockRead struct {
	err error
	tag TagID
}

// NewMockTagReader creates a reader with nothing queued
func NewMockTagReader() *MockTagReader {
	return &MockTagReader{}
}

// Present queues tags to be returned by the next polls
func (r *MockTagReader) Present(tags ...TagID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range tags {
		r.queue = append(r.queue, mockRead{tag: tag})
	}
}

// Fail queues a read failure
func (r *MockTagReader) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, mockRead{err: err})
}

// Poll returns the next queued read
func (r *MockTagReader) Poll(ctx context.Context) (TagID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(r.queue) == 0 {
		return "", ErrNoTag
	}
	next := r.queue[0]
	r.queue = r.queue[1:]
	if next.err != nil {
		return "", next.err
	}
	return next.tag, nil
}

// Polls returns the number of Poll calls
func (r *MockTagReader) Polls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polls
}

// MockLevel is a LevelReader with a settable level
type MockLevel struct {
	err    error
	mu     sync.Mutex
	active bool
}

// Set changes the level
func (l *MockLevel) Set(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = active
}

// SetError makes Read fail until cleared with nil
func (l *MockLevel) SetError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Read returns the current level
func (l *MockLevel) Read() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active, l.err
}

// MockSampler is a Sampler with a settable value
type MockSampler struct {
	err   error
	mu    sync.Mutex
	value int
}

// Set changes the sample value
func (s *MockSampler) Set(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

// SetError makes Sample fail until cleared with nil
func (s *MockSampler) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Sample returns the current value
func (s *MockSampler) Sample() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.err
}

// GatewayWrite is one write seen by a RecordingGateway
type GatewayWrite struct {
	Value any
	Path  string
}

// RecordingGateway is an in-memory Gateway
type RecordingGateway struct {
	values map[string]any
	writes []GatewayWrite
	fail   bool
	mu     sync.Mutex
}

// NewRecordingGateway creates an empty gateway
func NewRecordingGateway() *RecordingGateway {
	return &RecordingGateway{values: make(map[string]any)}
}

// SetFailing makes every write fail
func (g *RecordingGateway) SetFailing(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = fail
}

func (g *RecordingGateway) set(path string, value any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return ErrMockFailure
	}
	g.values[path] = value
	g.writes = append(g.writes, GatewayWrite{Path: path, Value: value})
	return nil
}

// SetString records a string write
func (g *RecordingGateway) SetString(_ context.Context, path, value string) error {
	return g.set(path, value)
}

// SetBool records a boolean write
func (g *RecordingGateway) SetBool(_ context.Context, path string, value bool) error {
	return g.set(path, value)
}

// SetInt records an integer write
func (g *RecordingGateway) SetInt(_ context.Context, path string, value int) error {
	return g.set(path, value)
}

// Value returns the last value written at path
func (g *RecordingGateway) Value(path string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.values[path]
	return v, ok
}

// Writes returns every write in order
func (g *RecordingGateway) Writes() []GatewayWrite {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GatewayWrite(nil), g.writes...)
}

// Screen is one display update seen by a RecordingNotifier
type Screen struct {
	Line1 string
	Line2 string
}

// RecordingNotifier is a Notifier that remembers everything
type RecordingNotifier struct {
	screens []Screen
	beeps   [][]time.Duration
	mu      sync.Mutex
}

// Show records a display update
func (n *RecordingNotifier) Show(line1, line2 string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.screens = append(n.screens, Screen{Line1: line1, Line2: line2})
}

// Beep records a beep pattern
func (n *RecordingNotifier) Beep(pattern ...time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.beeps = append(n.beeps, append([]time.Duration(nil), pattern...))
}

// Current returns the last screen shown
func (n *RecordingNotifier) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.screens) == 0 {
		return Screen{}
	}
	return n.screens[len(n.screens)-1]
}

// Screens returns every screen shown
func (n *RecordingNotifier) Screens() []Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Screen(nil), n.screens...)
}

// Beeps returns every beep pattern
func (n *RecordingNotifier) Beeps() [][]time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]time.Duration(nil), n.beeps...)
}

// MemoryJournal is an in-memory Journal
type MemoryJournal struct {
	entries []Transaction
	mu      sync.Mutex
}

// Append stores tx
func (j *MemoryJournal) Append(_ context.Context, tx Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, tx)
	return nil
}

// Count returns the number of stored transactions
func (j *MemoryJournal) Count(_ context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries), nil
}

// Entries returns the stored transactions in order
func (j *MemoryJournal) Entries() []Transaction {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Transaction(nil), j.entries...)
}
