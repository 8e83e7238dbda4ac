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
	"errors"
	"fmt"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// Components are the parts a Monitor drives. Only Contact and Directory are
// required; a nil sensor or reader is skipped.
type Components struct {
	Contact   smartlibrary.TagReader
	Proximity smartlibrary.TagReader
	Journal   smartlibrary.Journal
	Notifier  smartlibrary.Notifier
	Clock     smartlibrary.Clock
	Logger    smartlibrary.Logger
	Entry     *smartlibrary.DigitalSensor
	Exit      *smartlibrary.DigitalSensor
	Noise     *smartlibrary.NoiseMonitor
	Directory *smartlibrary.Directory
	Mirror    *smartlibrary.Mirror
}

// Monitor runs the library desk: a single loop that polls both readers,
// the beam sensors and the noise monitor, drives the checkout protocol and
// pushes every change to the mirror.
//
// All domain state is owned by the goroutine calling Start (or Step). A
// pending checkout is carried across iterations, so sensors keep being
// serviced while the student scan is awaited.
type Monitor struct {
	lastStatsSync time.Time
	contact       smartlibrary.TagReader
	proximity     smartlibrary.TagReader
	journal       smartlibrary.Journal
	notifier      smartlibrary.Notifier
	clock         smartlibrary.Clock
	logger        smartlibrary.Logger
	entry         *smartlibrary.DigitalSensor
	exit          *smartlibrary.DigitalSensor
	noise         *smartlibrary.NoiseMonitor
	dir           *smartlibrary.Directory
	mirror        *smartlibrary.Mirror
	checkout      *smartlibrary.Checkout
	config        *Config
	screen        ScreenState
	metrics       counters
	occupancy     smartlibrary.Occupancy
	transactions  int
	started       bool
}

// NewMonitor creates a monitor over the given components
func NewMonitor(c Components, config *Config) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if c.Contact == nil {
		return nil, errors.New("contact reader is required")
	}
	if c.Directory == nil {
		return nil, errors.New("directory is required")
	}

	m := &Monitor{
		contact:   c.Contact,
		proximity: c.Proximity,
		journal:   c.Journal,
		notifier:  c.Notifier,
		clock:     c.Clock,
		logger:    c.Logger,
		entry:     c.Entry,
		exit:      c.Exit,
		noise:     c.Noise,
		dir:       c.Directory,
		mirror:    c.Mirror,
		config:    config,
		checkout:  smartlibrary.NewCheckout(c.Directory, config.CheckoutTimeout, config.LoanPeriod),
	}
	if m.logger == nil {
		m.logger = smartlibrary.DefaultLogger()
	}
	if m.clock == nil {
		m.clock = smartlibrary.SystemClock{}
	}
	if m.notifier == nil {
		m.notifier = &smartlibrary.Panel{Logger: m.logger}
	}
	if m.mirror == nil {
		m.mirror = smartlibrary.NewMirror(nil, nil)
	}
	return m, nil
}

// Start initializes the remote store and runs the loop until ctx is done
func (m *Monitor) Start(ctx context.Context) error {
	m.Init(ctx)
	return m.continuousPolling(ctx)
}

// Init performs the start-up sequence: stats initialization, directory
// upload and the ready screen. It runs once; later calls do nothing.
func (m *Monitor) Init(ctx context.Context) {
	if m.started {
		return
	}
	m.started = true

	if m.journal != nil {
		n, err := m.journal.Count(ctx)
		if err != nil {
			m.logger.Warn("failed to count journal transactions", "error", err)
		} else {
			m.transactions = n
		}
	}

	now := m.clock.Now()
	if m.mirror.Online() {
		m.mirror.PublishStats(m.Stats())
		m.mirror.PublishDirectory(m.dir)
	}
	m.lastStatsSync = now

	m.showIdle()
	m.notifier.Beep(smartlibrary.BeepLong)
	m.logger.Info("library system ready",
		"students", m.dir.StudentCount(),
		"books", m.dir.BookCount(),
		"online", m.mirror.Online())
}

// Close drains the mirror queue
func (m *Monitor) Close(ctx context.Context) error {
	if err := m.mirror.Close(ctx); err != nil {
		return fmt.Errorf("failed to close mirror: %w", err)
	}
	return nil
}

// continuousPolling runs Step every PollInterval until ctx is done
func (m *Monitor) continuousPolling(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.Step(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.PollInterval):
		}
	}
}

// Step runs one loop iteration: contact reader, proximity reader, entry
// sensor, exit sensor, noise monitor, checkout deadline, screen restore and
// the periodic stats push, in that order.
func (m *Monitor) Step(ctx context.Context) {
	if !m.started {
		m.Init(ctx)
	}
	start := time.Now()
	defer func() {
		m.metrics.pollCycles.Add(1)
		m.metrics.lastStepLatency.Store(time.Since(start).Nanoseconds())
	}()

	if tag, ok := m.read(ctx, m.contact, "contact"); ok {
		m.handleContact(ctx, tag)
	}
	if tag, ok := m.read(ctx, m.proximity, "proximity"); ok {
		m.handleProximity(tag)
	}
	if m.entry != nil && m.entry.Poll(m.clock.Now()) {
		m.handleEntry()
	}
	if m.exit != nil && m.exit.Poll(m.clock.Now()) {
		m.handleExit()
	}
	if m.noise != nil {
		if alert, ok := m.noise.Poll(m.clock.Now()); ok {
			m.handleNoise(alert)
		}
	}

	now := m.clock.Now()
	if result, ok := m.checkout.Expire(now); ok {
		m.finishCheckout(ctx, result)
	}
	if m.screen.DwellElapsed(now) {
		m.showIdle()
	}
	m.syncStats(now)
}

// read polls one reader. Absent tags and failed reads both yield false.
func (m *Monitor) read(ctx context.Context, r smartlibrary.TagReader, name string) (smartlibrary.TagID, bool) {
	if r == nil {
		return "", false
	}
	tag, err := r.Poll(ctx)
	if err != nil {
		if !errors.Is(err, smartlibrary.ErrNoTag) {
			m.metrics.readErrors.Add(1)
			m.logger.Debug("tag read failed", "reader", name, "error", err)
		}
		return "", false
	}
	if tag == "" {
		return "", false
	}
	m.metrics.tagsScanned.Add(1)
	m.logger.Info("tag scanned", "reader", name, "tag", tag.String())
	return tag, true
}

// syncStats pushes the statistics block once per StatsSyncInterval
func (m *Monitor) syncStats(now time.Time) {
	if !m.mirror.Online() || now.Sub(m.lastStatsSync) <= m.config.StatsSyncInterval {
		return
	}
	m.mirror.PublishStats(m.Stats())
	m.lastStatsSync = now
	m.logger.Debug("stats synced", "people", m.occupancy.Count(), "transactions", m.transactions)
}

// Stats returns the current statistics block
func (m *Monitor) Stats() smartlibrary.Stats {
	return smartlibrary.Stats{
		LastSync:          m.clock.Now(),
		TotalStudents:     m.dir.StudentCount(),
		TotalBooks:        m.dir.BookCount(),
		PeopleCount:       m.occupancy.Count(),
		TotalTransactions: m.transactions,
	}
}

// Occupancy returns the current head count
func (m *Monitor) Occupancy() int {
	return m.occupancy.Count()
}

// Checkout returns the checkout protocol
func (m *Monitor) Checkout() *smartlibrary.Checkout {
	return m.checkout
}

// Screen returns the display state
func (m *Monitor) Screen() ScreenState {
	return m.screen
}

// Directory returns the directory
func (m *Monitor) Directory() *smartlibrary.Directory {
	return m.dir
}

// GetMetrics returns current operational metrics
func (m *Monitor) GetMetrics() Metrics {
	return m.metrics.snapshot()
}
