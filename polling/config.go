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
	"fmt"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// Config holds the controller loop timings
type Config struct {
	// PollInterval is the pause between loop iterations
	PollInterval time.Duration
	// CheckoutTimeout bounds the wait for the student scan of a checkout
	CheckoutTimeout time.Duration
	// LoanPeriod sets the due date of a borrowed book
	LoanPeriod time.Duration
	// MessageDwell is how long ordinary messages stay on screen
	MessageDwell time.Duration
	// OccupancyDwell is how long entry/exit messages stay on screen
	OccupancyDwell time.Duration
	// SearchDwell is how long a book search result stays on screen
	SearchDwell time.Duration
	// StatsSyncInterval is the period of the statistics push
	StatsSyncInterval time.Duration
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:      100 * time.Millisecond,
		CheckoutTimeout:   smartlibrary.DefaultCheckoutTimeout,
		LoanPeriod:        smartlibrary.DefaultLoanPeriod,
		MessageDwell:      2 * time.Second,
		OccupancyDwell:    1 * time.Second,
		SearchDwell:       3 * time.Second,
		StatsSyncInterval: 30 * time.Second,
	}
}

// ConfigFrom extracts the loop configuration from a controller configuration
func ConfigFrom(cfg *smartlibrary.Config) *Config {
	return &Config{
		PollInterval:      cfg.PollInterval,
		CheckoutTimeout:   cfg.Library.CheckoutTimeout,
		LoanPeriod:        cfg.Library.LoanPeriod,
		MessageDwell:      cfg.Library.MessageDwell,
		OccupancyDwell:    cfg.Library.OccupancyDwell,
		SearchDwell:       cfg.Library.SearchDwell,
		StatsSyncInterval: cfg.Library.StatsSyncInterval,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", smartlibrary.ErrInvalidConfig)
	}
	if c.CheckoutTimeout <= 0 {
		return fmt.Errorf("%w: checkout timeout must be positive", smartlibrary.ErrInvalidConfig)
	}
	if c.StatsSyncInterval <= 0 {
		return fmt.Errorf("%w: stats sync interval must be positive", smartlibrary.ErrInvalidConfig)
	}
	if c.MessageDwell < 0 || c.OccupancyDwell < 0 || c.SearchDwell < 0 {
		return fmt.Errorf("%w: dwell times must not be negative", smartlibrary.ErrInvalidConfig)
	}
	return nil
}
