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
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of the controller's operational counters
type Metrics struct {
	PollCycles       int64         // Total number of loop iterations
	ReadErrors       int64         // Failed tag reads (absent tags excluded)
	TagsScanned      int64         // Tags read by either reader
	UnknownTags      int64         // Tags matching no record
	Entries          int64         // Accepted entry edges
	Exits            int64         // Accepted exit edges
	NoiseAlerts      int64         // Noise alerts raised
	Transactions     int64         // Transactions recorded
	CheckoutTimeouts int64         // Checkouts that timed out
	LastStepLatency  time.Duration // Duration of the last loop iteration
}

type counters struct {
	pollCycles       atomic.Int64
	readErrors       atomic.Int64
	tagsScanned      atomic.Int64
	unknownTags      atomic.Int64
	entries          atomic.Int64
	exits            atomic.Int64
	noiseAlerts      atomic.Int64
	transactions     atomic.Int64
	checkoutTimeouts atomic.Int64
	lastStepLatency  atomic.Int64 // in nanoseconds
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		PollCycles:       c.pollCycles.Load(),
		ReadErrors:       c.readErrors.Load(),
		TagsScanned:      c.tagsScanned.Load(),
		UnknownTags:      c.unknownTags.Load(),
		Entries:          c.entries.Load(),
		Exits:            c.exits.Load(),
		NoiseAlerts:      c.noiseAlerts.Load(),
		Transactions:     c.transactions.Load(),
		CheckoutTimeouts: c.checkoutTimeouts.Load(),
		LastStepLatency:  time.Duration(c.lastStepLatency.Load()),
	}
}
