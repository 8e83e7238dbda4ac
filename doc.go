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

/*
Package smartlibrary is the core of a library-room controller for Linux
single-board computers.

The controller polls a contact RFID reader, a proximity NFC reader, two
infrared beam-break sensors and a sound-level sensor, and drives a 16x2
character LCD, a buzzer and a best-effort mirror in a remote real-time
database. It tracks which students are checked in to the room, which books
are on loan and how many people are inside, and raises an alert on excess
noise.

This package holds the hardware-independent pieces:

  - Directory: bounded, seeded collections of Student and Book records
  - Checkout: the two-scan borrow/return state machine
  - DigitalSensor and Debouncer: edge detection for the beam sensors
  - NoiseMonitor: throttled threshold alerts
  - Occupancy: the room head count
  - Mirror: an asynchronous, fire-and-forget writer over a Gateway
  - Config: YAML configuration with defaults and validation

Hardware drivers live in sub-packages (mfrc522, pn532, lcd, hal), the remote
store client in firebase, the local transaction log in journal, and the
polling loop that ties everything together in polling.

Basic Usage:

	dir := smartlibrary.NewDirectory(0, 0)
	if err := smartlibrary.DefaultSeed().Populate(dir); err != nil {
	    log.Fatal(err)
	}

	checkout := smartlibrary.NewCheckout(dir, smartlibrary.DefaultCheckoutTimeout, 0)
	book, _ := dir.FindBookByTag("E7D2B865")
	_ = checkout.Begin(book, time.Now())

	if result, done := checkout.Scan("13E31EA8", time.Now()); done {
	    fmt.Println(result.Outcome) // BORROWED
	}

Error Handling:

An absent tag is reported as ErrNoTag and is not a failure. Everything else
is returned wrapped and can be inspected with errors.Is:

	if errors.Is(err, smartlibrary.ErrDirectoryFull) {
	    // capacity reached
	}

Thread Safety:

Directory, Checkout, DigitalSensor, NoiseMonitor and Occupancy are owned by
the polling goroutine and are not safe for concurrent use. Mirror is safe for
concurrent use.
*/
package smartlibrary
