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

// Package hal connects the controller's sensors and buzzer to Linux GPIO
// and IIO
package hal

import (
	"fmt"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Beam is an IR beam or obstacle sensor input. Most modules pull their
// output low while triggered; those are opened with activeLow set.
type Beam struct {
	pin       gpio.PinIn
	activeLow bool
}

// OpenBeam configures the named pin ("GPIO17") as an input with pull-up
func OpenBeam(name string, activeLow bool) (*Beam, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", name)
	}
	return NewBeam(pin, activeLow)
}

// NewBeam configures pin as an input with pull-up
func NewBeam(pin gpio.PinIn, activeLow bool) (*Beam, error) {
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as input: %w", pin, err)
	}
	return &Beam{pin: pin, activeLow: activeLow}, nil
}

// Read returns true while the beam is broken
func (b *Beam) Read() (bool, error) {
	level := b.pin.Read()
	if b.activeLow {
		return level == gpio.Low, nil
	}
	return level == gpio.High, nil
}

var _ smartlibrary.LevelReader = (*Beam)(nil)
