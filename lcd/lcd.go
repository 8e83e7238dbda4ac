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

// Package lcd drives a 16x2 HD44780 character display behind a PCF8574
// I2C backpack
package lcd

import (
	"fmt"
	"sync"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddress is the usual PCF8574 backpack address
const DefaultAddress = 0x27

// Display geometry
const (
	Columns = smartlibrary.DisplayWidth
	Rows    = 2
)

// PCF8574 pin assignment
const (
	pinRS        = 0x01
	pinEN        = 0x04
	pinBacklight = 0x08
)

// HD44780 instructions
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOn   = 0x0C // display on, cursor off, blink off
	cmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8 font
	cmdSetDDRAM    = 0x80
)

var rowOffsets = [Rows]byte{0x00, 0x40}

// Conn is the subset of periph's i2c.Dev the display uses
type Conn interface {
	Tx(w, r []byte) error
}

// Display is a two-line character display
type Display struct {
	conn      Conn
	bus       i2c.BusCloser
	lines     [Rows]string
	mu        sync.Mutex
	backlight bool
}

// Open opens busName and initializes the display at addr
func Open(busName string, addr uint16) (*Display, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}
	d, err := New(&i2c.Dev{Addr: addr, Bus: bus})
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	d.bus = bus
	return d, nil
}

// New initializes the display in 4-bit mode over conn and clears it
func New(conn Conn) (*Display, error) {
	d := &Display{conn: conn, backlight: true}

	// power-on: the controller may be in 8-bit mode or halfway through a
	// 4-bit transfer, so force 8-bit three times then switch
	time.Sleep(50 * time.Millisecond)
	for _, wait := range []time.Duration{4500 * time.Microsecond, 4500 * time.Microsecond, 150 * time.Microsecond} {
		if err := d.writeNibble(0x03, 0); err != nil {
			return nil, err
		}
		time.Sleep(wait)
	}
	if err := d.writeNibble(0x02, 0); err != nil {
		return nil, err
	}

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn, cmdClear, cmdEntryMode} {
		if err := d.command(cmd); err != nil {
			return nil, err
		}
		if cmd == cmdClear {
			time.Sleep(2 * time.Millisecond)
		}
	}
	return d, nil
}

// Show writes both lines, padded or truncated to the display width. Lines
// that did not change are not rewritten.
func (d *Display) Show(line1, line2 string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for row, text := range [Rows]string{line1, line2} {
		text = pad(text)
		if d.lines[row] == text {
			continue
		}
		if err := d.command(cmdSetDDRAM | rowOffsets[row]); err != nil {
			return err
		}
		for i := 0; i < len(text); i++ {
			if err := d.write(text[i], pinRS); err != nil {
				return err
			}
		}
		d.lines[row] = text
	}
	return nil
}

// Clear blanks the display
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.command(cmdClear); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	d.lines = [Rows]string{}
	return nil
}

// SetBacklight turns the backlight on or off
func (d *Display) SetBacklight(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.backlight = on
	return d.expander(0)
}

// Close turns the backlight off and releases the bus
func (d *Display) Close() error {
	if err := d.SetBacklight(false); err != nil {
		return err
	}
	if d.bus != nil {
		return d.bus.Close()
	}
	return nil
}

// pad fits text to the display width, replacing characters outside the
// controller's ASCII range
func pad(text string) string {
	buf := make([]byte, 0, Columns)
	for _, r := range text {
		if len(buf) == Columns {
			break
		}
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		buf = append(buf, byte(r))
	}
	for len(buf) < Columns {
		buf = append(buf, ' ')
	}
	return string(buf)
}

func (d *Display) command(cmd byte) error {
	return d.write(cmd, 0)
}

func (d *Display) write(b, mode byte) error {
	if err := d.writeNibble(b>>4, mode); err != nil {
		return err
	}
	return d.writeNibble(b&0x0F, mode)
}

// writeNibble latches the high data lines with an enable pulse
func (d *Display) writeNibble(nibble, mode byte) error {
	v := nibble<<4 | mode
	if err := d.expander(v | pinEN); err != nil {
		return err
	}
	return d.expander(v)
}

func (d *Display) expander(v byte) error {
	if d.backlight {
		v |= pinBacklight
	}
	if err := d.conn.Tx([]byte{v}, nil); err != nil {
		return fmt.Errorf("LCD write failed: %w", err)
	}
	return nil
}

var _ smartlibrary.Display = (*Display)(nil)
