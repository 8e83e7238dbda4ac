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

// Package i2c provides I2C transport implementation for PN532
package i2c

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/ZaparooProject/go-smartlibrary/internal/frame"
	"github.com/ZaparooProject/go-smartlibrary/pn532"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Address is the 7-bit PN532 I2C address (0x48 write, 0x49 read)
	Address = 0x24

	// pn532Ready is the status byte prefixed to every read once the chip
	// has data
	pn532Ready = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	defaultTimeout  = 50 * time.Millisecond
	pollInterval    = time.Millisecond
	maxReceiveTries = 3
	// status byte + ACK frame
	ackReadLen = 1 + 6
	// status byte + largest normal frame
	frameReadLen = 1 + frame.MaxFrameDataLength + 7
)

// Conn is the subset of periph's i2c.Dev the transport uses
type Conn interface {
	Tx(w, r []byte) error
}

// Transport implements the pn532.Transport interface for I2C communication
type Transport struct {
	dev     Conn
	bus     i2c.BusCloser
	busName string
	timeout time.Duration
	mu      sync.Mutex
	closed  bool
}

// New opens busName ("1", "I2C1" or "/dev/i2c-1") and addresses the PN532
// on it
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(BusName(busName))
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t := NewWithConn(&i2c.Dev{Addr: Address, Bus: bus}, busName)
	t.bus = bus
	return t, nil
}

// NewWithConn creates a transport over an already addressed connection
func NewWithConn(dev Conn, busName string) *Transport {
	return &Transport{
		dev:     dev,
		busName: busName,
		timeout: defaultTimeout,
	}
}

// BusName maps a Linux device path to the bus number periph registers;
// other names are returned unchanged
func BusName(name string) string {
	if rest, ok := strings.CutPrefix(name, "/dev/i2c-"); ok {
		return rest
	}
	return name
}

// SendCommand sends a command frame, waits for the ACK and returns the
// response code followed by the response data
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.dev == nil {
		return nil, pn532.ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frm, err := frame.Build(cmd, args)
	if err != nil {
		return nil, err
	}
	if err := t.dev.Tx(frm, nil); err != nil {
		return nil, t.wrap("sendFrame", err)
	}
	if err := t.waitAck(ctx); err != nil {
		return nil, err
	}
	return t.receiveFrame(ctx)
}

// SetTimeout sets the ACK and response timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("invalid timeout %v", timeout)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close releases the bus
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.bus != nil {
		if err := t.bus.Close(); err != nil {
			return t.wrap("close", err)
		}
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}

// waitAck polls the status byte until the chip has an ACK ready
func (t *Transport) waitAck(ctx context.Context) error {
	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, ackReadLen)

	for time.Now().Before(deadline) {
		if err := t.dev.Tx(nil, buf); err != nil {
			return t.wrap("waitAck", err)
		}
		if buf[0] == pn532Ready && frame.IsAck(buf[1:]) {
			return nil
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
	return t.wrap("waitAck", pn532.ErrNoACK)
}

// receiveFrame reads the response frame, NACKing corrupted frames
func (t *Transport) receiveFrame(ctx context.Context) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, frameReadLen)

	for tries := 0; tries < maxReceiveTries; {
		if !time.Now().Before(deadline) {
			return nil, t.wrap("receiveFrame", pn532.ErrTimeout)
		}
		if err := t.dev.Tx(nil, buf); err != nil {
			return nil, t.wrap("receiveFrame", err)
		}
		if buf[0] != pn532Ready {
			if err := sleep(ctx, pollInterval); err != nil {
				return nil, err
			}
			continue
		}

		data, shouldNack, err := frame.Parse(buf[1:])
		if shouldNack {
			tries++
			debugf("I2C %s: NACK after %v", t.busName, err)
			if err := t.dev.Tx(frame.NackFrame, nil); err != nil {
				return nil, t.wrap("sendNack", err)
			}
			continue
		}
		if err != nil {
			return nil, t.wrap("receiveFrame", err)
		}
		return data, nil
	}
	return nil, t.wrap("receiveFrame", frame.ErrFrameCorrupted)
}

func (t *Transport) wrap(op string, err error) error {
	return &pn532.TransportError{Op: op, Port: t.busName, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func debugf(format string, args ...any) {
	if !smartlibrary.DebugEnabled() {
		return
	}
	smartlibrary.DefaultLogger().Debug(fmt.Sprintf(format, args...))
}

// Ensure Transport implements pn532.Transport
var _ pn532.Transport = (*Transport)(nil)
