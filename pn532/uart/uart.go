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

// Package uart provides UART (HSU) transport implementation for PN532
package uart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/ZaparooProject/go-smartlibrary/internal/frame"
	"github.com/ZaparooProject/go-smartlibrary/pn532"
	"go.bug.st/serial"
)

const (
	// BaudRate is the PN532 HSU default
	BaudRate = 115200

	defaultTimeout   = 100 * time.Millisecond
	readChunkTimeout = 10 * time.Millisecond
	maxReceiveTries  = 3
	readBufferSize   = 64
)

// wakeup takes the chip out of power down. The 0x55 preamble is followed
// by enough idle bytes for the oscillator to start.
var wakeup = []byte{
	0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// ackBody is the ACK frame after its preamble
var ackBody = frame.AckFrame[1:]

// Port is the subset of serial.Port the transport uses
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements the pn532.Transport interface for UART communication
type Transport struct {
	port     Port
	portName string
	pending  []byte
	timeout  time.Duration
	mu       sync.Mutex
	awake    bool
	closed   bool
}

// New opens portName at 115200 8N1
func New(portName string) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	t, err := NewWithPort(port, portName)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// NewWithPort creates a transport over an open port
func NewWithPort(port Port, portName string) (*Transport, error) {
	if err := port.SetReadTimeout(readChunkTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	return &Transport{
		port:     port,
		portName: portName,
		timeout:  defaultTimeout,
	}, nil
}

// SendCommand sends a command frame, waits for the ACK and returns the
// response code followed by the response data
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.port == nil {
		return nil, pn532.ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := t.exchange(ctx, cmd, args)
	if err != nil {
		// the chip may have dropped back to power down
		t.awake = false
	}
	return res, err
}

func (t *Transport) exchange(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	frm, err := frame.Build(cmd, args)
	if err != nil {
		return nil, err
	}
	if !t.awake {
		debugf("UART %s: wakeup", t.portName)
		frm = append(append([]byte(nil), wakeup...), frm...)
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		return nil, t.wrap("resetInput", err)
	}
	t.pending = t.pending[:0]
	if _, err := t.port.Write(frm); err != nil {
		return nil, t.wrap("sendFrame", err)
	}
	t.awake = true

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

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.port == nil {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return t.wrap("close", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportUART
}

// waitAck reads until an ACK frame arrives. Bytes after it are kept for
// the response.
func (t *Transport) waitAck(ctx context.Context) error {
	deadline := time.Now().Add(t.timeout)
	for {
		if i := bytes.Index(t.pending, ackBody); i >= 0 {
			t.pending = append(t.pending[:0], t.pending[i+len(ackBody):]...)
			return nil
		}
		if !time.Now().Before(deadline) {
			return t.wrap("waitAck", pn532.ErrNoACK)
		}
		if err := t.read(ctx); err != nil {
			return err
		}
	}
}

// receiveFrame reads until a whole response frame is buffered, NACKing
// corrupted frames
func (t *Transport) receiveFrame(ctx context.Context) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	for tries := 0; tries < maxReceiveTries; {
		data, shouldNack, err := frame.Parse(t.pending)
		switch {
		case shouldNack:
			tries++
			debugf("UART %s: NACK after %v", t.portName, err)
			t.pending = t.pending[:0]
			if _, err := t.port.Write(frame.NackFrame); err != nil {
				return nil, t.wrap("sendNack", err)
			}
			continue
		case err == nil:
			return data, nil
		case !errors.Is(err, frame.ErrNoFrame) && !errors.Is(err, frame.ErrTruncated):
			return nil, t.wrap("receiveFrame", err)
		}

		if !time.Now().Before(deadline) {
			return nil, t.wrap("receiveFrame", pn532.ErrTimeout)
		}
		if err := t.read(ctx); err != nil {
			return nil, err
		}
	}
	return nil, t.wrap("receiveFrame", frame.ErrFrameCorrupted)
}

// read appends whatever arrives within one read timeout to pending
func (t *Transport) read(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, readBufferSize)
	n, err := t.port.Read(buf)
	if err != nil {
		return t.wrap("read", err)
	}
	t.pending = append(t.pending, buf[:n]...)
	return nil
}

func (t *Transport) wrap(op string, err error) error {
	return &pn532.TransportError{Op: op, Port: t.portName, Err: err}
}

func debugf(format string, args ...any) {
	if !smartlibrary.DebugEnabled() {
		return
	}
	smartlibrary.DefaultLogger().Debug(fmt.Sprintf(format, args...))
}

// Ensure Transport implements pn532.Transport
var _ pn532.Transport = (*Transport)(nil)
