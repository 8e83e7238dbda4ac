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

package pn532

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoMockResponse is returned by MockTransport for commands it has no
// response for
var ErrNoMockResponse = errors.New("no mock response configured")

// MockTransport is a Transport returning canned responses per command
type MockTransport struct {
	responses map[byte][]byte
	errors    map[byte]error
	calls     map[byte]int
	lastArgs  map[byte][]byte
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a mock that answers GetFirmwareVersion, SAM
// configuration and RF configuration like a PN532 v1.6
func NewMockTransport() *MockTransport {
	m := &MockTransport{
		responses: make(map[byte][]byte),
		errors:    make(map[byte]error),
		calls:     make(map[byte]int),
		lastArgs:  make(map[byte][]byte),
	}
	m.SetResponse(cmdGetFirmwareVersion, []byte{0x03, 0x32, 0x01, 0x06, 0x07})
	m.SetResponse(cmdSamConfiguration, []byte{0x15})
	m.SetResponse(cmdRFConfiguration, []byte{0x33})
	m.SetResponse(cmdInListPassiveTarget, []byte{0x4B, 0x00})
	m.SetResponse(cmdInRelease, []byte{0x53, 0x00})
	return m
}

// SetResponse sets the response for cmd, response code included
func (m *MockTransport) SetResponse(cmd byte, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = response
	delete(m.errors, cmd)
}

// SetError makes cmd fail with err
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[cmd] = err
}

// SetTarget makes InListPassiveTarget report one ISO14443A tag with uid
func (m *MockTransport) SetTarget(uid []byte) {
	res := []byte{0x4B, 0x01, 0x01, 0x00, 0x04, 0x08, byte(len(uid))}
	m.SetResponse(cmdInListPassiveTarget, append(res, uid...))
}

// ClearTarget makes InListPassiveTarget report an empty field
func (m *MockTransport) ClearTarget() {
	m.SetResponse(cmdInListPassiveTarget, []byte{0x4B, 0x00})
}

// SendCommand returns the canned response for cmd
func (m *MockTransport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls[cmd]++
	m.lastArgs[cmd] = append([]byte(nil), args...)
	if err, ok := m.errors[cmd]; ok {
		return nil, err
	}
	res, ok := m.responses[cmd]
	if !ok {
		return nil, ErrNoMockResponse
	}
	return append([]byte(nil), res...), nil
}

// CallCount returns how many times cmd was sent
func (m *MockTransport) CallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[cmd]
}

// LastArgs returns the arguments of the last cmd sent
func (m *MockTransport) LastArgs(cmd byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastArgs[cmd]
}

// SetTimeout records the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns true until Close
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
