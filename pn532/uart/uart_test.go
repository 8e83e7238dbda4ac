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

package uart

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-smartlibrary/internal/frame"
	"github.com/ZaparooProject/go-smartlibrary/pn532"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort answers command frames like a PN532 on a serial line, handing
// the reply out a few bytes per read
type fakePort struct {
	writeErr    error
	responses   map[byte][]byte
	rx          []byte
	writes      [][]byte
	chunk       int
	corrupt     int
	lastCmd     byte
	mu          sync.Mutex
	silent      bool
	closed      bool
	readTimeout time.Duration
}

func newFakePort() *fakePort {
	return &fakePort{
		chunk: 4,
		responses: map[byte][]byte{
			0x02: {0x03, 0x32, 0x01, 0x06, 0x07},
			0x14: {0x15},
			0x32: {0x33},
			0x4A: {0x4B, 0x00},
		},
	}
}

func responseFrame(body []byte) []byte {
	length := byte(len(body) + 1)
	frm := []byte{frame.Preamble, frame.StartCode1, frame.StartCode2, length, frame.CalculateLengthChecksum(length), frame.Pn532ToHost}
	frm = append(frm, body...)
	return append(frm, frame.CalculateDataChecksum(frame.Pn532ToHost, body), frame.Postamble)
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes = append(p.writes, append([]byte(nil), b...))

	if bytes.Equal(b, frame.NackFrame) {
		p.rx = append(p.rx, responseFrame(p.responses[p.lastCmd])...)
		return len(b), nil
	}
	i := bytes.Index(b, []byte{0x00, 0xFF})
	if p.silent || i < 0 || i+5 >= len(b) {
		return len(b), nil
	}
	cmd := b[i+5]
	p.lastCmd = cmd
	resp := responseFrame(p.responses[cmd])
	if p.corrupt > 0 {
		p.corrupt--
		resp[len(resp)-2]++
	}
	p.rx = append(p.rx, frame.AckFrame...)
	p.rx = append(p.rx, resp...)
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.rx) == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := min(p.chunk, len(b), len(p.rx))
	copy(b, p.rx[:n])
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.readTimeout = d
	return nil
}

func (*fakePort) ResetInputBuffer() error {
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestTransport(t *testing.T, port *fakePort) *Transport {
	t.Helper()
	transport, err := NewWithPort(port, "/dev/ttyUSB0")
	require.NoError(t, err)
	return transport
}

func TestNewWithPort(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	transport := newTestTransport(t, port)
	assert.Equal(t, readChunkTimeout, port.readTimeout)
	assert.Equal(t, pn532.TransportUART, transport.Type())
	assert.True(t, transport.IsConnected())
}

func TestTransport_SendCommand(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	transport := newTestTransport(t, port)

	res, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x32, 0x01, 0x06, 0x07}, res)

	// first exchange carries the wakeup preamble, later ones don't
	assert.True(t, bytes.HasPrefix(port.writes[0], []byte{0x55, 0x55}))

	res, err = transport.SendCommand(context.Background(), 0x4A, []byte{0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4B, 0x00}, res)

	want, err := frame.Build(0x4A, []byte{0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, want, port.writes[1])
}

func TestTransport_NacksCorruptedFrame(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	port.corrupt = 1
	transport := newTestTransport(t, port)

	res, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x32, 0x01, 0x06, 0x07}, res)
	assert.Equal(t, frame.NackFrame, port.writes[len(port.writes)-1])
}

func TestTransport_NoACK(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	port.silent = true
	transport := newTestTransport(t, port)
	require.NoError(t, transport.SetTimeout(20*time.Millisecond))

	_, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.ErrorIs(t, err, pn532.ErrNoACK)
	assert.True(t, pn532.IsTimeout(err))

	// a failed exchange wakes the chip again
	port.silent = false
	_, err = transport.SendCommand(context.Background(), 0x02, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(port.writes[1], []byte{0x55, 0x55}))
}

func TestTransport_WriteError(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	port.writeErr = errors.New("device disconnected")
	transport := newTestTransport(t, port)

	_, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.ErrorIs(t, err, port.writeErr)

	var terr *pn532.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "/dev/ttyUSB0", terr.Port)
}

func TestTransport_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := newFakePort()
	transport := newTestTransport(t, port)

	start := time.Now()
	_, err := transport.SendCommand(ctx, 0x02, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
	assert.Empty(t, port.writes)
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	transport := newTestTransport(t, port)
	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())
	assert.True(t, port.closed)
	assert.False(t, transport.IsConnected())

	_, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.ErrorIs(t, err, pn532.ErrTransportClosed)
}

func TestTransport_DrivesDevice(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	port.responses[0x4A] = []byte{0x4B, 0x01, 0x01, 0x00, 0x04, 0x08, 0x04, 0xE7, 0xD2, 0xB8, 0x65}

	device, err := pn532.New(newTestTransport(t, port))
	require.NoError(t, err)
	require.NoError(t, device.Init(context.Background()))

	tag, err := pn532.NewReader(device).Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "E7D2B865", tag.String())
}
