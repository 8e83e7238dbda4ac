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

package mfrc522

import (
	"bytes"
	"context"
	"errors"
	"testing"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakeChip emulates the MFRC522 register file and one ISO14443A card
type fakeChip struct {
	txErr     error
	fifo      []byte
	uid       []byte
	regs      [64]byte
	present   bool
	halted    bool
	collision bool
}

func newFakeChip() *fakeChip {
	c := &fakeChip{}
	c.regs[regVersion] = 0x92
	return c
}

func (c *fakeChip) place(uid ...byte) {
	c.uid = uid
	c.present = true
	c.halted = false
}

func (c *fakeChip) remove() {
	c.present = false
	c.halted = false
}

func (c *fakeChip) Tx(w, r []byte) error {
	if c.txErr != nil {
		return c.txErr
	}
	if w[0]&0x80 != 0 {
		for i := 1; i < len(w); i++ {
			r[i] = c.read((w[i-1] >> 1) & 0x3F)
		}
		return nil
	}
	reg := (w[0] >> 1) & 0x3F
	for _, v := range w[1:] {
		c.write(reg, v)
	}
	return nil
}

func (c *fakeChip) read(reg byte) byte {
	switch reg {
	case regFIFOData:
		if len(c.fifo) == 0 {
			return 0
		}
		v := c.fifo[0]
		c.fifo = c.fifo[1:]
		return v
	case regFIFOLevel:
		return byte(len(c.fifo))
	}
	return c.regs[reg]
}

func (c *fakeChip) write(reg, v byte) {
	switch reg {
	case regFIFOData:
		c.fifo = append(c.fifo, v)
	case regFIFOLevel:
		if v&fifoFlush != 0 {
			c.fifo = nil
		}
	case regComIrq:
		if v&0x80 == 0 {
			c.regs[reg] &^= v
		}
	case regBitFraming:
		c.regs[reg] = v &^ startSend
		if v&startSend != 0 && c.regs[regCommand] == pcdTransceive {
			c.execute(v & lastBitsMask)
		}
	default:
		c.regs[reg] = v
	}
}

// levels returns the anticollision answers per cascade level
func (c *fakeChip) levels() [][]byte {
	withBCC := func(b []byte) []byte {
		return append(append([]byte(nil), b...), b[0]^b[1]^b[2]^b[3])
	}
	if len(c.uid) == 4 {
		return [][]byte{withBCC(c.uid)}
	}
	return [][]byte{
		withBCC(append([]byte{piccCascadeTag}, c.uid[:3]...)),
		withBCC(c.uid[3:7]),
	}
}

func (c *fakeChip) execute(txLastBits byte) {
	data := c.fifo
	c.fifo = nil
	c.regs[regError] = 0
	c.regs[regControl] = 0

	answer := func(res []byte) {
		c.fifo = res
		c.regs[regComIrq] |= irqRx | irqIdle
	}
	timeout := func() {
		c.regs[regComIrq] |= irqTimer
	}

	if !c.present {
		timeout()
		return
	}
	levels := c.levels()
	switch {
	case len(data) == 1 && data[0] == piccREQA && txLastBits == 7:
		if c.halted {
			timeout()
			return
		}
		answer([]byte{0x44, 0x00})
	case len(data) == 2 && data[1] == 0x20:
		level := int(data[0]-piccSelectCL1) / 2
		if c.collision {
			c.regs[regError] = errCollision
			answer(nil)
			return
		}
		answer(levels[level])
	case len(data) == 9 && data[1] == 0x70:
		if !checkCRC(data) {
			timeout()
			return
		}
		level := int(data[0]-piccSelectCL1) / 2
		sak := byte(0x08)
		if level < len(levels)-1 {
			sak = 0x04
		}
		answer(appendCRC([]byte{sak}))
	case len(data) == 4 && data[0] == piccHLTA && checkCRC(data):
		c.halted = true
		timeout()
	default:
		timeout()
	}
}

func newTestReader(t *testing.T, chip *fakeChip) *Reader {
	t.Helper()
	device := New(chip, nil)
	require.NoError(t, device.Init(context.Background()))
	return NewReader(device)
}

func TestCRCA(t *testing.T) {
	t.Parallel()

	lo, hi := CRCA([]byte{0x50, 0x00})
	assert.Equal(t, byte(0x57), lo)
	assert.Equal(t, byte(0xCD), hi)

	assert.True(t, checkCRC([]byte{0x50, 0x00, 0x57, 0xCD}))
	assert.False(t, checkCRC([]byte{0x50, 0x00, 0x57, 0xCE}))
	assert.False(t, checkCRC([]byte{0x57, 0xCD}))
}

func TestDevice_Init(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		pin := &gpiotest.Pin{N: "GPIO25", Num: 25}
		device := New(chip, &Config{Reset: pin, Timeout: DefaultConfig().Timeout})

		require.NoError(t, device.Init(context.Background()))
		assert.Equal(t, byte(0x92), device.Version())
		assert.Equal(t, gpio.High, pin.Read())
		assert.Equal(t, byte(antennaOnBits), chip.regs[regTxControl]&antennaOnBits)
		assert.Equal(t, byte(0x80), chip.regs[regTMode])
		assert.Equal(t, byte(0x3D), chip.regs[regMode])

		require.NoError(t, device.AntennaOff())
		assert.Zero(t, chip.regs[regTxControl]&antennaOnBits)
	})

	t.Run("UnknownVersion", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		chip.regs[regVersion] = 0x00
		err := New(chip, nil).Init(context.Background())
		require.ErrorIs(t, err, ErrUnknownVersion)
	})

	t.Run("BusError", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		chip.txErr = errors.New("spi: transfer failed")
		err := New(chip, nil).Init(context.Background())
		require.ErrorIs(t, err, chip.txErr)
	})
}

func TestReader_Poll(t *testing.T) {
	t.Parallel()

	t.Run("EmptyField", func(t *testing.T) {
		t.Parallel()
		reader := newTestReader(t, newFakeChip())
		_, err := reader.Poll(context.Background())
		require.ErrorIs(t, err, smartlibrary.ErrNoTag)
	})

	t.Run("OncePerPresentation", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		reader := newTestReader(t, chip)
		chip.place(0x13, 0xE3, 0x1E, 0xA8)

		tag, err := reader.Poll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, smartlibrary.TagID("13E31EA8"), tag)
		assert.True(t, chip.halted)

		// still on the reader but halted
		_, err = reader.Poll(context.Background())
		require.ErrorIs(t, err, smartlibrary.ErrNoTag)

		chip.remove()
		chip.place(0x13, 0xE3, 0x1E, 0xA8)
		tag, err = reader.Poll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, smartlibrary.TagID("13E31EA8"), tag)
	})

	t.Run("SevenByteUID", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		reader := newTestReader(t, chip)
		chip.place(0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC)

		card, err := reader.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, card.UID)
		assert.Equal(t, byte(0x08), card.SAK)
		assert.Equal(t, [2]byte{0x44, 0x00}, card.ATQA)
	})

	t.Run("Collision", func(t *testing.T) {
		t.Parallel()
		chip := newFakeChip()
		reader := newTestReader(t, chip)
		chip.place(0x13, 0xE3, 0x1E, 0xA8)
		chip.collision = true

		_, err := reader.Poll(context.Background())
		require.ErrorIs(t, err, ErrCollision)
		assert.NotErrorIs(t, err, smartlibrary.ErrNoTag)
	})
}

func TestDevice_TransceiveFrames(t *testing.T) {
	t.Parallel()

	chip := newFakeChip()
	device := New(chip, nil)
	require.NoError(t, device.Init(context.Background()))
	chip.place(0xDE, 0xAD, 0xBE, 0xEF)

	res, lastBits, err := device.transceive(context.Background(), []byte{piccSelectCL1, 0x20}, 0)
	require.NoError(t, err)
	assert.Zero(t, lastBits)
	assert.True(t, bytes.Equal([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xDE ^ 0xAD ^ 0xBE ^ 0xEF}, res))
}
