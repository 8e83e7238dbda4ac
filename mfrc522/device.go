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

// Package mfrc522 drives an NXP MFRC522 contact RFID reader over SPI
package mfrc522

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"periph.io/x/conn/v3/gpio"
)

// Device errors
var (
	ErrUnknownVersion = errors.New("unknown MFRC522 version")
	ErrTimeout        = errors.New("no response from tag")
	ErrCollision      = errors.New("bit collision")
	ErrProtocol       = errors.New("protocol error")
	ErrBCC            = errors.New("UID check byte mismatch")
	ErrCRC            = errors.New("CRC_A mismatch")
)

// Conn is a full-duplex connection to the chip. periph's spi.Conn
// satisfies it.
type Conn interface {
	Tx(w, r []byte) error
}

// Config contains configuration options for the Device
type Config struct {
	// Reset is the pin wired to NRSTPD, or nil
	Reset gpio.PinOut
	// Timeout bounds one transceive, on top of the chip's own 25ms timer
	Timeout time.Duration
}

// DefaultConfig returns default device configuration
func DefaultConfig() *Config {
	return &Config{Timeout: 50 * time.Millisecond}
}

// Device is an MFRC522 reader. Register accesses are serialized.
type Device struct {
	conn    Conn
	config  *Config
	version byte
	mu      sync.Mutex
}

// New creates a device over conn. A nil config uses DefaultConfig.
func New(conn Conn, config *Config) *Device {
	if config == nil {
		config = DefaultConfig()
	}
	return &Device{conn: conn, config: config}
}

// Version returns the VersionReg value read by Init
func (d *Device) Version() byte {
	return d.version
}

// Init resets the chip, checks its version and turns the antenna on
func (d *Device) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.hardReset(ctx); err != nil {
		return err
	}
	if err := d.writeReg(regCommand, pcdSoftReset); err != nil {
		return err
	}
	if err := d.waitPowerUp(ctx); err != nil {
		return err
	}

	version, err := d.readReg(regVersion)
	if err != nil {
		return err
	}
	name, ok := knownVersions[version]
	if !ok {
		return fmt.Errorf("%w: 0x%02X", ErrUnknownVersion, version)
	}
	d.version = version

	// 106 kBd both ways, timer auto-start with a 25ms timeout, 100% ASK,
	// CRC preset 0x6363
	for _, rv := range [][2]byte{
		{regTxMode, 0x00},
		{regRxMode, 0x00},
		{regModWidth, 0x26},
		{regTMode, 0x80},
		{regTPrescaler, 0xA9},
		{regTReloadHigh, 0x03},
		{regTReloadLow, 0xE8},
		{regTxASK, 0x40},
		{regMode, 0x3D},
	} {
		if err := d.writeReg(rv[0], rv[1]); err != nil {
			return err
		}
	}
	if err := d.setBits(regTxControl, antennaOnBits); err != nil {
		return err
	}
	debugf("%s ready", name)
	return nil
}

func (d *Device) hardReset(ctx context.Context) error {
	if d.config.Reset == nil {
		return nil
	}
	if err := d.config.Reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to assert reset: %w", err)
	}
	if err := sleep(ctx, 2*time.Microsecond); err != nil {
		return err
	}
	if err := d.config.Reset.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to release reset: %w", err)
	}
	// oscillator start-up
	return sleep(ctx, 50*time.Millisecond)
}

// waitPowerUp waits for the soft reset to clear the PowerDown bit
func (d *Device) waitPowerUp(ctx context.Context) error {
	deadline := time.Now().Add(d.config.Timeout)
	for {
		cmd, err := d.readReg(regCommand)
		if err != nil {
			return err
		}
		if cmd&powerDownBit == 0 {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("soft reset: %w", ErrTimeout)
		}
		if err := sleep(ctx, time.Millisecond); err != nil {
			return err
		}
	}
}

// transceive sends data to the tag and returns its answer and the number
// of valid bits in the last byte (0 meaning all 8)
func (d *Device) transceive(ctx context.Context, data []byte, txLastBits byte) ([]byte, byte, error) {
	for _, rv := range [][2]byte{
		{regCommand, pcdIdle},
		{regComIrq, irqClearAll},
		{regFIFOLevel, fifoFlush},
	} {
		if err := d.writeReg(rv[0], rv[1]); err != nil {
			return nil, 0, err
		}
	}
	if err := d.writeRegs(regFIFOData, data); err != nil {
		return nil, 0, err
	}
	if err := d.writeReg(regBitFraming, txLastBits); err != nil {
		return nil, 0, err
	}
	if err := d.writeReg(regCommand, pcdTransceive); err != nil {
		return nil, 0, err
	}
	if err := d.setBits(regBitFraming, startSend); err != nil {
		return nil, 0, err
	}

	if err := d.waitIrq(ctx); err != nil {
		return nil, 0, err
	}

	errReg, err := d.readReg(regError)
	if err != nil {
		return nil, 0, err
	}
	if errReg&errFatalMask != 0 {
		return nil, 0, fmt.Errorf("%w: ErrorReg 0x%02X", ErrProtocol, errReg)
	}
	if errReg&errCollision != 0 {
		return nil, 0, ErrCollision
	}

	n, err := d.readReg(regFIFOLevel)
	if err != nil {
		return nil, 0, err
	}
	res, err := d.readFIFO(int(n))
	if err != nil {
		return nil, 0, err
	}
	control, err := d.readReg(regControl)
	if err != nil {
		return nil, 0, err
	}
	return res, control & lastBitsMask, nil
}

// waitIrq polls ComIrqReg until the tag answers or the chip timer fires
func (d *Device) waitIrq(ctx context.Context) error {
	deadline := time.Now().Add(d.config.Timeout)
	for {
		irq, err := d.readReg(regComIrq)
		if err != nil {
			return err
		}
		switch {
		case irq&(irqRx|irqIdle) != 0:
			return nil
		case irq&irqTimer != 0:
			return ErrTimeout
		}
		if !time.Now().Before(deadline) {
			return ErrTimeout
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// stopCrypto1 leaves any authenticated state
func (d *Device) stopCrypto1() error {
	return d.clearBits(regStatus2, crypto1On)
}

// AntennaOff turns the RF field off
func (d *Device) AntennaOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearBits(regTxControl, antennaOnBits)
}

func (d *Device) readReg(reg byte) (byte, error) {
	w := []byte{0x80 | (reg<<1)&0x7E, 0x00}
	r := make([]byte, 2)
	if err := d.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("read register 0x%02X: %w", reg, err)
	}
	return r[1], nil
}

func (d *Device) readFIFO(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	addr := 0x80 | (regFIFOData<<1)&0x7E
	w := make([]byte, n+1)
	for i := 0; i < n; i++ {
		w[i] = byte(addr)
	}
	r := make([]byte, n+1)
	if err := d.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("read FIFO: %w", err)
	}
	return r[1:], nil
}

func (d *Device) writeReg(reg, value byte) error {
	return d.writeRegs(reg, []byte{value})
}

func (d *Device) writeRegs(reg byte, values []byte) error {
	w := make([]byte, 0, len(values)+1)
	w = append(w, (reg<<1)&0x7E)
	w = append(w, values...)
	if err := d.conn.Tx(w, make([]byte, len(w))); err != nil {
		return fmt.Errorf("write register 0x%02X: %w", reg, err)
	}
	return nil
}

func (d *Device) setBits(reg, mask byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, v|mask)
}

func (d *Device) clearBits(reg, mask byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, v&^mask)
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
