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
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-smartlibrary/internal/retry"
)

// PN532 command codes
const (
	cmdGetFirmwareVersion  = 0x02
	cmdSamConfiguration    = 0x14
	cmdRFConfiguration     = 0x32
	cmdInListPassiveTarget = 0x4A
	cmdInRelease           = 0x52
)

const (
	rfItemMaxRetries        = 0x05
	baudRate106TypeA        = 0x00
	samModeNormal           = 0x01
	samTimeout              = 0x14 // 20 * 50ms
	samUseIRQ               = 0x01
	icPN532                 = 0x32
	maxRetriesForever       = 0xFF
	defaultPassiveRetries   = 0x02
	defaultFirmwareAttempts = 3
	firmwareRetryDelay      = 10 * time.Millisecond
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Timeout bounds each command round trip
	Timeout time.Duration
	// PassiveRetries is the number of activation attempts per
	// InListPassiveTarget; 0xFF retries forever
	PassiveRetries byte
	// FirmwareAttempts bounds the firmware queries made by Init while the chip
	// wakes up
	FirmwareAttempts int
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:          100 * time.Millisecond,
		PassiveRetries:   defaultPassiveRetries,
		FirmwareAttempts: defaultFirmwareAttempts,
	}
}

// FirmwareVersion contains PN532 firmware information
type FirmwareVersion struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

func (f FirmwareVersion) String() string {
	return fmt.Sprintf("PN5%02X v%d.%d", f.IC, f.Version, f.Revision)
}

// Target is a tag found by InListPassiveTarget
type Target struct {
	UID    []byte
	ATQA   [2]byte
	SAK    byte
	Number byte
}

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithTimeout sets the command timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout %v", timeout)
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithPassiveRetries sets the activation retry count
func WithPassiveRetries(retries byte) Option {
	return func(d *Device) error {
		d.config.PassiveRetries = retries
		return nil
	}
}

// Device represents a PN532 NFC reader device.
//
// Commands are serialized with a mutex; the transport sees one exchange at
// a time.
type Device struct {
	transport Transport
	config    *DeviceConfig
	firmware  *FirmwareVersion
	mu        sync.Mutex
}

// New creates a new PN532 device over transport
func New(transport Transport, opts ...Option) (*Device, error) {
	d := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if err := transport.SetTimeout(d.config.Timeout); err != nil {
		return nil, fmt.Errorf("failed to set transport timeout: %w", err)
	}
	return d, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Init identifies the chip, leaves it in normal SAM mode and bounds the
// passive activation retries so an empty field answers promptly
func (d *Device) Init(ctx context.Context) error {
	fw, err := retry.Do(ctx, retry.Config{
		Description: "firmware query",
		Attempts:    d.config.FirmwareAttempts,
		Delay:       firmwareRetryDelay,
		OnRetry: func(attempt int, lastErr error) error {
			debugf("firmware query %d failed: %v", attempt, lastErr)
			return nil
		},
	}, func(ctx context.Context) (*FirmwareVersion, bool, error) {
		fw, err := d.GetFirmwareVersion(ctx)
		return fw, err != nil && IsTimeout(err), err
	})
	if err != nil {
		return err
	}
	if fw.IC != icPN532 {
		return fmt.Errorf("%w: IC 0x%02X", ErrNotPN532, fw.IC)
	}
	if err := d.SAMConfiguration(ctx); err != nil {
		return err
	}
	if err := d.SetPassiveActivationRetries(ctx, d.config.PassiveRetries); err != nil {
		return err
	}
	debugf("PN532 ready: %s over %s", fw, d.transport.Type())
	return nil
}

// Firmware returns the firmware version read by Init, or nil
func (d *Device) Firmware() *FirmwareVersion {
	return d.firmware
}

// GetFirmwareVersion reads the chip identification
func (d *Device) GetFirmwareVersion(ctx context.Context) (*FirmwareVersion, error) {
	res, err := d.command(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return nil, err
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("%w: firmware version has %d bytes", ErrUnexpectedResponse, len(res))
	}
	fw := &FirmwareVersion{IC: res[0], Version: res[1], Revision: res[2], Support: res[3]}
	d.firmware = fw
	return fw, nil
}

// SAMConfiguration puts the Security Access Module in normal mode
func (d *Device) SAMConfiguration(ctx context.Context) error {
	_, err := d.command(ctx, cmdSamConfiguration, []byte{samModeNormal, samTimeout, samUseIRQ})
	return err
}

// SetPassiveActivationRetries sets how many times InListPassiveTarget
// tries to activate a tag before reporting none
func (d *Device) SetPassiveActivationRetries(ctx context.Context, retries byte) error {
	_, err := d.command(ctx, cmdRFConfiguration,
		[]byte{rfItemMaxRetries, maxRetriesForever, 0x01, retries})
	return err
}

// InListPassiveTarget looks for one ISO14443A tag. It returns nil and no
// error when the field is empty.
func (d *Device) InListPassiveTarget(ctx context.Context) (*Target, error) {
	res, err := d.command(ctx, cmdInListPassiveTarget, []byte{0x01, baudRate106TypeA})
	if err != nil {
		return nil, err
	}
	if len(res) < 1 {
		return nil, fmt.Errorf("%w: empty InListPassiveTarget response", ErrUnexpectedResponse)
	}
	if res[0] == 0 {
		return nil, nil
	}

	// Tg, SENS_RES (2), SEL_RES, NFCIDLength, NFCID
	const header = 6
	if len(res) < header {
		return nil, fmt.Errorf("%w: short target data", ErrUnexpectedResponse)
	}
	uidLen := int(res[5])
	if len(res) < header+uidLen {
		return nil, fmt.Errorf("%w: UID length %d exceeds response", ErrUnexpectedResponse, uidLen)
	}
	return &Target{
		Number: res[1],
		ATQA:   [2]byte{res[2], res[3]},
		SAK:    res[4],
		UID:    append([]byte(nil), res[header:header+uidLen]...),
	}, nil
}

// InRelease releases all targets
func (d *Device) InRelease(ctx context.Context) error {
	_, err := d.command(ctx, cmdInRelease, []byte{0x00})
	return err
}

// Close closes the transport
func (d *Device) Close() error {
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// command sends cmd and checks the response code, returning the data after it
func (d *Device) command(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := d.transport.SendCommand(ctx, cmd, args)
	if err != nil {
		return nil, fmt.Errorf("command 0x%02X failed: %w", cmd, err)
	}
	if len(res) == 0 || res[0] != cmd+1 {
		return nil, fmt.Errorf("%w: command 0x%02X got % X", ErrUnexpectedResponse, cmd, res)
	}
	return res[1:], nil
}
