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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/ZaparooProject/go-smartlibrary/detection"
	_ "github.com/ZaparooProject/go-smartlibrary/detection/i2c"
	_ "github.com/ZaparooProject/go-smartlibrary/detection/uart"
	"github.com/ZaparooProject/go-smartlibrary/firebase"
	"github.com/ZaparooProject/go-smartlibrary/hal"
	"github.com/ZaparooProject/go-smartlibrary/journal"
	"github.com/ZaparooProject/go-smartlibrary/lcd"
	"github.com/ZaparooProject/go-smartlibrary/mfrc522"
	"github.com/ZaparooProject/go-smartlibrary/pn532"
	"github.com/ZaparooProject/go-smartlibrary/pn532/i2c"
	"github.com/ZaparooProject/go-smartlibrary/pn532/uart"
)

// closers releases opened hardware in reverse order
type closers []io.Closer

func (c *closers) add(closer io.Closer) {
	*c = append(*c, closer)
}

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openContact opens the MFRC522 contact reader
func openContact(ctx context.Context, cfg *smartlibrary.Config, cl *closers) (*mfrc522.Reader, error) {
	device, port, err := mfrc522.Open(cfg.Readers.RFIDPort, cfg.Readers.RFIDResetPin, nil)
	if err != nil {
		return nil, err
	}
	cl.add(port)
	if err := device.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize RFID reader: %w", err)
	}
	return mfrc522.NewReader(device), nil
}

// openProximity opens the PN532 at the configured path, or the best
// detected candidate when none is set
func openProximity(ctx context.Context, cfg *smartlibrary.Config, cl *closers) (*pn532.Reader, error) {
	path := cfg.Readers.NFCPath
	kind := ""
	if path == "" {
		opts := detection.DefaultOptions()
		opts.IgnorePaths = cfg.Readers.NFCIgnorePaths
		best, err := detection.Best(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("NFC auto-detection failed: %w", err)
		}
		smartlibrary.DefaultLogger().Info("detected NFC reader", "device", best.String())
		path, kind = best.Path, best.Transport
	}

	transport, err := newTransport(path, kind)
	if err != nil {
		return nil, err
	}
	device, err := pn532.New(transport)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	cl.add(device)
	if err := device.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize NFC reader on %s: %w", path, err)
	}
	return pn532.NewReader(device), nil
}

// newTransport opens an I2C bus or a serial port. kind may be empty, in
// which case it is inferred from the path.
func newTransport(path, kind string) (pn532.Transport, error) {
	if kind == "" {
		kind = "uart"
		if strings.Contains(strings.ToLower(path), "i2c") {
			kind = "i2c"
		}
	}
	switch kind {
	case "i2c":
		transport, err := i2c.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case "uart":
		transport, err := uart.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", kind)
	}
}

// openSensors opens the beam and noise sensors. A sensor without a pin or
// device is left out; one that fails to open is logged and left out.
func openSensors(cfg *smartlibrary.Config, logger smartlibrary.Logger) (entry, exit *smartlibrary.DigitalSensor, noise *smartlibrary.NoiseMonitor) {
	sc := cfg.Sensors
	shared := smartlibrary.NewDebouncer(sc.DebounceWindow)
	debouncer := func() *smartlibrary.Debouncer {
		if sc.SharedDebounce {
			return shared
		}
		return smartlibrary.NewDebouncer(sc.DebounceWindow)
	}

	beam := func(name, pin string) *smartlibrary.DigitalSensor {
		if pin == "" {
			return nil
		}
		input, err := hal.OpenBeam(pin, !sc.BeamActiveHigh)
		if err != nil {
			logger.Warn("beam sensor unavailable", "sensor", name, "pin", pin, "error", err)
			return nil
		}
		return smartlibrary.NewDigitalSensor(name, input, debouncer())
	}
	entry = beam("entry", sc.EntryPin)
	exit = beam("exit", sc.ExitPin)

	if sc.ADCDevice != "" {
		noise = smartlibrary.NewNoiseMonitor(hal.NewIIOSampler(sc.ADCDevice, sc.ADCChannel), sc.NoiseThreshold, sc.NoiseCooldown)
	}
	return entry, exit, noise
}

// openPanel opens the display and buzzer. Either may be missing.
func openPanel(cfg *smartlibrary.Config, logger smartlibrary.Logger, cl *closers) *smartlibrary.Panel {
	panel := &smartlibrary.Panel{Logger: logger}
	oc := cfg.Outputs
	if oc.LCDEnabled {
		display, err := lcd.Open(oc.LCDBus, oc.LCDAddress)
		if err != nil {
			logger.Warn("display unavailable", "bus", oc.LCDBus, "error", err)
		} else {
			panel.Display = display
			cl.add(display)
		}
	}
	if oc.BuzzerPin != "" {
		buzzer, err := hal.OpenBuzzer(oc.BuzzerPin, logger)
		if err != nil {
			logger.Warn("buzzer unavailable", "pin", oc.BuzzerPin, "error", err)
		} else {
			panel.Buzzer = buzzer
			cl.add(buzzer)
		}
	}
	return panel
}

// openMirror signs in to Firebase. Without a database URL, or when sign-in
// fails, the mirror is offline.
func openMirror(ctx context.Context, cfg *smartlibrary.Config, logger smartlibrary.Logger) *smartlibrary.Mirror {
	fc := cfg.Firebase
	mc := smartlibrary.DefaultMirrorConfig()
	mc.Logger = logger
	mc.QueueSize = fc.QueueSize
	mc.WriteTimeout = fc.Timeout

	if fc.DatabaseURL == "" {
		logger.Info("no database configured, running offline")
		return smartlibrary.NewMirror(nil, mc)
	}
	client, err := firebase.New(firebase.Config{
		APIKey:      fc.APIKey,
		DatabaseURL: fc.DatabaseURL,
		Email:       fc.Email,
		Password:    fc.Password,
		Timeout:     fc.Timeout,
	})
	if err == nil {
		err = client.SignIn(ctx)
	}
	if err != nil {
		logger.Warn("Firebase sign-in failed, running offline", "error", err)
		return smartlibrary.NewMirror(nil, mc)
	}
	logger.Info("signed in to Firebase", "database", fc.DatabaseURL)
	return smartlibrary.NewMirror(client, mc)
}

// openJournal opens the local journal, or returns nil when disabled
func openJournal(cfg *smartlibrary.Config, cl *closers) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	cl.add(j)
	return j, nil
}
