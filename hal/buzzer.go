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

package hal

import (
	"fmt"
	"sync"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Buzzer drives an active buzzer from a GPIO output. Patterns play in the
// background; a pattern requested while another is playing is dropped.
type Buzzer struct {
	pin     gpio.PinOut
	logger  smartlibrary.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	playing bool
}

// OpenBuzzer configures the named pin as a low output
func OpenBuzzer(name string, logger smartlibrary.Logger) (*Buzzer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", name)
	}
	return NewBuzzer(pin, logger)
}

// NewBuzzer configures pin as a low output
func NewBuzzer(pin gpio.PinOut, logger smartlibrary.Logger) (*Buzzer, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure %s as output: %w", pin, err)
	}
	if logger == nil {
		logger = smartlibrary.DefaultLogger()
	}
	return &Buzzer{pin: pin, logger: logger}, nil
}

// Beep sounds each duration in turn, separated by smartlibrary.BeepGap. It
// returns immediately.
func (b *Buzzer) Beep(pattern ...time.Duration) {
	if len(pattern) == 0 {
		return
	}
	b.mu.Lock()
	if b.playing {
		b.mu.Unlock()
		return
	}
	b.playing = true
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer func() {
			b.mu.Lock()
			b.playing = false
			b.mu.Unlock()
		}()
		for i, d := range pattern {
			if i > 0 {
				time.Sleep(smartlibrary.BeepGap)
			}
			if err := b.tone(d); err != nil {
				b.logger.Warn("buzzer failed", "error", err)
				return
			}
		}
	}()
}

func (b *Buzzer) tone(d time.Duration) error {
	if err := b.pin.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(d)
	return b.pin.Out(gpio.Low)
}

// Wait blocks until the current pattern has finished
func (b *Buzzer) Wait() {
	b.wg.Wait()
}

// Close waits for the current pattern and leaves the buzzer off
func (b *Buzzer) Close() error {
	b.Wait()
	return b.pin.Out(gpio.Low)
}

var _ smartlibrary.Beeper = (*Buzzer)(nil)
