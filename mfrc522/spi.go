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
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MaxSPISpeed is the highest SCK frequency the chip supports
const MaxSPISpeed = 10 * physic.MegaHertz

// Open opens the SPI port ("" picks the first) and the optional reset pin
// by name. The returned closer releases the port.
func Open(port, resetPin string, config *Config) (*Device, spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if resetPin != "" {
		pin := gpioreg.ByName(resetPin)
		if pin == nil {
			return nil, nil, fmt.Errorf("unknown reset pin %q", resetPin)
		}
		config.Reset = pin
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open SPI port %q: %w", port, err)
	}
	conn, err := p.Connect(MaxSPISpeed, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, nil, fmt.Errorf("failed to configure SPI port %q: %w", port, err)
	}
	return New(conn, config), p, nil
}
