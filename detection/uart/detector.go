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

// Package uart finds PN532 readers behind serial ports
package uart

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-smartlibrary/detection"
	"go.bug.st/serial/enumerator"
)

// usbPrefixes name the ports USB serial adapters appear as on Linux
var usbPrefixes = []string{"ttyUSB", "ttyACM"}

// boardPrefixes name on-board UARTs, wired to HATs on single-board
// computers
var boardPrefixes = []string{"ttyAMA", "ttyS0", "serial0", "ttyTHS"}

type detector struct {
	list func() ([]*enumerator.PortDetails, error)
}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect lists serial ports that could host a reader. USB adapters rank
// above on-board UARTs; blocklisted USB devices and other ports are
// skipped.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
			continue
		}

		device := detection.DeviceInfo{
			Transport: "uart",
			Path:      port.Name,
			Name:      port.Name,
			Metadata:  map[string]string{},
		}
		base := filepath.Base(port.Name)
		switch {
		case port.IsUSB:
			if detection.IsBlocked(port.VID, port.PID, opts.Blocklist) {
				continue
			}
			device.Confidence = detection.Medium
			device.Metadata["vidpid"] = strings.ToUpper(port.VID + ":" + port.PID)
			if port.Product != "" {
				device.Name = port.Product
			}
			if port.SerialNumber != "" {
				device.Metadata["serial"] = port.SerialNumber
			}
		case hasPrefix(base, usbPrefixes):
			device.Confidence = detection.Medium
		case hasPrefix(base, boardPrefixes):
			device.Confidence = detection.Low
		default:
			continue
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
