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

// Package i2c finds PN532 readers on Linux I2C buses
package i2c

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/go-smartlibrary/detection"
)

const (
	// DefaultPN532Address is the standard I2C address for PN532 (0x48 >> 1)
	DefaultPN532Address = 0x24

	defaultPattern = "/dev/i2c-*"
)

// busChecker checks whether a bus is usable and whether a device answers at an
// address. The Linux implementation uses the i2c-dev ioctls.
type busChecker interface {
	usable(busPath string) bool
	answers(ctx context.Context, busPath string, addr uint16) bool
}

// detector implements the Detector interface for I2C devices
type detector struct {
	checker busChecker
	pattern string
}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{pattern: defaultPattern, checker: platformChecker()}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "i2c"
}

// Detect lists I2C buses. In Active mode a bus is reported with high
// confidence when a device answers at the PN532 address, and dropped when
// nothing does.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if d.checker == nil {
		return nil, detection.ErrUnsupportedPlatform
	}
	matches, err := filepath.Glob(d.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		if detection.IsPathIgnored(path, opts.IgnorePaths) || !d.checker.usable(path) {
			continue
		}

		device := detection.DeviceInfo{
			Transport:  "i2c",
			Path:       path,
			Name:       "PN532 on " + path,
			Confidence: detection.Low,
			Metadata: map[string]string{
				"address": fmt.Sprintf("0x%02X", DefaultPN532Address),
			},
		}
		if opts.Mode == detection.Active {
			if !d.checker.answers(ctx, path, DefaultPN532Address) {
				continue
			}
			device.Confidence = detection.High
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}
