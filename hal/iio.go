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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// IIORoot is where the kernel exposes industrial I/O devices
const IIORoot = "/sys/bus/iio/devices"

// IIOSampler reads one ADC channel through the kernel IIO sysfs interface
type IIOSampler struct {
	path string
}

// NewIIOSampler reads channel of device ("iio:device0") under IIORoot
func NewIIOSampler(device string, channel int) *IIOSampler {
	return NewIIOSamplerAt(filepath.Join(IIORoot, device, fmt.Sprintf("in_voltage%d_raw", channel)))
}

// NewIIOSamplerAt reads the raw value file at path
func NewIIOSamplerAt(path string) *IIOSampler {
	return &IIOSampler{path: path}
}

// Sample returns the current raw reading
func (s *IIOSampler) Sample() (int, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("malformed sample in %s: %w", s.path, err)
	}
	return v, nil
}

// Path returns the sysfs file being sampled
func (s *IIOSampler) Path() string {
	return s.path
}

var _ smartlibrary.Sampler = (*IIOSampler)(nil)
