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

package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/ttyUSB0", ignorePaths: []string{}},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/ttyUSB0"}},
		{name: "exact match", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "case insensitive", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/DEV/TTYUSB0"}, expected: true},
		{name: "no match", devicePath: "/dev/ttyUSB1", ignorePaths: []string{"/dev/ttyUSB0"}},
		{
			name:        "one of several",
			devicePath:  "/dev/ttyUSB1",
			ignorePaths: []string{"/dev/ttyUSB0", "/dev/ttyUSB1"},
			expected:    true,
		},
		{name: "i2c path", devicePath: "/dev/i2c-1", ignorePaths: []string{"/dev/i2c-1"}, expected: true},
		{name: "relative components", devicePath: "/dev/../dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "empty entries", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"", "/dev/ttyUSB0"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlocked("2341", "0043", DefaultBlocklist()))
	assert.True(t, IsBlocked("10c4", "ea60", []string{" 10C4:EA60 "}))
	assert.False(t, IsBlocked("10C4", "EA60", DefaultBlocklist()))
	assert.False(t, IsBlocked("2341", "", DefaultBlocklist()))
	assert.False(t, IsBlocked("", "", []string{":"}))
}

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
}

func (f *fakeDetector) Transport() string {
	return f.transport
}

func (f *fakeDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

func TestDetectWith(t *testing.T) {
	t.Parallel()

	uart := &fakeDetector{transport: "uart", devices: []DeviceInfo{
		{Transport: "uart", Path: "/dev/ttyS0", Confidence: Low},
		{Transport: "uart", Path: "/dev/ttyUSB0", Confidence: Medium},
	}}
	i2c := &fakeDetector{transport: "i2c", devices: []DeviceInfo{
		{Transport: "i2c", Path: "/dev/i2c-1", Confidence: High},
	}}
	unsupported := &fakeDetector{transport: "spi", err: ErrUnsupportedPlatform}

	t.Run("MostConfidentFirst", func(t *testing.T) {
		t.Parallel()
		found, err := DetectWith(context.Background(), nil, uart, unsupported, i2c)
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "/dev/i2c-1", found[0].Path)
		assert.Equal(t, "/dev/ttyUSB0", found[1].Path)
		assert.Equal(t, "i2c /dev/i2c-1 (high confidence)", found[0].String())
	})

	t.Run("IgnorePaths", func(t *testing.T) {
		t.Parallel()
		opts := DefaultOptions()
		opts.IgnorePaths = []string{"/dev/i2c-1"}
		found, err := DetectWith(context.Background(), opts, uart, i2c)
		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyUSB0", found[0].Path)
	})

	t.Run("NothingFound", func(t *testing.T) {
		t.Parallel()
		_, err := DetectWith(context.Background(), nil, unsupported)
		require.ErrorIs(t, err, ErrNoDevicesFound)
	})

	t.Run("DetectorFailure", func(t *testing.T) {
		t.Parallel()
		failure := errors.New("permission denied")
		_, err := DetectWith(context.Background(), nil, &fakeDetector{transport: "i2c", err: failure})
		require.ErrorIs(t, err, failure)
	})
}

func TestConfidence_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "unknown", Confidence(9).String())
	assert.Nil(t, DefaultOptions().IgnorePaths)
}
