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

package uart

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-smartlibrary/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func listing(ports ...*enumerator.PortDetails) func() ([]*enumerator.PortDetails, error) {
	return func() ([]*enumerator.PortDetails, error) {
		return ports, nil
	}
}

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	d := &detector{list: listing(
		&enumerator.PortDetails{Name: "/dev/ttyS0"},
		&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		&enumerator.PortDetails{Name: "/dev/ttyprintk"},
		&enumerator.PortDetails{Name: "/dev/ttyUSB1"},
	)}

	found, err := d.Detect(context.Background(), &detection.Options{
		Blocklist:   detection.DefaultBlocklist(),
		IgnorePaths: []string{"/dev/ttyUSB1"},
	})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "/dev/ttyS0", found[0].Path)
	assert.Equal(t, detection.Low, found[0].Confidence)

	assert.Equal(t, "/dev/ttyUSB0", found[1].Path)
	assert.Equal(t, detection.Medium, found[1].Confidence)
	assert.Equal(t, "USB Serial", found[1].Name)
	assert.Equal(t, "1A86:7523", found[1].Metadata["vidpid"])
}

func TestDetector_NoPorts(t *testing.T) {
	t.Parallel()

	d := &detector{list: listing(&enumerator.PortDetails{Name: "/dev/tty1"})}
	_, err := d.Detect(context.Background(), detection.DefaultOptions())
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)

	failure := errors.New("enumeration failed")
	d = &detector{list: func() ([]*enumerator.PortDetails, error) { return nil, failure }}
	_, err = d.Detect(context.Background(), detection.DefaultOptions())
	require.ErrorIs(t, err, failure)
	assert.Equal(t, "uart", d.Transport())
}
