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

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// uidLength is the only UID size the proximity reader reports
const uidLength = 4

// Reader adapts a Device to smartlibrary.TagReader. A tag in range is
// reported on every poll.
type Reader struct {
	device *Device
}

// NewReader creates a reader over an initialized device
func NewReader(device *Device) *Reader {
	return &Reader{device: device}
}

// Poll looks for a tag once. Empty fields, timeouts and tags whose UID is
// not 4 bytes long all report smartlibrary.ErrNoTag.
func (r *Reader) Poll(ctx context.Context) (smartlibrary.TagID, error) {
	target, err := r.device.InListPassiveTarget(ctx)
	if err != nil {
		if IsTimeout(err) {
			return "", fmt.Errorf("%w: %w", smartlibrary.ErrNoTag, err)
		}
		return "", err
	}
	if target == nil {
		return "", smartlibrary.ErrNoTag
	}
	if len(target.UID) != uidLength {
		debugf("ignoring %d-byte UID % X", len(target.UID), target.UID)
		return "", fmt.Errorf("%w: %w (%d bytes)", smartlibrary.ErrNoTag, ErrUnsupportedUID, len(target.UID))
	}
	return smartlibrary.TagIDFromBytes(target.UID), nil
}

// Close closes the device
func (r *Reader) Close() error {
	return r.device.Close()
}

var _ smartlibrary.TagReader = (*Reader)(nil)
