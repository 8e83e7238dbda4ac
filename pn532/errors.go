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
	"errors"
	"fmt"
)

// Device errors
var (
	ErrNoACK              = errors.New("no ACK from PN532")
	ErrTimeout            = errors.New("operation timeout")
	ErrTransportClosed    = errors.New("transport closed")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrNotPN532           = errors.New("device is not a PN532")
	ErrUnsupportedUID     = errors.New("unsupported UID length")
)

// TransportError describes a failed transport operation on a port
type TransportError struct {
	Err  error
	Op   string
	Port string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a timeout, from the transport or the
// context
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNoACK) ||
		errors.Is(err, context.DeadlineExceeded)
}
