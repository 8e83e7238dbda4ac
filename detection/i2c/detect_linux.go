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

//go:build linux

package i2c

import (
	"context"

	"golang.org/x/sys/unix"
)

// i2c-dev ioctls
const (
	// I2CSlave sets the slave address for subsequent reads and writes
	I2CSlave = 0x0703

	// I2CFuncs is the ioctl command to get adapter functionality
	I2CFuncs = 0x0705

	// I2CFuncI2C indicates plain I2C support
	I2CFuncI2C = 0x00000001
)

func platformChecker() busChecker {
	return linuxChecker{}
}

type linuxChecker struct{}

// usable reports whether path is an adapter supporting plain I2C transfers
func (linuxChecker) usable(busPath string) bool {
	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer func() { _ = unix.Close(fd) }()

	funcs, err := unix.IoctlGetUint32(fd, I2CFuncs)
	if err != nil {
		return false
	}
	return funcs&I2CFuncI2C != 0
}

// answers reads the status byte at addr. A PN532 acknowledges its address
// and returns 0x00 or 0x01; an empty address NACKs and the read fails.
func (linuxChecker) answers(ctx context.Context, busPath string, addr uint16) bool {
	if ctx.Err() != nil {
		return false
	}
	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, I2CSlave, int(addr)); err != nil {
		return false
	}
	status := make([]byte, 1)
	n, err := unix.Read(fd, status)
	return err == nil && n == 1 && status[0] <= 0x01
}
