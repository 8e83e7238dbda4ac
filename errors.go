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

package smartlibrary

import "errors"

// Core errors
var (
	// ErrNoTag indicates that a reader poll found no tag. It is not a failure.
	ErrNoTag = errors.New("no tag present")

	ErrDirectoryFull   = errors.New("directory is full")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrUnknownTag      = errors.New("unknown tag")
	ErrCheckoutPending = errors.New("checkout already pending")
	ErrBorrowLimit     = errors.New("borrow limit reached")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMirrorClosed    = errors.New("mirror is closed")
)
