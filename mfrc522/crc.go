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

// CRCA computes the ISO/IEC 14443-3 type A CRC of data, low byte first
func CRCA(data []byte) (lo, hi byte) {
	crc := uint16(0x6363)
	for _, b := range data {
		b ^= byte(crc)
		b ^= b << 4
		crc = (crc >> 8) ^ (uint16(b) << 8) ^ (uint16(b) << 3) ^ (uint16(b) >> 4)
	}
	return byte(crc), byte(crc >> 8)
}

// appendCRC returns data followed by its CRC_A
func appendCRC(data []byte) []byte {
	lo, hi := CRCA(data)
	return append(data, lo, hi)
}

// checkCRC reports whether the last two bytes of data are its CRC_A
func checkCRC(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	lo, hi := CRCA(data[:len(data)-2])
	return data[len(data)-2] == lo && data[len(data)-1] == hi
}
