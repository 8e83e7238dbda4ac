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

package frame

import (
	"bytes"
	"errors"
	"fmt"
)

// Frame errors
var (
	ErrDataTooLarge   = errors.New("frame data too large")
	ErrNoFrame        = errors.New("no frame start found")
	ErrFrameCorrupted = errors.New("frame corrupted")
	ErrUnexpectedTFI  = errors.New("unexpected frame identifier")
	ErrTruncated      = errors.New("frame truncated")
)

// CalculateChecksum returns the modulo-256 sum of data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidateChecksum returns true if the checksum is invalid and the frame
// should be NACKed. A valid span (data followed by its checksum) sums to 0.
func ValidateChecksum(data []byte) bool {
	return CalculateChecksum(data) != 0
}

// CalculateDataChecksum returns the DCS byte for a frame body
func CalculateDataChecksum(tfi byte, data []byte) byte {
	return ^(tfi + CalculateChecksum(data)) + 1
}

// CalculateLengthChecksum returns the LCS byte for a length
func CalculateLengthChecksum(length byte) byte {
	return ^length + 1
}

// Build returns a normal information frame carrying cmd and args from the
// host
func Build(cmd byte, args []byte) ([]byte, error) {
	dataLen := 2 + len(args) // TFI + command + args
	if dataLen > MaxFrameDataLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataLen)
	}

	frm := make([]byte, 0, dataLen+7)
	frm = append(frm, Preamble, StartCode1, StartCode2)
	frm = append(frm, byte(dataLen), CalculateLengthChecksum(byte(dataLen)))
	frm = append(frm, HostToPn532, cmd)
	frm = append(frm, args...)
	frm = append(frm, CalculateDataChecksum(HostToPn532, append([]byte{cmd}, args...)), Postamble)
	return frm, nil
}

// IsAck reports whether buf begins with an ACK frame, ignoring leading
// zero padding
func IsAck(buf []byte) bool {
	return bytes.HasPrefix(trimPadding(buf), AckFrame[1:])
}

func trimPadding(buf []byte) []byte {
	for len(buf) > 1 && buf[0] == 0x00 && buf[1] == 0x00 {
		buf = buf[1:]
	}
	return buf
}

// Parse extracts the body of a response frame: the response code followed
// by its data, without TFI and checksums. shouldNack is true when the frame
// was found but failed a checksum, in which case the sender should be asked
// to repeat it.
func Parse(buf []byte) (data []byte, shouldNack bool, err error) {
	off := -1
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == StartCode1 && buf[i+1] == StartCode2 {
			off = i + 2
			break
		}
	}
	if off < 0 {
		return nil, false, ErrNoFrame
	}
	if off+2 > len(buf) {
		return nil, false, ErrTruncated
	}

	length, lcs := buf[off], buf[off+1]
	if length+lcs != 0 {
		return nil, true, fmt.Errorf("%w: bad length checksum", ErrFrameCorrupted)
	}
	if length == 0 {
		return nil, false, fmt.Errorf("%w: empty frame", ErrFrameCorrupted)
	}

	start := off + 2
	end := start + int(length) // DCS position
	if end >= len(buf) {
		return nil, false, ErrTruncated
	}
	if ValidateChecksum(buf[start : end+1]) {
		return nil, true, fmt.Errorf("%w: bad data checksum", ErrFrameCorrupted)
	}
	if buf[start] != Pn532ToHost {
		return nil, false, fmt.Errorf("%w: 0x%02X", ErrUnexpectedTFI, buf[start])
	}

	return append([]byte(nil), buf[start+1:end]...), false, nil
}
