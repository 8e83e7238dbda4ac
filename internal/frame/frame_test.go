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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	frm, err := Build(0x02, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}, frm)

	frm, err = Build(0x14, []byte{0x01, 0x14, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x05, 0xFB, 0xD4, 0x14, 0x01, 0x14, 0x01, 0x02, 0x00}, frm)

	_, err = Build(0x40, make([]byte, 254))
	require.ErrorIs(t, err, ErrDataTooLarge)
}

func TestParse(t *testing.T) {
	t.Parallel()
	firmware := []byte{0x00, 0x00, 0xFF, 0x06, 0xFA, 0xD5, 0x03, 0x32, 0x01, 0x06, 0x07, 0xE8, 0x00}

	tests := []struct {
		wantErr  error
		name     string
		buf      []byte
		want     []byte
		wantNack bool
	}{
		{
			name: "firmware response",
			buf:  firmware,
			want: []byte{0x03, 0x32, 0x01, 0x06, 0x07},
		},
		{
			name: "leading garbage",
			buf:  append([]byte{0x01, 0x7F}, firmware...),
			want: []byte{0x03, 0x32, 0x01, 0x06, 0x07},
		},
		{
			name:    "no start code",
			buf:     []byte{0x01, 0x02, 0x03},
			wantErr: ErrNoFrame,
		},
		{
			name:     "bad length checksum",
			buf:      []byte{0x00, 0x00, 0xFF, 0x06, 0xFB, 0xD5, 0x03},
			wantErr:  ErrFrameCorrupted,
			wantNack: true,
		},
		{
			name:     "bad data checksum",
			buf:      []byte{0x00, 0x00, 0xFF, 0x06, 0xFA, 0xD5, 0x03, 0x32, 0x01, 0x06, 0x07, 0xE9, 0x00},
			wantErr:  ErrFrameCorrupted,
			wantNack: true,
		},
		{
			name:    "truncated",
			buf:     firmware[:8],
			wantErr: ErrTruncated,
		},
		{
			name:    "host frame",
			buf:     []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00},
			wantErr: ErrUnexpectedTFI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, nack, err := Parse(tt.buf)
			assert.Equal(t, tt.wantNack, nack)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

// deviceFrame rewrites a host frame into the frame a PN532 would send back
// with the same body
func deviceFrame(frm []byte) []byte {
	out := append([]byte(nil), frm...)
	body := out[6 : len(out)-2]
	out[5] = Pn532ToHost
	out[len(out)-2] = CalculateDataChecksum(Pn532ToHost, body)
	return out
}

func TestBuild_Sizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		argsLen int
	}{
		{name: "command only", argsLen: 0},
		{name: "one arg", argsLen: 1},
		{name: "InListPassiveTarget", argsLen: 2},
		{name: "length 16", argsLen: 14},
		{name: "length wraps LCS to 0x80", argsLen: 126},
		{name: "largest normal frame", argsLen: MaxFrameDataLength - 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := make([]byte, tt.argsLen)
			for i := range args {
				args[i] = byte(0xF0 + i)
			}

			frm, err := Build(0x4A, args)
			require.NoError(t, err)
			require.Len(t, frm, tt.argsLen+9)

			length := frm[3]
			assert.Equal(t, byte(tt.argsLen+2), length)
			assert.Zero(t, length+frm[4], "LEN + LCS")
			// TFI through DCS sums to zero
			assert.Zero(t, CalculateChecksum(frm[5:len(frm)-1]), "TFI + data + DCS")
			assert.False(t, ValidateChecksum(frm[5:len(frm)-1]))
			assert.Equal(t, byte(Postamble), frm[len(frm)-1])

			data, nack, err := Parse(deviceFrame(frm))
			require.NoError(t, err)
			assert.False(t, nack)
			assert.Equal(t, append([]byte{0x4A}, args...), data)
		})
	}

	_, err := Build(0x4A, make([]byte, MaxFrameDataLength-1))
	require.ErrorIs(t, err, ErrDataTooLarge)
}

func TestChecksums(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		tfi  byte
		want byte
	}{
		{name: "GetFirmwareVersion", tfi: HostToPn532, data: []byte{0x02}, want: 0x2A},
		{name: "TFI only", tfi: HostToPn532, want: 0x2C},
		{name: "SAMConfiguration", tfi: HostToPn532, data: []byte{0x14, 0x01, 0x14, 0x01}, want: 0x02},
		{name: "firmware response", tfi: Pn532ToHost, data: []byte{0x03, 0x32, 0x01, 0x06, 0x07}, want: 0xE8},
		{name: "sum overflows", tfi: Pn532ToHost, data: []byte{0xFF, 0x2C}, want: 0x00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dcs := CalculateDataChecksum(tt.tfi, tt.data)
			assert.Equal(t, tt.want, dcs)
			span := append(append([]byte{tt.tfi}, tt.data...), dcs)
			assert.False(t, ValidateChecksum(span))
			span[len(span)-1]++
			assert.True(t, ValidateChecksum(span))
		})
	}

	for i := 0; i < 256; i++ {
		assert.Zero(t, byte(i)+CalculateLengthChecksum(byte(i)), "length %d", i)
	}
}

func TestIsAck(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAck(AckFrame))
	assert.True(t, IsAck(append([]byte{0x00}, AckFrame...)))
	assert.False(t, IsAck(NackFrame))
	assert.False(t, IsAck([]byte{0x00, 0x00, 0xFF, 0x02, 0xFE}))
	assert.False(t, IsAck(nil))
}
