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

import (
	"context"
	"errors"
	"fmt"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
)

// Card is a selected ISO14443A card
type Card struct {
	UID  []byte
	ATQA [2]byte
	SAK  byte
}

// RequestA wakes a card in the IDLE state. It returns ErrTimeout when no
// card answers; halted cards stay silent.
func (d *Device) RequestA(ctx context.Context) ([2]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.clearBits(regColl, 0x80); err != nil {
		return [2]byte{}, err
	}
	res, _, err := d.transceive(ctx, []byte{piccREQA}, 7)
	if err != nil {
		return [2]byte{}, err
	}
	if len(res) != 2 {
		return [2]byte{}, fmt.Errorf("%w: ATQA has %d bytes", ErrProtocol, len(res))
	}
	return [2]byte{res[0], res[1]}, nil
}

// Select runs anticollision and select through every cascade level and
// returns the complete UID with the final SAK
func (d *Device) Select(ctx context.Context) (uid []byte, sak byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, sel := range []byte{piccSelectCL1, piccSelectCL2, piccSelectCL3} {
		part, err := d.anticollision(ctx, sel)
		if err != nil {
			return nil, 0, err
		}
		sak, err = d.selectLevel(ctx, sel, part)
		if err != nil {
			return nil, 0, err
		}
		if part[0] == piccCascadeTag {
			uid = append(uid, part[1:4]...)
		} else {
			uid = append(uid, part[:4]...)
		}
		// UID not complete: go to the next cascade level
		if sak&0x04 == 0 {
			return uid, sak, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: UID longer than three cascade levels", ErrProtocol)
}

// anticollision returns the four UID bytes of a cascade level followed by
// their BCC
func (d *Device) anticollision(ctx context.Context, sel byte) ([]byte, error) {
	res, _, err := d.transceive(ctx, []byte{sel, 0x20}, 0)
	if err != nil {
		return nil, err
	}
	if len(res) != 5 {
		return nil, fmt.Errorf("%w: anticollision answer has %d bytes", ErrProtocol, len(res))
	}
	if res[0]^res[1]^res[2]^res[3] != res[4] {
		return nil, ErrBCC
	}
	return res, nil
}

func (d *Device) selectLevel(ctx context.Context, sel byte, part []byte) (byte, error) {
	cmd := appendCRC(append([]byte{sel, 0x70}, part...))
	res, _, err := d.transceive(ctx, cmd, 0)
	if err != nil {
		return 0, err
	}
	if len(res) != 3 {
		return 0, fmt.Errorf("%w: SAK answer has %d bytes", ErrProtocol, len(res))
	}
	if !checkCRC(res) {
		return 0, ErrCRC
	}
	return res[0], nil
}

// HaltA puts the selected card in the HALT state. A halted card does not
// answer RequestA until it leaves the field.
func (d *Device) HaltA(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, _, err := d.transceive(ctx, appendCRC([]byte{piccHLTA, 0x00}), 0)
	switch {
	case errors.Is(err, ErrTimeout):
		// silence is the acknowledgement
	case err == nil:
		return fmt.Errorf("%w: card answered HLTA", ErrProtocol)
	default:
		return err
	}
	return d.stopCrypto1()
}

// Reader adapts a Device to smartlibrary.TagReader. Each card is reported
// once per presentation.
type Reader struct {
	device *Device
}

// NewReader creates a reader over an initialized device
func NewReader(device *Device) *Reader {
	return &Reader{device: device}
}

// Poll wakes, selects and halts one card. No card, or a card still halted
// from its previous read, reports smartlibrary.ErrNoTag.
func (r *Reader) Poll(ctx context.Context) (smartlibrary.TagID, error) {
	card, err := r.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", smartlibrary.ErrNoTag
		}
		return "", err
	}
	return smartlibrary.TagIDFromBytes(card.UID), nil
}

// Read wakes, selects and halts one card
func (r *Reader) Read(ctx context.Context) (*Card, error) {
	atqa, err := r.device.RequestA(ctx)
	if err != nil {
		return nil, err
	}
	uid, sak, err := r.device.Select(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.device.HaltA(ctx); err != nil {
		debugf("HLTA failed: %v", err)
	}
	return &Card{UID: uid, ATQA: atqa, SAK: sak}, nil
}

var _ smartlibrary.TagReader = (*Reader)(nil)
