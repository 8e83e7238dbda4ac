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

// Register addresses
const (
	regCommand     = 0x01
	regComIEn      = 0x02
	regComIrq      = 0x04
	regDivIrq      = 0x05
	regError       = 0x06
	regStatus2     = 0x08
	regFIFOData    = 0x09
	regFIFOLevel   = 0x0A
	regControl     = 0x0C
	regBitFraming  = 0x0D
	regColl        = 0x0E
	regMode        = 0x11
	regTxMode      = 0x12
	regRxMode      = 0x13
	regTxControl   = 0x14
	regTxASK       = 0x15
	regModWidth    = 0x24
	regTMode       = 0x2A
	regTPrescaler  = 0x2B
	regTReloadHigh = 0x2C
	regTReloadLow  = 0x2D
	regVersion     = 0x37
)

// PCD commands
const (
	pcdIdle       = 0x00
	pcdTransceive = 0x0C
	pcdSoftReset  = 0x0F
)

// PICC commands
const (
	piccREQA       = 0x26
	piccSelectCL1  = 0x93
	piccSelectCL2  = 0x95
	piccSelectCL3  = 0x97
	piccHLTA       = 0x50
	piccCascadeTag = 0x88
)

// Register bits
const (
	irqRx         = 0x20
	irqIdle       = 0x10
	irqErr        = 0x02
	irqTimer      = 0x01
	irqClearAll   = 0x7F
	errCollision  = 0x08
	errFatalMask  = 0x13 // BufferOvfl, ParityErr, ProtocolErr
	fifoFlush     = 0x80
	startSend     = 0x80
	crypto1On     = 0x08
	antennaOnBits = 0x03
	powerDownBit  = 0x10
	lastBitsMask  = 0x07
)

// knownVersions are the VersionReg values of genuine chips and common
// clones
var knownVersions = map[byte]string{
	0x88: "FM17522",
	0x91: "MFRC522 v1.0",
	0x92: "MFRC522 v2.0",
	0x12: "MFRC522 clone",
}
