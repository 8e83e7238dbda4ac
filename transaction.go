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

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionType names a recorded library event
type TransactionType string

const (
	TransactionCheckIn  TransactionType = "CHECK_IN"
	TransactionCheckOut TransactionType = "CHECK_OUT"
	TransactionBorrow   TransactionType = "BORROW"
	TransactionReturn   TransactionType = "RETURN"
)

// Transaction is an append-only record of a check-in/out or a loan
type Transaction struct {
	At          time.Time
	ID          string
	Type        TransactionType
	StudentID   string
	StudentName string
	BookID      string
	BookTitle   string
}

// NewTransaction builds a record with a fresh ID. book may be nil for
// check-in and check-out.
func NewTransaction(typ TransactionType, student *Student, book *Book, at time.Time) Transaction {
	tx := Transaction{
		ID:   uuid.NewString(),
		Type: typ,
		At:   at,
	}
	if student != nil {
		tx.StudentID = student.ID
		tx.StudentName = student.Name
	}
	if book != nil {
		tx.BookID = book.ID
		tx.BookTitle = book.Title
	}
	return tx
}

// Journal keeps a local, durable copy of transactions
type Journal interface {
	Append(ctx context.Context, tx Transaction) error
	Count(ctx context.Context) (int, error)
}
