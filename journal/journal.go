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

// Package journal keeps a durable local record of library transactions in
// SQLite
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - transactions table
// 2 - index on at_ms for Since
const currentSchemaVersion = 2

// Journal is a smartlibrary.Journal stored in a SQLite database in WAL
// mode
type Journal struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating its directory
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < 2 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_transactions_at ON transactions(at_ms)`); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Append stores tx. A transaction without an ID gets a fresh one.
func (j *Journal) Append(ctx context.Context, tx smartlibrary.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, student_id, student_name, book_id, book_title, at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.StudentID, tx.StudentName, tx.BookID, tx.BookTitle, tx.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Count returns the number of stored transactions
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Recent returns up to limit transactions, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]smartlibrary.Transaction, error) {
	return j.query(ctx, `
		SELECT id, type, student_id, student_name, book_id, book_title, at_ms
		FROM transactions ORDER BY seq DESC LIMIT ?`, limit)
}

// Since returns the transactions recorded at or after t, oldest first
func (j *Journal) Since(ctx context.Context, t time.Time) ([]smartlibrary.Transaction, error) {
	return j.query(ctx, `
		SELECT id, type, student_id, student_name, book_id, book_title, at_ms
		FROM transactions WHERE at_ms >= ? ORDER BY seq`, t.UnixMilli())
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]smartlibrary.Transaction, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []smartlibrary.Transaction
	for rows.Next() {
		var (
			tx  smartlibrary.Transaction
			typ string
			ms  int64
		)
		if err := rows.Scan(&tx.ID, &typ, &tx.StudentID, &tx.StudentName, &tx.BookID, &tx.BookTitle, &ms); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = smartlibrary.TransactionType(typ)
		tx.At = time.UnixMilli(ms).UTC()
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return out, nil
}

var _ smartlibrary.Journal = (*Journal)(nil)
