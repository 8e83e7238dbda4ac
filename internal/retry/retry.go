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

// Package retry runs operations that may need several attempts
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned once every attempt asked for a retry
var ErrExhausted = errors.New("retries exhausted")

// Operation is one attempt. It returns the result, whether another attempt
// should be made, and the error of this attempt. An error with
// shouldRetry false stops immediately.
type Operation[T any] func(ctx context.Context) (result T, shouldRetry bool, err error)

// Config configures retry behavior
type Config struct {
	// OnRetry runs before each new attempt; an error stops the retries
	OnRetry func(attempt int, lastErr error) error
	// Description names the operation in the exhaustion error
	Description string
	// Attempts is the total number of attempts, at least one
	Attempts int
	// Delay is the pause between attempts
	Delay time.Duration
}

// Do runs op until it succeeds, fails permanently, runs out of attempts or
// ctx is done. When attempts run out the error wraps both ErrExhausted and
// the last attempt's error.
func Do[T any](ctx context.Context, config Config, op Operation[T]) (T, error) {
	var zero T
	attempts := max(config.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, shouldRetry, err := op(ctx)
		if !shouldRetry {
			return result, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(attempt, lastErr); err != nil {
				return zero, err
			}
		}
		if err := sleep(ctx, config.Delay); err != nil {
			return zero, err
		}
	}

	desc := config.Description
	if desc == "" {
		desc = "operation"
	}
	if lastErr == nil {
		return zero, fmt.Errorf("%s: %w after %d attempts", desc, ErrExhausted, attempts)
	}
	return zero, fmt.Errorf("%s: %w after %d attempts: %w", desc, ErrExhausted, attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
