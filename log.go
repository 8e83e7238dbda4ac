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
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Logger is the logging surface used across the module. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	logger       atomic.Pointer[slog.Logger]
	debugEnabled atomic.Bool
)

// SetLogger replaces the package logger. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// DefaultLogger returns the package logger.
func DefaultLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetDebugEnabled turns debug tracing of core state changes on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether debug tracing is on
func DebugEnabled() bool {
	return debugEnabled.Load()
}

func debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	DefaultLogger().Debug(fmt.Sprintf(format, args...))
}

func debugln(msg string) {
	if !debugEnabled.Load() {
		return
	}
	DefaultLogger().Debug(msg)
}
