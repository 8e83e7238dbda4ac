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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-smartlibrary/polling"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the library desk controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
}

func run(ctx context.Context, opts *rootOptions) (err error) {
	cfg, logger := opts.config, opts.logger
	var cl closers
	defer func() {
		if cerr := cl.Close(); cerr != nil {
			logger.Warn("failed to release hardware", "error", cerr)
		}
	}()

	dir, err := opts.directory()
	if err != nil {
		return err
	}

	contact, err := openContact(ctx, cfg, &cl)
	if err != nil {
		return err
	}

	components := polling.Components{
		Contact:   contact,
		Directory: dir,
		Logger:    logger,
		Notifier:  openPanel(cfg, logger, &cl),
	}

	if cfg.Readers.NFCDisabled {
		logger.Info("NFC reader disabled")
	} else if proximity, perr := openProximity(ctx, cfg, &cl); perr != nil {
		logger.Warn("NFC reader unavailable, book search disabled", "error", perr)
	} else {
		components.Proximity = proximity
	}

	components.Entry, components.Exit, components.Noise = openSensors(cfg, logger)

	j, err := openJournal(cfg, &cl)
	if err != nil {
		return err
	}
	if j != nil {
		components.Journal = j
	}

	components.Mirror = openMirror(ctx, cfg, logger)

	monitor, err := polling.NewMonitor(components, polling.ConfigFrom(cfg))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := monitor.Close(closeCtx); cerr != nil {
			logger.Warn("mirror did not drain", "error", cerr)
		}
		written, failed, dropped := components.Mirror.Stats()
		logger.Info("shut down", "mirrored", written, "failed", failed, "dropped", dropped)
	}()

	err = monitor.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("controller stopped: %w", err)
	}
	return nil
}
