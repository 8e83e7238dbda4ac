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

// Package detection finds proximity readers attached to the host
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no devices found")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Confidence ranks how likely a candidate is a PN532
type Confidence int

const (
	// Low means the path exists and nothing contradicts it being a reader
	Low Confidence = iota
	// Medium means the path matches a typical reader wiring
	Medium
	// High means a query got an answer from the device
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Mode controls how intrusive detection is
type Mode int

const (
	// Passive only lists paths
	Passive Mode = iota
	// Active talks to candidate devices
	Active
)

// DeviceInfo describes a candidate reader
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (%s confidence)", d.Transport, d.Path, d.Confidence)
}

// Options configures detection
type Options struct {
	// IgnorePaths are never reported or queried
	IgnorePaths []string
	// Blocklist holds USB VID:PID pairs that are never queried
	Blocklist []string
	Timeout   time.Duration
	Mode      Mode
}

// DefaultOptions returns passive detection with the default blocklist
func DefaultOptions() *Options {
	return &Options{
		Blocklist: DefaultBlocklist(),
		Timeout:   2 * time.Second,
		Mode:      Passive,
	}
}

// Detector finds candidates on one kind of transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.Mutex
	detectors   []Detector
)

// RegisterDetector makes a detector available to DetectAll. Transport
// packages register themselves on import.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors = append(detectors, d)
}

// Registered returns the registered detectors
func Registered() []Detector {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	return append([]Detector(nil), detectors...)
}

// DetectAll runs every registered detector
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	return DetectWith(ctx, opts, Registered()...)
}

// DetectWith runs the given detectors and returns their candidates, most
// confident first. Detectors unsupported on this platform are skipped.
func DetectWith(ctx context.Context, opts *Options, ds ...Detector) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		found []DeviceInfo
		errs  []error
	)
	for _, d := range ds {
		devices, err := d.Detect(ctx, opts)
		switch {
		case errors.Is(err, ErrUnsupportedPlatform), errors.Is(err, ErrNoDevicesFound):
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
		}
		for _, dev := range devices {
			if !IsPathIgnored(dev.Path, opts.IgnorePaths) {
				found = append(found, dev)
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	if len(found) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoDevicesFound
	}
	return found, nil
}

// Best returns the most confident candidate
func Best(ctx context.Context, opts *Options) (DeviceInfo, error) {
	found, err := DetectAll(ctx, opts)
	if err != nil {
		return DeviceInfo{}, err
	}
	return found[0], nil
}
