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
)

// Sensor timing defaults
const (
	DefaultDebounceWindow = 500 * time.Millisecond
	DefaultNoiseThreshold = 500
	DefaultNoiseCooldown  = 5 * time.Second
)

// TagReader is a contact or proximity tag reader.
//
// Poll performs one non-blocking poll. It returns ErrNoTag when no tag is
// present. Any other error is a failed read and callers treat it as absent.
type TagReader interface {
	Poll(ctx context.Context) (TagID, error)
}

// LevelReader reads a digital input. Read returns true while the input is
// active (for a beam sensor: while the beam is broken).
type LevelReader interface {
	Read() (bool, error)
}

// Sampler reads one raw analog sample
type Sampler interface {
	Sample() (int, error)
}

// Debouncer holds the time of the last accepted edge. Several sensors may
// share one Debouncer, in which case an edge on any of them holds off the
// others for the window.
type Debouncer struct {
	last   time.Time
	window time.Duration
}

// NewDebouncer creates a debouncer with the given window
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Window returns the debounce window
func (d *Debouncer) Window() time.Duration {
	return d.window
}

func (d *Debouncer) ready(now time.Time) bool {
	return d.last.IsZero() || now.Sub(d.last) > d.window
}

// DigitalSensor turns a level input into inactive-to-active edge events
type DigitalSensor struct {
	input     LevelReader
	debouncer *Debouncer
	name      string
	active    bool
}

// NewDigitalSensor creates a sensor. The input is assumed inactive before
// the first poll.
func NewDigitalSensor(name string, input LevelReader, debouncer *Debouncer) *DigitalSensor {
	if debouncer == nil {
		debouncer = NewDebouncer(DefaultDebounceWindow)
	}
	return &DigitalSensor{
		name:      name,
		input:     input,
		debouncer: debouncer,
	}
}

// Name returns the sensor name
func (s *DigitalSensor) Name() string {
	return s.name
}

// Poll samples the input and reports whether an edge was accepted. The
// previous level is updated on every successful read, whether or not the
// debouncer let the edge through.
func (s *DigitalSensor) Poll(now time.Time) bool {
	active, err := s.input.Read()
	if err != nil {
		debugf("%s sensor read failed: %v", s.name, err)
		return false
	}

	edge := active && !s.active && s.debouncer.ready(now)
	if edge {
		s.debouncer.last = now
		debugf("%s sensor edge at %s", s.name, now.Format(time.StampMilli))
	}
	s.active = active
	return edge
}

// NoiseAlert is raised when the sound level exceeds the threshold
type NoiseAlert struct {
	At    time.Time
	Level int
}

// NoiseMonitor raises at most one alert per cool-down interval. There is no
// hysteresis: a level hovering at the threshold alerts once per cool-down.
type NoiseMonitor struct {
	lastAlert time.Time
	sampler   Sampler
	threshold int
	cooldown  time.Duration
}

// NewNoiseMonitor creates a monitor
func NewNoiseMonitor(sampler Sampler, threshold int, cooldown time.Duration) *NoiseMonitor {
	if cooldown <= 0 {
		cooldown = DefaultNoiseCooldown
	}
	return &NoiseMonitor{
		sampler:   sampler,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Threshold returns the alert threshold
func (m *NoiseMonitor) Threshold() int {
	return m.threshold
}

// Poll takes one sample and returns an alert when it exceeds the threshold
// and the cool-down has elapsed
func (m *NoiseMonitor) Poll(now time.Time) (NoiseAlert, bool) {
	level, err := m.sampler.Sample()
	if err != nil {
		debugf("noise sample failed: %v", err)
		return NoiseAlert{}, false
	}
	if level <= m.threshold {
		return NoiseAlert{}, false
	}
	if !m.lastAlert.IsZero() && now.Sub(m.lastAlert) <= m.cooldown {
		return NoiseAlert{}, false
	}

	m.lastAlert = now
	return NoiseAlert{At: now, Level: level}, true
}

// Occupancy counts the people in the room. It never goes below zero.
type Occupancy struct {
	count int
}

// Enter increments the count and returns it
func (o *Occupancy) Enter() int {
	o.count++
	return o.count
}

// Leave decrements the count, floored at zero, and returns it
func (o *Occupancy) Leave() int {
	if o.count > 0 {
		o.count--
	}
	return o.count
}

// Count returns the current count
func (o *Occupancy) Count() int {
	return o.count
}
