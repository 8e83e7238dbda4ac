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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the controller configuration
type Config struct {
	Firebase     FirebaseConfig `yaml:"firebase"`
	Readers      ReaderConfig   `yaml:"readers"`
	Outputs      OutputConfig   `yaml:"outputs"`
	Journal      JournalConfig  `yaml:"journal"`
	Sensors      SensorConfig   `yaml:"sensors"`
	Library      LibraryConfig  `yaml:"library"`
	PollInterval time.Duration  `yaml:"poll_interval"`
}

// ReaderConfig selects the tag reader hardware
type ReaderConfig struct {
	// RFIDPort is the SPI port of the contact reader ("" picks the first)
	RFIDPort string `yaml:"rfid_port"`
	// RFIDResetPin is the GPIO wired to the reader's RST line ("" if none)
	RFIDResetPin string `yaml:"rfid_reset_pin"`
	// NFCPath is an I2C bus ("/dev/i2c-1") or a serial port
	// ("/dev/ttyUSB0"). Empty enables auto-detection.
	NFCPath string `yaml:"nfc_path"`
	// NFCIgnorePaths are skipped during auto-detection
	NFCIgnorePaths []string `yaml:"nfc_ignore_paths"`
	// NFCDisabled turns the proximity reader off
	NFCDisabled bool `yaml:"nfc_disabled"`
}

// SensorConfig configures the beam and noise sensors
type SensorConfig struct {
	EntryPin       string        `yaml:"entry_pin"`
	ExitPin        string        `yaml:"exit_pin"`
	ADCDevice      string        `yaml:"adc_device"`
	ADCChannel     int           `yaml:"adc_channel"`
	NoiseThreshold int           `yaml:"noise_threshold"`
	NoiseCooldown  time.Duration `yaml:"noise_cooldown"`
	DebounceWindow time.Duration `yaml:"debounce_window"`
	// SharedDebounce makes an edge on either beam hold off both for the
	// debounce window
	SharedDebounce bool `yaml:"shared_debounce"`
	// BeamActiveHigh is set for beam modules that drive their output high
	// while triggered
	BeamActiveHigh bool `yaml:"beam_active_high"`
}

// OutputConfig configures the display and buzzer
type OutputConfig struct {
	LCDBus     string `yaml:"lcd_bus"`
	BuzzerPin  string `yaml:"buzzer_pin"`
	LCDAddress uint16 `yaml:"lcd_address"`
	LCDEnabled bool   `yaml:"lcd_enabled"`
}

// LibraryConfig configures the directory and the protocol timings
type LibraryConfig struct {
	SeedFile          string        `yaml:"seed_file"`
	MaxStudents       int           `yaml:"max_students"`
	MaxBooks          int           `yaml:"max_books"`
	CheckoutTimeout   time.Duration `yaml:"checkout_timeout"`
	LoanPeriod        time.Duration `yaml:"loan_period"`
	MessageDwell      time.Duration `yaml:"message_dwell"`
	OccupancyDwell    time.Duration `yaml:"occupancy_dwell"`
	SearchDwell       time.Duration `yaml:"search_dwell"`
	StatsSyncInterval time.Duration `yaml:"stats_sync_interval"`
}

// FirebaseConfig configures the remote mirror. An empty DatabaseURL runs
// the controller offline.
type FirebaseConfig struct {
	APIKey      string        `yaml:"api_key"`
	DatabaseURL string        `yaml:"database_url"`
	Email       string        `yaml:"email"`
	Password    string        `yaml:"password"`
	Timeout     time.Duration `yaml:"timeout"`
	QueueSize   int           `yaml:"queue_size"`
}

// JournalConfig configures the local transaction journal. An empty Path
// disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration for a Raspberry Pi
// wiring
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 100 * time.Millisecond,
		Readers: ReaderConfig{
			RFIDResetPin: "GPIO25",
		},
		Sensors: SensorConfig{
			EntryPin:       "GPIO17",
			ExitPin:        "GPIO27",
			ADCDevice:      "iio:device0",
			ADCChannel:     0,
			NoiseThreshold: DefaultNoiseThreshold,
			NoiseCooldown:  DefaultNoiseCooldown,
			DebounceWindow: DefaultDebounceWindow,
			SharedDebounce: true,
		},
		Outputs: OutputConfig{
			LCDEnabled: true,
			LCDAddress: 0x27,
			BuzzerPin:  "GPIO22",
		},
		Library: LibraryConfig{
			MaxStudents:       DefaultMaxStudents,
			MaxBooks:          DefaultMaxBooks,
			CheckoutTimeout:   DefaultCheckoutTimeout,
			LoanPeriod:        DefaultLoanPeriod,
			MessageDwell:      2 * time.Second,
			OccupancyDwell:    1 * time.Second,
			SearchDwell:       3 * time.Second,
			StatsSyncInterval: 30 * time.Second,
		},
		Firebase: FirebaseConfig{
			Timeout:   10 * time.Second,
			QueueSize: 256,
		},
		Journal: JournalConfig{
			Path: "smartlibrary.db",
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	case c.Sensors.DebounceWindow <= 0:
		return fmt.Errorf("%w: debounce_window must be positive", ErrInvalidConfig)
	case c.Sensors.NoiseCooldown <= 0:
		return fmt.Errorf("%w: noise_cooldown must be positive", ErrInvalidConfig)
	case c.Sensors.NoiseThreshold < 0:
		return fmt.Errorf("%w: noise_threshold must not be negative", ErrInvalidConfig)
	case c.Sensors.ADCChannel < 0:
		return fmt.Errorf("%w: adc_channel must not be negative", ErrInvalidConfig)
	case c.Library.MaxStudents <= 0 || c.Library.MaxBooks <= 0:
		return fmt.Errorf("%w: directory capacities must be positive", ErrInvalidConfig)
	case c.Library.CheckoutTimeout <= 0:
		return fmt.Errorf("%w: checkout_timeout must be positive", ErrInvalidConfig)
	case c.Library.LoanPeriod <= 0:
		return fmt.Errorf("%w: loan_period must be positive", ErrInvalidConfig)
	case c.Library.MessageDwell < 0 || c.Library.OccupancyDwell < 0 || c.Library.SearchDwell < 0:
		return fmt.Errorf("%w: dwell times must not be negative", ErrInvalidConfig)
	case c.Library.StatsSyncInterval <= 0:
		return fmt.Errorf("%w: stats_sync_interval must be positive", ErrInvalidConfig)
	case c.Outputs.LCDEnabled && (c.Outputs.LCDAddress == 0 || c.Outputs.LCDAddress > 0x7F):
		return fmt.Errorf("%w: lcd_address must be a 7-bit I2C address", ErrInvalidConfig)
	case c.Firebase.DatabaseURL != "" && c.Firebase.Email != "" && c.Firebase.APIKey == "":
		return fmt.Errorf("%w: firebase sign-in needs an api_key", ErrInvalidConfig)
	}
	return nil
}
