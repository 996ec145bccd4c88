// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package lspos

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the YAML configuration file
type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Output OutputConfig `yaml:"output"`
	Debug  int          `yaml:"debug"` // Debug level, see DBG_
}

type SolverConfig struct {
	SpeedOfLight float64   `yaml:"speed_of_light"` // [m/s]
	UseTrop      bool      `yaml:"use_trop"`
	TropModel    string    `yaml:"trop_model"` // "goad" or "saastamoinen"
	Iterations   int       `yaml:"iterations"`
	Workers      int       `yaml:"workers"`
	MaxGdop      float64   `yaml:"max_gdop"` // Reject fixes with larger GDOP. 0 means no check
	ExSats       []SatType `yaml:"ex_sats"`
}

type OutputConfig struct {
	PosFile    string `yaml:"pos_file"` // Empty means stdout
	NoHeader   bool   `yaml:"no_header"`
	NmeaFile   string `yaml:"nmea_file"`
	SerialPort string `yaml:"serial_port"` // NMEA output port, e.g. /dev/ttyUSB0
	BaudRate   int    `yaml:"baud_rate"`
}

// DefaultConfig returns a config with the default solver settings
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			SpeedOfLight: C,
			UseTrop:      true,
			TropModel:    "goad",
			Iterations:   NUM_ITERATIONS,
			Workers:      1,
			MaxGdop:      0,
			ExSats:       []SatType{},
		},
		Output: OutputConfig{
			BaudRate: 9600,
		},
		Debug: 0,
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig()
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the value ranges
func (cfg *Config) Validate() error {
	s := &cfg.Solver
	if s.SpeedOfLight <= 0 {
		return fmt.Errorf("speed_of_light must be positive: %v", s.SpeedOfLight)
	}
	if s.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1: %d", s.Iterations)
	}
	if _, err := TropoModelByName(s.TropModel); err != nil {
		return err
	}
	for _, sat := range s.ExSats {
		if !sat.IsValid() {
			return fmt.Errorf("invalid satellite in ex_sats: %q", sat)
		}
	}
	if cfg.Output.SerialPort != "" && cfg.Output.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive: %d", cfg.Output.BaudRate)
	}
	return nil
}

// LsOpt builds the solver options from the config
func (cfg *Config) LsOpt() (*LsOpt, error) {
	tropo, err := TropoModelByName(cfg.Solver.TropModel)
	if err != nil {
		return nil, err
	}
	opt := NewLsOpt()
	opt.C = cfg.Solver.SpeedOfLight
	opt.UseTrop = cfg.Solver.UseTrop
	opt.Iterations = cfg.Solver.Iterations
	opt.Workers = cfg.Solver.Workers
	opt.Tropo = tropo
	return opt, nil
}
