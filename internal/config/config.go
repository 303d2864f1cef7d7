//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for ridemart.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for ridemart.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`
}

// SeedConfig holds configuration for staging data generation.
type SeedConfig struct {
	// Rows is the number of staging rows to generate.
	Rows int `mapstructure:"rows"`

	// RandSeed seeds the generator RNG (0 = random seed per run).
	RandSeed uint64 `mapstructure:"rand_seed"`

	// DirtyPercent is the share of rows (0-100) given a data-quality
	// defect: an empty natural key or a malformed measure.
	DirtyPercent float64 `mapstructure:"dirty_percent"`

	// DuplicatePercent is the share of rows (0-100) that reuse an
	// earlier booking id.
	DuplicatePercent float64 `mapstructure:"duplicate_percent"`
}

// LoadConfig holds configuration for the warehouse load pipeline.
type LoadConfig struct {
	// Workers is the number of concurrent fact-insert workers.
	Workers int `mapstructure:"workers"`
}

// ReportConfig holds configuration for the reporting engine.
type ReportConfig struct {
	// TopN is the row limit for ranking reports.
	TopN int `mapstructure:"top_n"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Seed: SeedConfig{
			Rows:             50000,
			DirtyPercent:     2.0,
			DuplicatePercent: 1.0,
		},
		Load: LoadConfig{
			Workers: 8,
		},
		Report: ReportConfig{
			TopN: 10,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./ridemart.yaml
// 3. ~/.config/ridemart/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("ridemart")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ridemart"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Rows < 1 {
		return fmt.Errorf("seed rows must be at least 1")
	}
	if c.Seed.DirtyPercent < 0 || c.Seed.DirtyPercent > 100 {
		return fmt.Errorf("dirty_percent must be between 0 and 100")
	}
	if c.Seed.DuplicatePercent < 0 || c.Seed.DuplicatePercent > 100 {
		return fmt.Errorf("duplicate_percent must be between 0 and 100")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.Workers < 1 {
		return fmt.Errorf("load workers must be at least 1")
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Report.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}
	return nil
}
