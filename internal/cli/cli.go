//-------------------------------------------------------------------------
//
// RideMart Booking Warehouse
//
// Copyright (c) 2025 - 2026, the RideMart authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for ridemart.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/config"
	"github.com/urbanfleet/ridemart/internal/logging"
	"github.com/urbanfleet/ridemart/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "ridemart",
		Short: "Star-schema warehouse and ETL pipeline for ride bookings",
		Long: `ridemart loads raw ride-booking records from a staging table into a
normalized star schema (four dimensions, one fact table) in PostgreSQL,
idempotently, and answers a fixed catalog of analytical queries over it.

Typical flow:
  ridemart init      create the warehouse schema
  ridemart seed      generate staging bookings (optional, for testing)
  ridemart load      run the ETL pipeline
  ridemart report    run the reporting catalog`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./ridemart.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
