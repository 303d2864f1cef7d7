package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
	"github.com/urbanfleet/ridemart/internal/warehouse"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the warehouse schema",
	Long: `Create the staging table, the four dimension tables and the fact table
in the target PostgreSQL database. Safe to re-run: existing tables are
left untouched unless --drop-existing is given.

Example:
  ridemart init --connection postgres://user@localhost/ridemart`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating the schema")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if initDropExisting {
		logging.Warn().Msg("Dropping existing warehouse tables")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop metadata: %w", err)
		}
	}

	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.SaveInitMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("schema_version", db.SchemaVersion).
		Msg("Warehouse schema initialized")
	return nil
}
