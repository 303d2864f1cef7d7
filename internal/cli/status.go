package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/reports"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse state and last load metadata",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.CheckSchemaVersion(ctx, pool); err != nil {
		return err
	}

	metadata, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	cmd.Println("Metadata:")
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("  %-26s %s\n", k, metadata[k])
	}

	cmd.Println()
	cmd.Println("Row counts:")
	for _, table := range []string{
		"staging_bookings", "customers", "vehicles", "locations",
		"payment_methods", "fact_bookings",
	} {
		var n int64
		if err := pool.QueryRow(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		cmd.Printf("  %-26s %d\n", table, n)
	}

	orphans, err := reports.OrphanCount(ctx, pool)
	if err != nil {
		return err
	}
	cmd.Println()
	cmd.Printf("Orphan facts: %d\n", orphans)
	if orphans > 0 {
		cmd.Println("WARNING: referential integrity violation, investigate before trusting reports")
	}

	return nil
}
