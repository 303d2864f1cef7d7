package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/logging"
	"github.com/urbanfleet/ridemart/internal/warehouse"
)

var loadWorkers int

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the ETL pipeline against the staging table",
	Long: `Run the full warehouse load: build the four dimensions in parallel,
then resolve natural keys and load the fact table across a worker pool.

The load is idempotent. Re-running against the same staging input
inserts nothing new; rows whose booking id is already present are
counted as skips, and rows with missing identity or key fields are
reported, never silently dropped.

Example:
  ridemart load --workers 8`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadWorkers, "workers", 0,
		"number of concurrent fact-insert workers")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadWorkers > 0 {
		cfg.Load.Workers = loadWorkers
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx := context.Background()

	// Workers plus the staging reader and a little headroom.
	pool, err := db.ConnectWithMaxConns(ctx, cfg.Connection, int32(cfg.Load.Workers+2))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.CheckSchemaVersion(ctx, pool); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal; aborting load (safe to re-run)")
		cancel()
	}()

	stats, err := warehouse.Run(ctx, pool, warehouse.PipelineConfig{
		Workers: cfg.Load.Workers,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	printLoadSummary(cmd, stats)
	return nil
}

func printLoadSummary(cmd *cobra.Command, stats *warehouse.RunStats) {
	cmd.Println()
	cmd.Println("Load summary")
	cmd.Println("------------")
	for _, d := range stats.Dimensions {
		cmd.Printf("  %-16s %6d new, %6d total\n", d.Name, d.Inserted, d.Total)
	}
	cmd.Println()
	cmd.Printf("  rows read:        %d\n", stats.Load.RowsRead)
	cmd.Printf("  facts inserted:   %d\n", stats.Load.Inserted)
	cmd.Printf("  already present:  %d\n", stats.Load.AlreadyPresent)
	cmd.Printf("  not loadable:     %d\n", stats.Load.Failed)
	cmd.Printf("  duration:         %s\n", stats.Duration.Round(time.Millisecond))

	if stats.Load.Failed > 0 {
		cmd.Println()
		cmd.Println("Run 'ridemart report rows-not-loaded' for details on skipped rows.")
	}
}
