package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/urbanfleet/ridemart/internal/db"
	"github.com/urbanfleet/ridemart/internal/reports"
)

var reportTopN int

var reportCmd = &cobra.Command{
	Use:   "report [name]",
	Short: "Run reports from the fixed query catalog",
	Long: `Run one named report, or the whole catalog when no name is given.
All reports are read-only and safe to run while a load is in progress.

Use 'ridemart report list' to enumerate the catalog.

Example:
  ridemart report top-pickup-locations --top 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportTopN, "top", 0,
		"row limit for ranking reports")
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && args[0] == "list" {
		printReportList(cmd)
		return nil
	}

	if reportTopN > 0 {
		cfg.Report.TopN = reportTopN
	}
	if err := cfg.ValidateReport(); err != nil {
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

	opts := reports.Options{TopN: cfg.Report.TopN}

	if len(args) == 1 {
		def, err := reports.Get(args[0])
		if err != nil {
			return err
		}
		return runOne(ctx, cmd, pool, def, opts)
	}

	for _, def := range reports.All() {
		if err := runOne(ctx, cmd, pool, def, opts); err != nil {
			return err
		}
	}
	return nil
}

func runOne(ctx context.Context, cmd *cobra.Command, q db.Querier,
	def reports.Definition, opts reports.Options) error {

	res, err := def.Run(ctx, q, opts)
	if err != nil {
		return fmt.Errorf("report %s failed: %w", def.Name, err)
	}

	cmd.Println()
	cmd.Printf("== %s: %s\n", def.Name, def.Description)
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res *reports.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	if len(res.Rows) == 0 {
		cmd.Println("(no rows)")
	}
}

func printReportList(cmd *cobra.Command) {
	cmd.Println("Available reports:")
	cmd.Println()
	for _, def := range reports.All() {
		cmd.Printf("  %-22s [%s] %s\n", def.Name, def.Kind, def.Description)
	}
}
