package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trendscout/research-service/internal/database"
	"github.com/trendscout/research-service/internal/export"
	"github.com/trendscout/research-service/internal/scoring"
	"github.com/trendscout/research-service/internal/store"
)

var (
	exportLimit       int
	exportWinnersOnly bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export stored analyses to an XLSX report",
	Long: `Export fresh product analyses from the database to an XLSX spreadsheet,
highest trend score first. Pass --winners to include only products classified
as winners.`,
	Example: `  research-service export report.xlsx
  research-service export winners.xlsx --winners --limit 25`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVar(&exportLimit, "limit", 200, "Maximum number of analyses to export")
	exportCmd.Flags().BoolVar(&exportWinnersOnly, "winners", false, "Export only winner-classified products")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	st := store.New(database.Pool(), cfg.Cache.TTL)

	var list []scoring.ScoredProduct
	var err error
	if exportWinnersOnly {
		list, err = st.Winners(ctx, exportLimit)
	} else {
		list, err = st.Recent(ctx, exportLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to load analyses: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No stored analyses to export")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.WriteReport(f, list); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info().Str("file", path).Int("products", len(list)).Msg("Report written")
	return nil
}
