package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trendscout/research-service/internal/catalog"
)

var (
	analyzeMode   string
	analyzeSort   bool
	analyzeOutput string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.json>",
	Short: "Score products from a raw provider response file",
	Long: `Read a raw supplier API response from a JSON file, normalize whatever
product records it contains (flat arrays, data envelopes, and keyed object
maps are all recognized), and score each product for trend potential.

Records without a usable ID or price are dropped before scoring.`,
	Example: `  research-service analyze response.json
  research-service analyze response.json --mode per_item --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "quick", "Scoring mode: quick or per_item")
	analyzeCmd.Flags().BoolVar(&analyzeSort, "sort", true, "Sort output descending by trend score")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "table", "Output format: table or json")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	products := catalog.NormalizeAll(raw)
	if len(products) == 0 {
		return fmt.Errorf("no usable product records found in %s", path)
	}

	logger.Info().Str("file", path).Int("products", len(products)).Msg("Scoring products")

	results, err := scoreProducts(context.Background(), products, analyzeMode, analyzeSort)
	if err != nil {
		return err
	}

	switch strings.ToLower(analyzeOutput) {
	case "json":
		return outputResultsJSON(results)
	case "table":
		outputResultsTable(results)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", analyzeOutput)
	}

	return nil
}
