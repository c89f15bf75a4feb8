package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trendscout/research-service/internal/catalog"
	"github.com/trendscout/research-service/internal/http/ratelimit"
	"github.com/trendscout/research-service/internal/llm"
	"github.com/trendscout/research-service/internal/scoring"
)

var (
	searchPages  int
	searchMode   string
	searchSort   bool
	searchOutput string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the supplier catalog and score the results",
	Long: `Search the configured supplier catalog for product candidates, score each
one for trend potential, and print the scored list. When no AI provider is
configured the deterministic heuristic scores everything.

Output can be formatted as a human-readable table (default) or JSON.`,
	Example: `  research-service search "led lamp"
  research-service search "pet grooming" --pages 3 --mode per_item
  research-service search "yoga mat" --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchPages, "pages", 1, "Number of result pages to fetch")
	searchCmd.Flags().StringVar(&searchMode, "mode", "quick", "Scoring mode: quick or per_item")
	searchCmd.Flags().BoolVar(&searchSort, "sort", true, "Sort output descending by trend score")
	searchCmd.Flags().StringVar(&searchOutput, "output", "table", "Output format: table or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if cfg == nil {
		return fmt.Errorf("config required for search but not loaded")
	}

	client := catalog.NewClient(catalog.ClientConfig{
		BaseURL:   cfg.Search.BaseURL,
		APIKey:    cfg.Search.APIKey,
		APIHost:   cfg.Search.APIHost,
		RateLimit: rateOverrides(),
	})
	if !client.Configured() {
		return fmt.Errorf("search provider not configured (set RAPIDAPI_KEY)")
	}

	ctx := context.Background()

	logger.Info().Str("query", query).Int("pages", searchPages).Msg("Searching catalog")

	products, err := client.SearchPages(ctx, query, searchPages)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(products) == 0 {
		fmt.Printf("No products found for query: %s\n", query)
		return nil
	}

	logger.Info().Int("products", len(products)).Msg("Scoring products")

	results, err := scoreProducts(ctx, products, searchMode, searchSort)
	if err != nil {
		return err
	}

	switch strings.ToLower(searchOutput) {
	case "json":
		return outputResultsJSON(results)
	case "table":
		outputResultsTable(results)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", searchOutput)
	}

	return nil
}

// scoreProducts runs the batch orchestrator with the provider from config.
func scoreProducts(ctx context.Context, products []scoring.Product, modeFlag string, sortByScore bool) ([]scoring.ScoredProduct, error) {
	mode, err := resolveMode(modeFlag)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required for scoring but not loaded")
	}

	provider := llm.NewProvider(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		RateLimit:   rateOverrides(),
	})
	orch := scoring.NewOrchestrator(scoring.NewAIScorer(provider), nil)

	opts := &scoring.BatchOptions{
		SortByScore: sortByScore,
		Progress: func(completed, total int) {
			logger.Debug().Int("completed", completed).Int("total", total).Msg("Scoring progress")
		},
	}
	return orch.AnalyzeBatch(ctx, products, mode, opts)
}

func resolveMode(flag string) (scoring.Mode, error) {
	switch strings.ToLower(flag) {
	case "", "quick", "quick_batch":
		return scoring.ModeQuickBatch, nil
	case "per_item", "full":
		return scoring.ModePerItem, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (use 'quick' or 'per_item')", flag)
	}
}

func rateOverrides() *ratelimit.PartialConfig {
	if cfg == nil {
		return nil
	}
	return &ratelimit.PartialConfig{
		RequestsPerSecond: &cfg.RateLimit.RequestsPerSecond,
		Burst:             &cfg.RateLimit.Burst,
		MaxRetries:        &cfg.RateLimit.MaxRetries,
		InitialBackoffMs:  &cfg.RateLimit.InitialBackoffMs,
		MaxBackoffMs:      &cfg.RateLimit.MaxBackoffMs,
	}
}

func outputResultsTable(results []scoring.ScoredProduct) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSTATUS\tTITLE\tCOST\tSUGGESTED\tMARGIN\tSOURCE")
	fmt.Fprintln(w, "-----\t------\t-----\t----\t---------\t------\t------")

	for _, r := range results {
		title := r.Product.Title
		if len(title) > 48 {
			title = title[:45] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%d%%\t%s\n",
			r.Analysis.TrendScore, r.Analysis.Status, title,
			r.Product.Price, r.Analysis.SuggestedPrice, r.Analysis.ProfitMarginPercent,
			r.Analysis.Source)
	}

	w.Flush()
}

func outputResultsJSON(results []scoring.ScoredProduct) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
