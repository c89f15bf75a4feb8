package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// Mode selects the batch scoring strategy.
type Mode string

const (
	// ModePerItem issues one remote call per product, sequentially, with
	// enforced pacing between calls.
	ModePerItem Mode = "per_item"

	// ModeQuickBatch packs the first products into a single indexed
	// remote call and scores any remainder heuristically.
	ModeQuickBatch Mode = "quick_batch"
)

// QuickBatchMaxItems caps how many products fit into one batch prompt.
const QuickBatchMaxItems = 15

// DefaultCallInterval is the minimum spacing between consecutive remote
// calls in per-item mode, chosen to stay under provider rate limits.
const DefaultCallInterval = 200 * time.Millisecond

// BatchOptions tunes one AnalyzeBatch call.
type BatchOptions struct {
	// Progress, when set, is invoked after each product completes in
	// per-item mode with (completed, total). Advisory only.
	Progress func(completed, total int)

	// SortByScore re-sorts quick-batch output descending by trend score.
	// Per-item output is always sorted; quick-batch preserves input order
	// unless this is set.
	SortByScore bool
}

// Orchestrator drives the AI scorer across product batches. The per-item
// loop is intentionally sequential, not concurrent: calls are paced one at
// a time to stay under the remote provider's rate limit, trading latency
// for reliability. Quick-batch mode gets throughput the other way, by
// packing work into one call.
type Orchestrator struct {
	ai      *AIScorer
	limiter *rate.Limiter
	metrics *MetricsRecorder
}

// NewOrchestrator creates an orchestrator over the given scorer. A nil
// limiter gets the default inter-call pacing; tests inject rate.Inf.
func NewOrchestrator(ai *AIScorer, limiter *rate.Limiter) *Orchestrator {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(DefaultCallInterval), 1)
	}
	return &Orchestrator{
		ai:      ai,
		limiter: limiter,
		metrics: NewMetricsRecorder(),
	}
}

// AnalyzeBatch scores every product and returns exactly one pair per
// input, regardless of how many remote calls fail. The only error path is
// a programming error: an unknown mode.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, products []Product, mode Mode, opts *BatchOptions) ([]ScoredProduct, error) {
	if opts == nil {
		opts = &BatchOptions{}
	}

	start := time.Now()
	defer func() {
		o.metrics.RecordBatch(mode, len(products), time.Since(start))
	}()

	switch mode {
	case ModePerItem:
		return o.analyzePerItem(ctx, products, opts), nil
	case ModeQuickBatch:
		return o.analyzeQuickBatch(ctx, products, opts), nil
	default:
		return nil, fmt.Errorf("unknown batch mode %q", mode)
	}
}

// analyzePerItem scores products one at a time with inter-call pacing,
// then sorts the full list descending by trend score (stable on ties).
func (o *Orchestrator) analyzePerItem(ctx context.Context, products []Product, opts *BatchOptions) []ScoredProduct {
	results := make([]ScoredProduct, 0, len(products))

	for i, p := range products {
		analysis := o.withFallback(p, func() (Analysis, error) {
			if err := o.limiter.Wait(ctx); err != nil {
				return Analysis{}, err
			}
			return o.ai.Score(ctx, p)
		})

		results = append(results, ScoredProduct{Product: p, Analysis: analysis})
		o.metrics.RecordScored(analysis.Source, analysis.TrendScore)

		if opts.Progress != nil {
			opts.Progress(i+1, len(products))
		}
	}

	sortByScore(results)
	return results
}

// analyzeQuickBatch runs one indexed remote call for the first products
// and scores the remainder heuristically. Output keeps input order unless
// the caller asked for sorting.
func (o *Orchestrator) analyzeQuickBatch(ctx context.Context, products []Product, opts *BatchOptions) []ScoredProduct {
	head := products
	if len(head) > QuickBatchMaxItems {
		head = head[:QuickBatchMaxItems]
	}

	var remote []*Analysis
	if len(head) > 0 {
		if err := o.limiter.Wait(ctx); err == nil {
			var callErr error
			remote, callErr = o.ai.ScoreBatch(ctx, head, QuickBatchMaxItems)
			if callErr != nil {
				o.logDegrade(callErr)
			}
		}
	}

	results := make([]ScoredProduct, 0, len(products))
	for i, p := range products {
		var analysis Analysis
		if i < len(remote) && remote[i] != nil {
			analysis = *remote[i]
		} else {
			if remote != nil && i < len(head) {
				// Product was in the prompt but the response had no
				// usable entry for its index.
				o.metrics.RecordFallback("missing_index")
			}
			analysis = ScoreHeuristically(p)
		}
		results = append(results, ScoredProduct{Product: p, Analysis: analysis})
		o.metrics.RecordScored(analysis.Source, analysis.TrendScore)
	}

	if opts.SortByScore {
		sortByScore(results)
	}
	return results
}

// withFallback is the single place remote failures degrade to the
// heuristic scorer. A failed call is scored once via fallback and the
// batch moves on; no retry is attempted here.
func (o *Orchestrator) withFallback(p Product, remote func() (Analysis, error)) Analysis {
	analysis, err := remote()
	if err != nil {
		o.logDegrade(err)
		return ScoreHeuristically(p)
	}
	return analysis
}

func (o *Orchestrator) logDegrade(err error) {
	if errors.Is(err, ErrNotConfigured) {
		o.metrics.RecordFallback("not_configured")
		return
	}
	o.metrics.RecordFallback("remote_error")
	slog.Warn("remote scoring failed, using heuristic", "error", err)
}

func sortByScore(results []ScoredProduct) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Analysis.TrendScore > results[j].Analysis.TrendScore
	})
}
