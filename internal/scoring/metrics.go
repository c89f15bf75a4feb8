package scoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scoredProducts counts scored products by the scorer that produced them.
	scoredProducts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_products_total",
		Help: "Total number of products scored by source",
	}, []string{"source"})

	// fallbacks counts remote-call degradations by reason.
	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_fallbacks_total",
		Help: "Total number of heuristic fallbacks by reason",
	}, []string{"reason"})

	// batchDuration tracks end-to-end batch scoring latency by mode.
	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scoring_batch_duration_seconds",
		Help:    "Time taken to score a batch by mode",
		Buckets: []float64{0.05, 0.2, 0.5, 1, 2, 5, 15, 30, 60},
	}, []string{"mode"})

	// batchSize tracks the distribution of batch sizes.
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_batch_products_count",
		Help:    "Number of products per scoring batch",
		Buckets: []float64{1, 5, 10, 15, 25, 50, 100},
	})

	// trendScores tracks the distribution of produced trend scores.
	trendScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_trend_score",
		Help:    "Distribution of trend scores across all scorers",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// MetricsRecorder wraps the package metrics so the orchestrator can be
// tested without touching the default registry state assertions.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordScored records one scored product.
func (*MetricsRecorder) RecordScored(source Source, trendScore int) {
	scoredProducts.WithLabelValues(string(source)).Inc()
	trendScores.Observe(float64(trendScore))
}

// RecordFallback records a degradation to the heuristic scorer.
func (*MetricsRecorder) RecordFallback(reason string) {
	fallbacks.WithLabelValues(reason).Inc()
}

// RecordBatch records batch-level size and latency.
func (*MetricsRecorder) RecordBatch(mode Mode, size int, elapsed time.Duration) {
	batchSize.Observe(float64(size))
	batchDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}
