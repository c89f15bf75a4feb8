// Package store persists product analyses keyed by the provider's
// external product ID. Callers check here before re-scoring a product;
// a hot in-memory TTL layer sits in front of postgres so repeat lookups
// within one research session never touch the database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	"github.com/trendscout/research-service/internal/scoring"
)

// Schema creates the analyses table. Applied at startup; idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS product_analyses (
	external_id  TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	price        DOUBLE PRECISION NOT NULL,
	trend_score  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	source       TEXT NOT NULL,
	payload      JSONB NOT NULL,
	analyzed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_product_analyses_score ON product_analyses (trend_score DESC);
CREATE INDEX IF NOT EXISTS idx_product_analyses_analyzed_at ON product_analyses (analyzed_at);
`

// DefaultTTL bounds how long a cached analysis is served before the
// caller is told to re-score. Product sales signals go stale in days.
const DefaultTTL = 24 * time.Hour

// Store is the analysis cache over postgres with a memory front.
type Store struct {
	db  *pgxpool.Pool
	mem *gocache.Cache
	ttl time.Duration
}

// New creates a store. A zero ttl gets DefaultTTL.
func New(db *pgxpool.Pool, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		db:  db,
		mem: gocache.New(ttl, 10*time.Minute),
		ttl: ttl,
	}
}

// EnsureSchema applies the schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply analyses schema: %w", err)
	}
	return nil
}

// Get returns the cached analysis for an external ID, if present and
// fresh. The second return value is false on a miss.
func (s *Store) Get(ctx context.Context, externalID string) (scoring.ScoredProduct, bool, error) {
	if v, ok := s.mem.Get(externalID); ok {
		return v.(scoring.ScoredProduct), true, nil
	}

	var payload []byte
	var analyzedAt time.Time
	err := s.db.QueryRow(ctx, `
		SELECT payload, analyzed_at FROM product_analyses WHERE external_id = $1
	`, externalID).Scan(&payload, &analyzedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scoring.ScoredProduct{}, false, nil
		}
		return scoring.ScoredProduct{}, false, fmt.Errorf("query analysis: %w", err)
	}

	if time.Since(analyzedAt) > s.ttl {
		return scoring.ScoredProduct{}, false, nil // stale, caller re-scores
	}

	var result scoring.ScoredProduct
	if err := json.Unmarshal(payload, &result); err != nil {
		slog.Error("corrupt cached analysis payload", "external_id", externalID, "error", err)
		return scoring.ScoredProduct{}, false, nil
	}

	s.mem.Set(externalID, result, gocache.DefaultExpiration)
	return result, true, nil
}

// SaveBatch upserts a batch of analyses and refreshes the memory layer.
// A failure on one row is logged and does not abort the rest; persisting
// is best-effort from the pipeline's point of view.
func (s *Store) SaveBatch(ctx context.Context, results []scoring.ScoredProduct) error {
	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			slog.Error("marshal analysis", "external_id", r.Product.ExternalID, "error", err)
			continue
		}

		_, err = s.db.Exec(ctx, `
			INSERT INTO product_analyses (external_id, title, price, trend_score, status, source, payload, analyzed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (external_id) DO UPDATE SET
				title = EXCLUDED.title,
				price = EXCLUDED.price,
				trend_score = EXCLUDED.trend_score,
				status = EXCLUDED.status,
				source = EXCLUDED.source,
				payload = EXCLUDED.payload,
				analyzed_at = now()
		`, r.Product.ExternalID, r.Product.Title, r.Product.Price,
			r.Analysis.TrendScore, string(r.Analysis.Status), string(r.Analysis.Source), payload)
		if err != nil {
			slog.Error("save analysis", "external_id", r.Product.ExternalID, "error", err)
			continue
		}

		s.mem.Set(r.Product.ExternalID, r, gocache.DefaultExpiration)
	}
	return nil
}

// Winners returns the freshest analyses whose score classifies as winner.
// The threshold lives in scoring.Classify, never here: rows are filtered
// through it rather than against a literal.
func (s *Store) Winners(ctx context.Context, limit int) ([]scoring.ScoredProduct, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT payload FROM product_analyses
		WHERE analyzed_at > now() - $1::interval
		ORDER BY trend_score DESC
		LIMIT $2
	`, fmt.Sprintf("%d seconds", int(s.ttl.Seconds())), limit)
	if err != nil {
		return nil, fmt.Errorf("query winners: %w", err)
	}
	defer rows.Close()

	var results []scoring.ScoredProduct
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			slog.Error("scan analysis row", "error", err)
			continue
		}
		var r scoring.ScoredProduct
		if err := json.Unmarshal(payload, &r); err != nil {
			slog.Error("corrupt analysis payload", "error", err)
			continue
		}
		if scoring.Classify(r.Analysis.TrendScore) != scoring.StatusWinner {
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Recent returns the freshest analyses across all status tiers, highest
// score first.
func (s *Store) Recent(ctx context.Context, limit int) ([]scoring.ScoredProduct, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	rows, err := s.db.Query(ctx, `
		SELECT payload FROM product_analyses
		WHERE analyzed_at > now() - $1::interval
		ORDER BY trend_score DESC
		LIMIT $2
	`, fmt.Sprintf("%d seconds", int(s.ttl.Seconds())), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent analyses: %w", err)
	}
	defer rows.Close()

	var results []scoring.ScoredProduct
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			slog.Error("scan analysis row", "error", err)
			continue
		}
		var r scoring.ScoredProduct
		if err := json.Unmarshal(payload, &r); err != nil {
			slog.Error("corrupt analysis payload", "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// StatusCounts aggregates stored analyses by status tier.
type StatusCounts struct {
	Total     int `json:"total"`
	Winner    int `json:"winner"`
	Potential int `json:"potential"`
	Risky     int `json:"risky"`
}

// Stats returns counts by status tier across all stored analyses.
func (s *Store) Stats(ctx context.Context) (StatusCounts, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, count(*) FROM product_analyses GROUP BY status
	`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			continue
		}
		counts.Total += n
		switch scoring.Status(status) {
		case scoring.StatusWinner:
			counts.Winner = n
		case scoring.StatusPotential:
			counts.Potential = n
		case scoring.StatusRisky:
			counts.Risky = n
		}
	}
	return counts, rows.Err()
}
