package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotConfigured is returned by providers constructed without a
// credential. It is a normal state, not a failure: the orchestrator
// degrades to the heuristic scorer whenever it sees it.
var ErrNotConfigured = errors.New("completion provider not configured")

// CompletionProvider defines the interface for remote text-completion
// calls. Implementations can target OpenAI-compatible endpoints, local
// models, or a null provider for unconfigured deployments.
type CompletionProvider interface {
	// Complete sends one system+user prompt round trip and returns the
	// assistant message content. The prompt asks for a JSON-only body;
	// callers are responsible for parsing it.
	Complete(ctx context.Context, system, user string) (string, error)

	// Model returns the model identifier used for logging and metrics.
	Model() string
}

// NullProvider is the constructible "credential absent" state. Every call
// reports ErrNotConfigured without touching the network.
type NullProvider struct{}

// NewNullProvider returns a provider that always reports unconfigured.
func NewNullProvider() NullProvider { return NullProvider{} }

func (NullProvider) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (NullProvider) Model() string { return "none" }

// AIScorer scores products through a remote completion provider. All of
// its methods return an error instead of degrading themselves; the
// orchestrator applies the heuristic fallback uniformly at its boundary.
type AIScorer struct {
	provider CompletionProvider
}

// NewAIScorer creates a scorer over the given provider.
func NewAIScorer(provider CompletionProvider) *AIScorer {
	return &AIScorer{provider: provider}
}

// Model exposes the underlying provider's model identifier.
func (s *AIScorer) Model() string { return s.provider.Model() }

const systemPrompt = `You are a dropshipping product analyst. Score products for sales potential on a 0-100 scale: 80-100 proven winner, 60-79 worth testing, below 60 risky. Respond with a single JSON object and nothing else, using exactly these fields: {"score": int, "suggestedPrice": number, "marketingAngles": [3 strings], "targetAudience": string, "competitionLevel": "low"|"medium"|"high", "viralPotential": "low"|"medium"|"high", "reason": string}`

const batchSystemPrompt = `You are a dropshipping product analyst. Score each numbered product for sales potential on a 0-100 scale: 80-100 proven winner, 60-79 worth testing, below 60 risky. Respond with a single JSON object and nothing else: {"results": [{"index": int (the product's 1-based number), "score": int, "suggestedPrice": number, "marketingAngles": [3 strings], "targetAudience": string, "competitionLevel": "low"|"medium"|"high", "viralPotential": "low"|"medium"|"high", "reason": string}]}. Include one entry per product, keyed by its index.`

// aiPayload is the expected response shape. Pointer fields distinguish
// "absent" from zero so partially-valid responses can be field-defaulted.
type aiPayload struct {
	Index            int       `json:"index"`
	Score            *int      `json:"score"`
	SuggestedPrice   *float64  `json:"suggestedPrice"`
	MarketingAngles  []string  `json:"marketingAngles"`
	TargetAudience   string    `json:"targetAudience"`
	CompetitionLevel string    `json:"competitionLevel"`
	ViralPotential   string    `json:"viralPotential"`
	Reason           string    `json:"reason"`
}

type aiBatchPayload struct {
	Results []aiPayload `json:"results"`
}

// Score issues one completion call for a single product.
func (s *AIScorer) Score(ctx context.Context, p Product) (Analysis, error) {
	content, err := s.provider.Complete(ctx, systemPrompt, productSummary(p, 0))
	if err != nil {
		return Analysis{}, err
	}

	var payload aiPayload
	if err := json.Unmarshal(extractJSON(content), &payload); err != nil {
		return Analysis{}, fmt.Errorf("parse completion body: %w", err)
	}
	if payload.Score == nil {
		return Analysis{}, errors.New("completion body missing score field")
	}

	return s.buildAnalysis(payload, p), nil
}

// ScoreBatch packs up to maxItems product summaries into one indexed
// prompt. Response entries map back to inputs strictly by their 1-based
// index field, never by array position; inputs with no matching index get
// a nil entry so the orchestrator can fall back per product. Duplicate
// indices are first-match-wins.
func (s *AIScorer) ScoreBatch(ctx context.Context, products []Product, maxItems int) ([]*Analysis, error) {
	if maxItems <= 0 || maxItems > 15 {
		maxItems = 15
	}
	if len(products) > maxItems {
		products = products[:maxItems]
	}

	var b strings.Builder
	for i, p := range products {
		b.WriteString(productSummary(p, i+1))
		b.WriteString("\n")
	}

	content, err := s.provider.Complete(ctx, batchSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var payload aiBatchPayload
	if err := json.Unmarshal(extractJSON(content), &payload); err != nil {
		return nil, fmt.Errorf("parse batch completion body: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, errors.New("batch completion body missing results")
	}

	results := make([]*Analysis, len(products))
	for _, entry := range payload.Results {
		idx := entry.Index - 1
		if idx < 0 || idx >= len(products) {
			slog.Warn("batch completion entry out of range", "index", entry.Index)
			continue
		}
		if results[idx] != nil {
			continue // duplicate index, first match wins
		}
		if entry.Score == nil {
			continue // treated as missing, product falls back
		}
		a := s.buildAnalysis(entry, products[idx])
		results[idx] = &a
	}
	return results, nil
}

// buildAnalysis converts a parsed payload into a full analysis, defaulting
// every absent or out-of-range field from the heuristic equivalent so a
// partially-valid response still yields a valid result.
func (s *AIScorer) buildAnalysis(payload aiPayload, p Product) Analysis {
	heuristic := ScoreHeuristically(p)

	score := ClampScore(*payload.Score)
	a := Analysis{
		TrendScore:       score,
		Status:           Classify(score),
		SuggestedPrice:   heuristic.SuggestedPrice,
		MarketingAngles:  heuristic.MarketingAngles,
		TargetAudience:   heuristic.TargetAudience,
		CompetitionLevel: heuristic.CompetitionLevel,
		ViralPotential:   viralFromScore(score),
		Reason:           heuristic.Reason,
		Source:           SourceAI,
	}

	if payload.SuggestedPrice != nil && *payload.SuggestedPrice > 0 {
		a.SuggestedPrice = *payload.SuggestedPrice
	}
	if len(payload.MarketingAngles) > 0 {
		angles := append([]string(nil), payload.MarketingAngles...)
		for len(angles) < 3 {
			angles = append(angles, heuristic.MarketingAngles[len(angles)%3])
		}
		a.MarketingAngles = angles[:3]
	}
	if payload.TargetAudience != "" {
		a.TargetAudience = payload.TargetAudience
	}
	if lvl, ok := parseLevel(payload.CompetitionLevel); ok {
		a.CompetitionLevel = lvl
	}
	if lvl, ok := parseLevel(payload.ViralPotential); ok {
		a.ViralPotential = lvl
	}
	if payload.Reason != "" {
		a.Reason = payload.Reason
	}

	ApplyPricing(&a, p.Price)
	return a
}

func parseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, true
	case LevelMedium:
		return LevelMedium, true
	case LevelHigh:
		return LevelHigh, true
	default:
		return "", false
	}
}

// productSummary renders one product for the prompt. index 0 omits the
// numbering used by the batch variant.
func productSummary(p Product, index int) string {
	var b strings.Builder
	if index > 0 {
		fmt.Fprintf(&b, "Product %d: ", index)
	}
	fmt.Fprintf(&b, "%q, cost price %.2f, %d orders, rating %.1f/5, %d reviews",
		p.Title, p.Price, p.SalesCount, p.RatingValue(), p.ReviewCount)
	if p.Category != nil && *p.Category != "" {
		fmt.Fprintf(&b, ", category %q", *p.Category)
	}
	return b.String()
}

// extractJSON tolerates models that wrap the JSON body in markdown code
// fences despite the JSON-only instruction.
func extractJSON(content string) []byte {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
		content = strings.TrimSpace(content)
	}
	return []byte(content)
}
