package scoring

import (
	"fmt"
	"strings"

	"github.com/trendscout/research-service/internal/pkg/textnorm"
)

// Heuristic score bands. Points start at a neutral base and are added for
// each positive signal, then clamped to [0, 100].
const (
	heuristicBase = 50

	salesHighBonus = 20 // >= 10000 orders
	salesMidBonus  = 15 // >= 5000 orders
	salesLowBonus  = 10 // >= 1000 orders

	ratingHighBonus = 15 // >= 4.8
	ratingMidBonus  = 10 // >= 4.5
	ratingLowBonus  = 5  // >= 4.0

	impulsePriceBonus = 10 // 5-25 price band converts best on impulse buys
)

// angleRule maps title keywords to a themed marketing angle.
type angleRule struct {
	keywords []string
	angle    string
}

var angleRules = []angleRule{
	{[]string{"led", "light", "lamp"}, "Ambient lighting transformation for home content creators"},
	{[]string{"smart", "wireless", "bluetooth"}, "Effortless tech convenience for everyday routines"},
	{[]string{"portable", "mini", "travel"}, "Compact companion that fits any bag or desk"},
	{[]string{"kitchen", "cook"}, "Kitchen hack that saves time on every meal"},
	{[]string{"pet", "dog", "cat"}, "Pet owners love sharing this with their followers"},
	{[]string{"fitness", "yoga", "gym"}, "Fitness progress content practically films itself"},
}

var fillerAngles = []string{
	"Problem-solution demo that stops the scroll",
	"Before/after transformation content",
	"Unboxing and first-impression hook",
}

// ScoreHeuristically computes an analysis from only the numeric signals
// already on the product. Pure and deterministic: no I/O, no clock, no
// randomness. It is the primary scorer when no completion provider is
// configured and the automatic fallback when a remote call fails, so its
// output contract is identical to the AI scorer's.
func ScoreHeuristically(p Product) Analysis {
	score := heuristicBase

	switch {
	case p.SalesCount >= 10000:
		score += salesHighBonus
	case p.SalesCount >= 5000:
		score += salesMidBonus
	case p.SalesCount >= 1000:
		score += salesLowBonus
	}

	rating := p.RatingValue()
	switch {
	case rating >= 4.8:
		score += ratingHighBonus
	case rating >= 4.5:
		score += ratingMidBonus
	case rating >= 4.0:
		score += ratingLowBonus
	}

	if p.Price >= 5 && p.Price <= 25 {
		score += impulsePriceBonus
	}

	score = ClampScore(score)

	a := Analysis{
		TrendScore:       score,
		Status:           Classify(score),
		SuggestedPrice:   SuggestPrice(p.Price),
		MarketingAngles:  marketingAngles(p.Title),
		TargetAudience:   audienceFor(p),
		CompetitionLevel: competitionFromSales(p.SalesCount),
		ViralPotential:   viralFromScore(score),
		Reason: fmt.Sprintf(
			"Scored from live signals: %d orders and a %.1f rating place this product in the %s tier.",
			p.SalesCount, rating, Classify(score)),
		Source: SourceHeuristic,
	}
	ApplyPricing(&a, p.Price)
	return a
}

// competitionFromSales derives the competition tier from the cumulative
// orders signal alone: heavily-sold products attract copycat stores.
func competitionFromSales(salesCount int) Level {
	switch {
	case salesCount > 20000:
		return LevelHigh
	case salesCount > 5000:
		return LevelMedium
	default:
		return LevelLow
	}
}

// viralFromScore mirrors the score-to-status tiers.
func viralFromScore(score int) Level {
	switch {
	case score >= winnerThreshold:
		return LevelHigh
	case score >= potentialThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// marketingAngles picks themed angles by keyword match against the folded
// title, padded with generic fillers to exactly three entries.
func marketingAngles(title string) []string {
	folded := textnorm.FoldTitle(title)

	angles := make([]string, 0, 3)
	for _, rule := range angleRules {
		if len(angles) == 3 {
			break
		}
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				angles = append(angles, rule.angle)
				break
			}
		}
	}

	for _, filler := range fillerAngles {
		if len(angles) == 3 {
			break
		}
		angles = append(angles, filler)
	}
	return angles
}

func audienceFor(p Product) string {
	if p.Category != nil && *p.Category != "" {
		return fmt.Sprintf("Online shoppers browsing %s, aged 18-44, reached via short-form video ads", *p.Category)
	}
	return "Impulse-driven online shoppers aged 18-44, reached via short-form video ads"
}
