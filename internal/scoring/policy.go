package scoring

import "math"

// Score thresholds for the three-tier classification. These constants are
// the single place where "what counts as a winner" is defined; presentation
// filtering must call Classify rather than re-deriving them.
const (
	winnerThreshold    = 80
	potentialThreshold = 60
)

// DefaultMarkup is the suggested-price multiplier applied to cost price
// when no better signal is available. Stated business rule, not derived.
const DefaultMarkup = 3.0

// Classify maps a trend score to its status tier.
func Classify(trendScore int) Status {
	switch {
	case trendScore >= winnerThreshold:
		return StatusWinner
	case trendScore >= potentialThreshold:
		return StatusPotential
	default:
		return StatusRisky
	}
}

// ClampScore bounds a trend score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// SuggestPrice applies the default markup to a cost price.
func SuggestPrice(costPrice float64) float64 {
	return round2(costPrice * DefaultMarkup)
}

// ApplyPricing fills the derived profit fields on an analysis from its
// suggested price and the product's cost price. A suggested price below
// cost is raised to cost so the pricing invariant holds regardless of
// which scorer produced it.
func ApplyPricing(a *Analysis, costPrice float64) {
	if a.SuggestedPrice < costPrice {
		a.SuggestedPrice = costPrice
	}
	a.ProfitPerUnit = round2(a.SuggestedPrice - costPrice)
	if a.SuggestedPrice > 0 {
		a.ProfitMarginPercent = int(math.Round(a.ProfitPerUnit / a.SuggestedPrice * 100))
	} else {
		a.ProfitMarginPercent = 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
