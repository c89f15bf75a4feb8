package scoring

// Status is the three-tier classification derived from a trend score.
type Status string

const (
	StatusWinner    Status = "winner"
	StatusPotential Status = "potential"
	StatusRisky     Status = "risky"
)

// Level expresses competition and viral-potential tiers.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Source identifies which scorer produced an analysis.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// Product is the canonical product record all scorers consume. It is
// constructed once by the catalog normalizer and never mutated; scorers
// attach an Analysis to it rather than writing into it.
type Product struct {
	ExternalID    string   `json:"externalId"`
	Title         string   `json:"title"`
	ImageURL      string   `json:"imageUrl"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	SalesCount    int      `json:"salesCount"`
	Rating        *float64 `json:"rating,omitempty"` // 0-5 scale
	ReviewCount   int      `json:"reviewCount"`
	SourceURL     string   `json:"sourceUrl"`
	SupplierName  *string  `json:"supplierName,omitempty"`
	Category      *string  `json:"category,omitempty"`
}

// RatingValue returns the rating or 0 when the provider didn't send one.
func (p Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Analysis is the scoring outcome for a single product.
type Analysis struct {
	TrendScore          int      `json:"trendScore"` // 0-100
	Status              Status   `json:"status"`
	SuggestedPrice      float64  `json:"suggestedPrice"`
	ProfitPerUnit       float64  `json:"profitPerUnit"`
	ProfitMarginPercent int      `json:"profitMarginPercent"`
	MarketingAngles     []string `json:"marketingAngles"` // exactly 3, ranked
	TargetAudience      string   `json:"targetAudience"`
	CompetitionLevel    Level    `json:"competitionLevel"`
	ViralPotential      Level    `json:"viralPotential"`
	Reason              string   `json:"reason"`
	Source              Source   `json:"source"`
}

// ScoredProduct pairs a product with its analysis for the duration of one
// batch call. Consumers receive pairs and must not assume a shared store.
type ScoredProduct struct {
	Product  Product  `json:"product"`
	Analysis Analysis `json:"analysis"`
}
