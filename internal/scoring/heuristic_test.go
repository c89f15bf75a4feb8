package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func TestScoreHeuristicallyBands(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		expected int
	}{
		{
			"No signals stays at base",
			Product{Title: "Widget", Price: 49.99},
			50,
		},
		{
			"High sales, top rating, impulse price",
			Product{Title: "Mini LED Lamp", Price: 9.99, SalesCount: 15000, Rating: floatPtr(4.8)},
			95,
		},
		{
			"Mid sales band",
			Product{Title: "Widget", Price: 49.99, SalesCount: 5000},
			65,
		},
		{
			"Low sales band",
			Product{Title: "Widget", Price: 49.99, SalesCount: 1000},
			60,
		},
		{
			"Sales just under low band",
			Product{Title: "Widget", Price: 49.99, SalesCount: 999},
			50,
		},
		{
			"Mid rating band",
			Product{Title: "Widget", Price: 49.99, Rating: floatPtr(4.5)},
			60,
		},
		{
			"Low rating band",
			Product{Title: "Widget", Price: 49.99, Rating: floatPtr(4.0)},
			55,
		},
		{
			"Rating below bands adds nothing",
			Product{Title: "Widget", Price: 49.99, Rating: floatPtr(3.9)},
			50,
		},
		{
			"Impulse price band lower edge",
			Product{Title: "Widget", Price: 5},
			60,
		},
		{
			"Impulse price band upper edge",
			Product{Title: "Widget", Price: 25},
			60,
		},
		{
			"Price just above impulse band",
			Product{Title: "Widget", Price: 25.01},
			50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ScoreHeuristically(tt.product)
			assert.Equal(t, tt.expected, a.TrendScore)
			assert.Equal(t, Classify(tt.expected), a.Status)
			assert.Equal(t, SourceHeuristic, a.Source)
		})
	}
}

func TestScoreHeuristicallyFullAnalysis(t *testing.T) {
	p := Product{
		ExternalID: "1005001234567890",
		Title:      "Mini LED Lamp",
		Price:      9.99,
		SalesCount: 15000,
		Rating:     floatPtr(4.8),
	}

	a := ScoreHeuristically(p)

	assert.Equal(t, 95, a.TrendScore)
	assert.Equal(t, StatusWinner, a.Status)
	assert.InDelta(t, 29.97, a.SuggestedPrice, 0.001)
	assert.InDelta(t, 19.98, a.ProfitPerUnit, 0.001)
	assert.Equal(t, 67, a.ProfitMarginPercent)
	assert.Equal(t, LevelMedium, a.CompetitionLevel)
	assert.Equal(t, LevelHigh, a.ViralPotential)
	assert.Len(t, a.MarketingAngles, 3)
	assert.NotEmpty(t, a.TargetAudience)
	assert.NotEmpty(t, a.Reason)
}

func TestScoreHeuristicallyDeterministic(t *testing.T) {
	p := Product{Title: "Portable Blender", Price: 19.99, SalesCount: 7500, Rating: floatPtr(4.6)}

	first := ScoreHeuristically(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreHeuristically(p))
	}
}

func TestMarketingAngles(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"Keyword match", "Mini LED Lamp"},
		{"Multiple keyword themes", "Smart Portable LED Light"},
		{"No keyword match", "Ceramic Vase"},
		{"Empty title", ""},
		{"Uppercase title", "WIRELESS BLUETOOTH SPEAKER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			angles := marketingAngles(tt.title)
			assert.Len(t, angles, 3)
			seen := make(map[string]bool)
			for _, angle := range angles {
				assert.NotEmpty(t, angle)
				assert.False(t, seen[angle], "duplicate angle %q", angle)
				seen[angle] = true
			}
		})
	}
}

func TestCompetitionFromSales(t *testing.T) {
	tests := []struct {
		sales    int
		expected Level
	}{
		{0, LevelLow},
		{5000, LevelLow},
		{5001, LevelMedium},
		{20000, LevelMedium},
		{20001, LevelHigh},
	}

	for _, tt := range tests {
		result := competitionFromSales(tt.sales)
		if result != tt.expected {
			t.Errorf("competitionFromSales(%d) = %q, want %q", tt.sales, result, tt.expected)
		}
	}
}

func TestViralFromScore(t *testing.T) {
	tests := []struct {
		score    int
		expected Level
	}{
		{0, LevelLow},
		{59, LevelLow},
		{60, LevelMedium},
		{79, LevelMedium},
		{80, LevelHigh},
		{100, LevelHigh},
	}

	for _, tt := range tests {
		result := viralFromScore(tt.score)
		if result != tt.expected {
			t.Errorf("viralFromScore(%d) = %q, want %q", tt.score, result, tt.expected)
		}
	}
}

func TestAudienceFor(t *testing.T) {
	withCategory := Product{Category: strPtr("Home & Garden")}
	assert.Contains(t, audienceFor(withCategory), "Home & Garden")

	assert.NotEmpty(t, audienceFor(Product{}))
}
