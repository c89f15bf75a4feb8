package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/research-service/internal/scoring"
)

func TestNormalize(t *testing.T) {
	t.Run("Full provider record", func(t *testing.T) {
		raw := json.RawMessage(`{
			"product_id": 1005001234567890,
			"product_title": "Mini LED Lamp",
			"product_main_image_url": "https://img.example.com/lamp.jpg",
			"app_sale_price": "US $9.99",
			"original_price": "19.99",
			"lastest_volume": 15000,
			"evaluate_rate": "96.0%",
			"evaluation_count": 3200,
			"product_detail_url": "https://example.com/item/1005001234567890",
			"shop_name": "Bright Home Store",
			"first_level_category_name": "Home & Garden"
		}`)

		p, ok := Normalize(raw)
		require.True(t, ok)

		assert.Equal(t, "1005001234567890", p.ExternalID)
		assert.Equal(t, "Mini LED Lamp", p.Title)
		assert.Equal(t, "https://img.example.com/lamp.jpg", p.ImageURL)
		assert.InDelta(t, 9.99, p.Price, 0.001)
		require.NotNil(t, p.OriginalPrice)
		assert.InDelta(t, 19.99, *p.OriginalPrice, 0.001)
		assert.Equal(t, 15000, p.SalesCount)
		require.NotNil(t, p.Rating)
		assert.InDelta(t, 4.8, *p.Rating, 0.001)
		assert.Equal(t, 3200, p.ReviewCount)
		assert.Equal(t, "https://example.com/item/1005001234567890", p.SourceURL)
		require.NotNil(t, p.SupplierName)
		assert.Equal(t, "Bright Home Store", *p.SupplierName)
		require.NotNil(t, p.Category)
		assert.Equal(t, "Home & Garden", *p.Category)
	})

	t.Run("Alternate key names", func(t *testing.T) {
		raw := json.RawMessage(`{
			"itemId": "abc-123",
			"name": "Blender",
			"sale_price": 19.99,
			"volume": 500,
			"rating": 4.2
		}`)

		p, ok := Normalize(raw)
		require.True(t, ok)
		assert.Equal(t, "abc-123", p.ExternalID)
		assert.Equal(t, "Blender", p.Title)
		assert.InDelta(t, 19.99, p.Price, 0.001)
		assert.Equal(t, 500, p.SalesCount)
		require.NotNil(t, p.Rating)
		assert.InDelta(t, 4.2, *p.Rating, 0.001)
	})

	t.Run("Missing optional fields stay nil", func(t *testing.T) {
		p, ok := Normalize(json.RawMessage(`{"id": "x1", "sale_price": 5}`))
		require.True(t, ok)
		assert.Nil(t, p.OriginalPrice)
		assert.Nil(t, p.Rating)
		assert.Nil(t, p.SupplierName)
		assert.Nil(t, p.Category)
		assert.Equal(t, 0, p.SalesCount)
	})

	t.Run("Record without an ID is dropped", func(t *testing.T) {
		_, ok := Normalize(json.RawMessage(`{"title": "Lamp", "sale_price": 9.99}`))
		assert.False(t, ok)
	})

	t.Run("Record with zero price is dropped", func(t *testing.T) {
		_, ok := Normalize(json.RawMessage(`{"id": "x1", "sale_price": 0}`))
		assert.False(t, ok)
	})

	t.Run("Record with negative price is dropped", func(t *testing.T) {
		_, ok := Normalize(json.RawMessage(`{"id": "x1", "sale_price": -3}`))
		assert.False(t, ok)
	})

	t.Run("Record with unparseable price is dropped", func(t *testing.T) {
		_, ok := Normalize(json.RawMessage(`{"id": "x1", "sale_price": "call us"}`))
		assert.False(t, ok)
	})

	t.Run("Non-object payload is dropped", func(t *testing.T) {
		_, ok := Normalize(json.RawMessage(`"just a string"`))
		assert.False(t, ok)
	})
}

func TestNormalizeAll(t *testing.T) {
	raw := json.RawMessage(`{"data": {"products": [
		{"product_id": "1", "app_sale_price": "9.99", "product_title": "Lamp"},
		{"product_title": "No ID", "app_sale_price": "5.00"},
		{"product_id": "3", "app_sale_price": "0"},
		{"product_id": "4", "app_sale_price": "14.50", "product_title": "Vase"}
	]}}`)

	products := NormalizeAll(raw)
	require.Len(t, products, 2)
	assert.Equal(t, "1", products[0].ExternalID)
	assert.Equal(t, "4", products[1].ExternalID)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    float64
		wantOK  bool
	}{
		{"Plain number", 9.99, 9.99, true},
		{"String number", "9.99", 9.99, true},
		{"Currency prefix", "US $9.99", 9.99, true},
		{"Dollar prefix", "$1,299.00", 1299, true},
		{"Thousands separator", "12,345", 12345, true},
		{"Empty string", "", 0, false},
		{"Non-numeric string", "free", 0, false},
		{"Boolean", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestExtractRating(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   float64
		wantOK bool
	}{
		{"Percentage string", map[string]any{"evaluate_rate": "96.0%"}, 4.8, true},
		{"Percentage number", map[string]any{"evaluate_rate": 90.0}, 4.5, true},
		{"Star scale passthrough", map[string]any{"rating": 4.2}, 4.2, true},
		{"Exactly five", map[string]any{"rating": 5.0}, 5.0, true},
		{"Over-range capped at five", map[string]any{"evaluate_rate": 140.0}, 5.0, true},
		{"Negative skipped", map[string]any{"rating": -1.0}, 0, false},
		{"Absent", map[string]any{}, 0, false},
		{"Unparseable string", map[string]any{"rating": "great"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractRating(tt.fields)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestNormalizedProductFeedsScorer(t *testing.T) {
	raw := json.RawMessage(`{
		"product_id": "1005001",
		"product_title": "Mini LED Lamp",
		"app_sale_price": "9.99",
		"lastest_volume": 15000,
		"evaluate_rate": "96.0%"
	}`)

	p, ok := Normalize(raw)
	require.True(t, ok)

	a := scoring.ScoreHeuristically(p)
	assert.Equal(t, 95, a.TrendScore)
	assert.Equal(t, scoring.StatusWinner, a.Status)
	assert.InDelta(t, 29.97, a.SuggestedPrice, 0.001)
}
