package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trendscout/research-service/internal/scoring"
)

func sampleResults() []scoring.ScoredProduct {
	return []scoring.ScoredProduct{
		{
			Product:  scoring.Product{ExternalID: "1", Title: "Ceramic Vase", Price: 14.99},
			Analysis: scoring.Analysis{TrendScore: 50, Status: scoring.StatusRisky, MarketingAngles: []string{"a", "b", "c"}},
		},
		{
			Product:  scoring.Product{ExternalID: "2", Title: "Mini LED Lamp", Price: 9.99, SalesCount: 15000},
			Analysis: scoring.Analysis{TrendScore: 95, Status: scoring.StatusWinner, SuggestedPrice: 29.97, MarketingAngles: []string{"x", "y", "z"}},
		},
		{
			Product:  scoring.Product{ExternalID: "3", Title: "Portable Blender", Price: 19.99},
			Analysis: scoring.Analysis{TrendScore: 70, Status: scoring.StatusPotential, MarketingAngles: []string{"d", "e", "f"}},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 products

	assert.Equal(t, "External ID", rows[0][0])
	assert.Equal(t, "Title", rows[0][1])

	// Rows are sorted by trend score descending
	assert.Equal(t, "Mini LED Lamp", rows[1][1])
	assert.Equal(t, "Portable Blender", rows[2][1])
	assert.Equal(t, "Ceramic Vase", rows[3][1])

	assert.Equal(t, "winner", rows[1][2])
	assert.Equal(t, "95", rows[1][3])
	assert.Equal(t, "x; y; z", rows[1][13])
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestWriteReportDoesNotMutateInput(t *testing.T) {
	results := sampleResults()

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, results))

	assert.Equal(t, "1", results[0].Product.ExternalID)
	assert.Equal(t, "2", results[1].Product.ExternalID)
	assert.Equal(t, "3", results[2].Product.ExternalID)
}
