// Package export renders scored product batches as spreadsheet research
// reports, the format store operators actually work product lists in.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/trendscout/research-service/internal/scoring"
)

const sheetName = "Products"

var headers = []string{
	"External ID", "Title", "Status", "Trend Score",
	"Cost Price", "Suggested Price", "Profit / Unit", "Margin %",
	"Orders", "Rating", "Competition", "Viral Potential",
	"Target Audience", "Marketing Angles", "Reason", "Source URL",
}

// WriteReport writes an XLSX research report to w. Rows are ordered
// winners first, then by trend score descending; the input slice is not
// modified.
func WriteReport(w io.Writer, results []scoring.ScoredProduct) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", endCell, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	sorted := append([]scoring.ScoredProduct(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Analysis.TrendScore > sorted[j].Analysis.TrendScore
	})

	for i, r := range sorted {
		row := i + 2
		values := []any{
			r.Product.ExternalID,
			r.Product.Title,
			string(r.Analysis.Status),
			r.Analysis.TrendScore,
			r.Product.Price,
			r.Analysis.SuggestedPrice,
			r.Analysis.ProfitPerUnit,
			r.Analysis.ProfitMarginPercent,
			r.Product.SalesCount,
			r.Product.RatingValue(),
			string(r.Analysis.CompetitionLevel),
			string(r.Analysis.ViralPotential),
			r.Analysis.TargetAudience,
			strings.Join(r.Analysis.MarketingAngles, "; "),
			r.Analysis.Reason,
			r.Product.SourceURL,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	// Widen the text-heavy columns
	_ = f.SetColWidth(sheetName, "B", "B", 40)
	_ = f.SetColWidth(sheetName, "M", "O", 50)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
