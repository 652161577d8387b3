package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "History"
	summarySheet = "Summary"
)

// ExportXLSX builds a workbook with one row per entry on a History sheet and
// the aggregated figures on a Summary sheet.
func ExportXLSX(entries []Entry) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Rename the default sheet rather than leaving an empty Sheet1 behind.
	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Document Type", "Risk Score", "Key Issues", "Red Flags", "ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}
	for i, e := range entries {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}
		if !e.At.IsZero() {
			write(1, e.At.Format(DateLayout))
		}
		write(2, e.DocumentType)
		write(3, e.RiskScore)
		write(4, e.KeyIssues)
		write(5, e.RedFlags)
		write(6, e.ID.String())
	}
	_ = f.SetColWidth(historySheet, "A", "A", 12)
	_ = f.SetColWidth(historySheet, "B", "B", 28)
	_ = f.SetColWidth(historySheet, "C", "E", 12)
	_ = f.SetColWidth(historySheet, "F", "F", 38)

	s := Summarize(entries)
	rows := [][2]any{
		{"Total Documents", s.TotalDocuments},
		{"Average Risk", fmt.Sprintf("%.1f", s.AverageRisk)},
		{"Minutes Saved", s.MinutesSaved},
	}
	for score, n := range s.Histogram {
		rows = append(rows, [2]any{fmt.Sprintf("Risk %d", score+1), n})
	}
	for i, r := range rows {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), r[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), r[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	log.Debug().Int("rows", len(entries)).Dur("elapsed", time.Since(start)).Msg("analytics export")
	return buf.Bytes(), nil
}
