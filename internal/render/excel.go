package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/finreports/insightd/internal/dataset"
)

// Spreadsheet renders the full record set into a workbook: a Data sheet
// with a styled header row, and a Summary sheet with the report metadata
// plus mean/sum/min/max for every numeric column.
func Spreadsheet(meta Meta, records []*dataset.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const dataSheet = "Data"
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, fmt.Errorf("render: rename sheet: %w", err)
	}

	columns := dataset.Columns(records)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D7E4BC"}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: header style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(dataSheet, cell, col); err != nil {
			return nil, fmt.Errorf("render: write header: %w", err)
		}
		if err := f.SetCellStyle(dataSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("render: style header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(dataSheet, name, name, 15)
	}

	for ri, rec := range records {
		for ci, col := range columns {
			v, ok := rec.Get(col)
			if !ok || v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err := f.SetCellValue(dataSheet, cell, v); err != nil {
				return nil, fmt.Errorf("render: write cell %s: %w", cell, err)
			}
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("render: add summary sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Report Title")
	_ = f.SetCellValue(summarySheet, "B1", meta.Title)
	_ = f.SetCellValue(summarySheet, "A2", "Report Type")
	_ = f.SetCellValue(summarySheet, "B2", meta.ReportType)
	_ = f.SetCellValue(summarySheet, "A3", "Generation Date")
	_ = f.SetCellValue(summarySheet, "B3", meta.GeneratedAt.Format("2006-01-02 15:04"))

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("render: bold style: %w", err)
	}
	_ = f.SetCellValue(summarySheet, "A5", "Data Statistics")
	_ = f.SetCellStyle(summarySheet, "A5", "A5", boldStyle)

	row := 6
	for _, col := range dataset.NumericColumns(records) {
		stats := columnStats(records, col)
		for _, entry := range []struct {
			label string
			value float64
		}{
			{fmt.Sprintf("%s (Mean)", col), stats.mean},
			{fmt.Sprintf("%s (Sum)", col), stats.sum},
			{fmt.Sprintf("%s (Min)", col), stats.min},
			{fmt.Sprintf("%s (Max)", col), stats.max},
		} {
			aCell, _ := excelize.CoordinatesToCellName(1, row)
			bCell, _ := excelize.CoordinatesToCellName(2, row)
			_ = f.SetCellValue(summarySheet, aCell, entry.label)
			_ = f.SetCellValue(summarySheet, bCell, entry.value)
			row++
		}
		row++ // blank row between columns
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type stats struct {
	mean, sum, min, max float64
}

func columnStats(records []*dataset.Record, col string) stats {
	var s stats
	count := 0
	for _, rec := range records {
		v, ok := rec.Get(col)
		if !ok || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			continue
		}
		if count == 0 {
			s.min, s.max = f, f
		} else {
			if f < s.min {
				s.min = f
			}
			if f > s.max {
				s.max = f
			}
		}
		s.sum += f
		count++
	}
	if count > 0 {
		s.mean = s.sum / float64(count)
	}
	return s
}
