// Package render produces the downloadable report documents. It is pure
// presentation over the insight and chart-spec contracts; nothing here
// feeds back into the analysis.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/finreports/insightd/internal/charts"
	"github.com/finreports/insightd/internal/dataset"
)

// Meta carries the report header fields shared by both renderers.
type Meta struct {
	Title       string
	ReportType  string
	GeneratedAt time.Time
}

// Static closing recommendations printed on every report.
var reportRecommendations = []string{
	"Focus on the highest performing segments identified in the analysis to maximize returns.",
	"Address the underperforming areas with targeted strategies based on the insights provided.",
	"Monitor the trends identified in this report and establish regular reporting cycles.",
	"Consider further detailed analysis on specific areas of interest highlighted in this report.",
}

const reportFooter = "Generated by Business Report Generator"

// Document renders the PDF report: header, executive summary, the top 8
// insights, up to 4 charts as images, a 10-row data sample and the static
// recommendations. A chart that fails to rasterize is skipped.
func Document(meta Meta, insights []string, specs []charts.Spec, records []*dataset.Record) ([]byte, error) {
	if len(insights) > 8 {
		insights = insights[:8]
	}
	if len(specs) > 4 {
		specs = specs[:4]
	}
	sample := records
	if len(sample) > 10 {
		sample = sample[:10]
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, meta.Title, "", "L", false)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Report Type: %s", titleCase(meta.ReportType)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on: %s", meta.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	heading(pdf, "Executive Summary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, "This report provides an analysis of the financial data, highlighting key trends, patterns, and insights derived from the data.", "", "L", false)
	pdf.Ln(5)

	heading(pdf, "Key Insights")
	pdf.SetFont("Helvetica", "", 10)
	for _, insight := range insights {
		pdf.MultiCell(0, 5, "- "+insight, "", "L", false)
	}
	pdf.Ln(5)

	heading(pdf, "Data Visualizations")
	for i, spec := range specs {
		img, err := ChartPNG(spec, 720, 360)
		if err != nil {
			slog.Warn("chart image skipped", "title", spec.Title, "error", err)
			continue
		}
		name := fmt.Sprintf("chart-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.ImageOptions(name, 15, pdf.GetY(), 180, 90, true, opts, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, spec.Title, "", "L", false)
		if spec.Description != "" {
			pdf.MultiCell(0, 5, spec.Description, "", "L", false)
		}
		pdf.Ln(5)
	}

	heading(pdf, "Data Summary")
	writeSampleTable(pdf, sample)
	pdf.Ln(5)

	heading(pdf, "Recommendations")
	pdf.SetFont("Helvetica", "", 10)
	for _, rec := range reportRecommendations {
		pdf.MultiCell(0, 5, "- "+rec, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, reportFooter, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

// writeSampleTable prints up to six columns of the record sample, values
// truncated to 30 characters.
func writeSampleTable(pdf *fpdf.Fpdf, sample []*dataset.Record) {
	if len(sample) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, "No data available.", "", 1, "L", false, 0, "")
		return
	}

	columns := dataset.Columns(sample)
	if len(columns) > 6 {
		columns = columns[:6]
	}
	colWidth := 180.0 / float64(len(columns))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(200, 200, 200)
	for _, col := range columns {
		pdf.CellFormat(colWidth, 6, truncate(col, 30), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetFillColor(245, 245, 220)
	for _, rec := range sample {
		for _, col := range columns {
			pdf.CellFormat(colWidth, 6, truncate(dataset.Stringify(rec.Value(col)), 30), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
