package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"equipviz/internal/analytics"
	"equipviz/internal/models"
)

const (
	pageWidth     = 190.0
	maxSampleRows = 20
)

// Input carries everything one report renders.
type Input struct {
	DatasetName string
	UploadedAt  time.Time
	GeneratedAt time.Time
	Summary     analytics.Summary
	Records     []models.Equipment
}

// Generator renders dataset analysis reports as PDF documents. The
// output is tabular; graphical charts are the client's concern.
type Generator struct{}

// NewGenerator returns a report generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the complete report and returns the PDF bytes.
func (g *Generator) Generate(in Input) ([]byte, error) {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Chemical Equipment Analysis Report", true)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	writeTitle(pdf, in)
	writeSectionHeader(pdf, "Summary Statistics")
	writeSummaryTable(pdf, in.Summary)
	writeSectionHeader(pdf, "Equipment Type Distribution")
	writeDistributionTable(pdf, in.Summary)
	writeSectionHeader(pdf, "Average Parameters by Equipment Type")
	writeTypeAveragesTable(pdf, in.Summary)
	writeSectionHeader(pdf, "Equipment Data Sample")
	writeEquipmentTable(pdf, in.Records)
	writeFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitle(pdf *fpdf.Fpdf, in Input) {
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(26, 54, 93)
	pdf.CellFormat(pageWidth, 12, "Chemical Equipment Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(pageWidth, 6, fmt.Sprintf("Dataset: %s", in.DatasetName), "", 1, "L", false, 0, "")
	pdf.CellFormat(pageWidth, 6, fmt.Sprintf("Generated: %s", in.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(pageWidth, 6, fmt.Sprintf("Data Uploaded: %s", in.UploadedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetDrawColor(128, 128, 128)
	y := pdf.GetY()
	pdf.Line(10, y, 200, y)
	pdf.Ln(2)
}

func writeSectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(44, 82, 130)
	pdf.CellFormat(pageWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func writeSummaryTable(pdf *fpdf.Fpdf, s analytics.Summary) {
	widths := []float64{40, 50, 50, 50}
	writeHeaderRow(pdf, widths, []string{"Metric", "Flowrate", "Pressure", "Temperature"})

	rows := [][]string{
		{"Average", num(s.Flowrate.Avg), num(s.Pressure.Avg), num(s.Temperature.Avg)},
		{"Minimum", num(s.Flowrate.Min), num(s.Pressure.Min), num(s.Temperature.Min)},
		{"Maximum", num(s.Flowrate.Max), num(s.Pressure.Max), num(s.Temperature.Max)},
		{"Std Dev", num(s.Flowrate.Std), num(s.Pressure.Std), num(s.Temperature.Std)},
	}
	for _, row := range rows {
		writeBodyRow(pdf, widths, row)
	}
}

func writeDistributionTable(pdf *fpdf.Fpdf, s analytics.Summary) {
	widths := []float64{80, 55, 55}
	writeHeaderRow(pdf, widths, []string{"Equipment Type", "Count", "Percentage"})

	if len(s.PresentTypes) == 0 {
		writeBodyRow(pdf, widths, []string{"No data available", "-", "-"})
		return
	}

	for _, t := range s.PresentTypes {
		count := s.TypeDistribution[t]
		percentage := 0.0
		if s.TotalCount > 0 {
			percentage = float64(count) / float64(s.TotalCount) * 100
		}
		writeBodyRow(pdf, widths, []string{
			string(t),
			fmt.Sprintf("%d", count),
			fmt.Sprintf("%.1f%%", percentage),
		})
	}
}

func writeTypeAveragesTable(pdf *fpdf.Fpdf, s analytics.Summary) {
	widths := []float64{70, 40, 40, 40}
	writeHeaderRow(pdf, widths, []string{"Equipment Type", "Avg Flowrate", "Avg Pressure", "Avg Temperature"})

	if len(s.PresentTypes) == 0 {
		writeBodyRow(pdf, widths, []string{"No data available", "-", "-", "-"})
		return
	}

	for _, t := range s.PresentTypes {
		stats := s.StatsByType[t]
		writeBodyRow(pdf, widths, []string{
			string(t),
			num(stats.Flowrate.Avg),
			num(stats.Pressure.Avg),
			num(stats.Temperature.Avg),
		})
	}
}

func writeEquipmentTable(pdf *fpdf.Fpdf, records []models.Equipment) {
	widths := []float64{50, 35, 35, 35, 35}
	writeHeaderRow(pdf, widths, []string{"Name", "Type", "Flowrate", "Pressure", "Temperature"})

	sample := records
	if len(sample) > maxSampleRows {
		sample = sample[:maxSampleRows]
	}
	for _, rec := range sample {
		writeBodyRow(pdf, widths, []string{
			truncate(rec.Name, 20),
			string(rec.Type),
			num(rec.Flowrate),
			num(rec.Pressure),
			num(rec.Temperature),
		})
	}

	if rest := len(records) - maxSampleRows; rest > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(pageWidth, 6, fmt.Sprintf("... and %d more records", rest), "", 1, "L", false, 0, "")
	}
}

func writeFooter(pdf *fpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetDrawColor(128, 128, 128)
	y := pdf.GetY()
	pdf.Line(10, y, 200, y)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(pageWidth, 5, "Generated by Chemical Equipment Parameter Visualizer", "", 1, "C", false, 0, "")
}

func writeHeaderRow(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(44, 82, 130)
	pdf.SetTextColor(245, 245, 245)
	pdf.SetDrawColor(203, 213, 224)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 8, cell, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeBodyRow(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(247, 250, 252)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(203, 213, 224)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
