package document

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Embedded UTF-8 fonts; the core PDF fonts only cover cp1252.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const (
	fontFamily = "DejaVu"
	pageMargin = 15.0
	lineHeight = 7.0
	labelWidth = 50.0
)

// RenderPDF draws layout onto A4 pages. The same layout always produces the
// same bytes.
func RenderPDF(layout *Layout, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(layout.Timestamp)
	pdf.SetModificationDate(layout.Timestamp)
	pdf.SetTitle(layout.Title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	content := width - 2*pageMargin

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(content, 10, layout.Title, "", 1, "C", false, 0, "")

	for _, s := range layout.Sections {
		drawSection(pdf, &s, content)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func drawSection(pdf *fpdf.Fpdf, s *Section, content float64) {
	if s.Name == SectionHeader {
		pdf.SetFont(fontFamily, "B", 12)
		for _, line := range s.Lines {
			pdf.CellFormat(content, lineHeight, line, "", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
		return
	}

	if s.Title != "" {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.CellFormat(content, lineHeight+1, s.Title, "B", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	pdf.SetFont(fontFamily, "", 11)
	for _, line := range s.Lines {
		pdf.MultiCell(content, lineHeight, line, "", "C", false)
	}

	for _, f := range s.Fields {
		style := ""
		if s.Name == SectionTotals {
			style = "B"
		}
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, f.Label+":", "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, style, 11)
		pdf.MultiCell(content-labelWidth, lineHeight, f.Value, "", "L", false)
	}

	if s.Table != nil {
		drawTable(pdf, s.Table, content)
	}
	pdf.Ln(4)
}

func drawTable(pdf *fpdf.Fpdf, t *Table, content float64) {
	if len(t.Columns) == 0 {
		return
	}
	colWidth := content / float64(len(t.Columns))

	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range t.Columns {
		pdf.CellFormat(colWidth, lineHeight, c, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 11)
	if len(t.Rows) == 0 {
		pdf.CellFormat(content, lineHeight, "No entries", "1", 1, "C", false, 0, "")
		return
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			pdf.CellFormat(colWidth, lineHeight, cell, "1", 0, "L", false, 0, "")
			if i == len(t.Columns)-1 {
				break
			}
		}
		pdf.Ln(-1)
	}
}
