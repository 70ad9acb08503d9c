package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfRowHeight = 7.0
	pdfMargin    = 10.0
)

// PDF lays the table out on landscape A4 pages, repeating the header row on
// every page.
func PDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	usable := pageWidth - 2*pdfMargin
	unit := usable
	if total := t.totalWidth(); total > 0 {
		unit = usable / total
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range t.Headers {
			pdf.CellFormat(t.width(i)*unit, pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	if t.Title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Cell(0, 10, tr(t.Title))
		pdf.Ln(10)
	}
	if t.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, tr(t.Subtitle))
		pdf.Ln(10)
	}
	header()

	for _, values := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			header()
		}
		for i := range t.Headers {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			pdf.CellFormat(t.width(i)*unit, pdfRowHeight, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
