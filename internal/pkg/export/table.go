// Package export renders tabular reports as XLSX and PDF documents.
package export

// Table is a titled grid of already formatted cells.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
	// Widths are relative column widths. Missing entries default to 1.
	Widths []float64
}

func (t Table) width(i int) float64 {
	if i < len(t.Widths) && t.Widths[i] > 0 {
		return t.Widths[i]
	}
	return 1
}

func (t Table) totalWidth() float64 {
	total := 0.0
	for i := range t.Headers {
		total += t.width(i)
	}
	return total
}
