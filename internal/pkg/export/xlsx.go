package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName     = "Report"
	xlsxUnitWidth = 16.0
)

// XLSX writes the table to a single sheet workbook: title, subtitle, a bold
// header row and then the rows.
func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 1
	if t.Title != "" {
		if err := setRow(f, row, []string{t.Title}); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, "A1", "A1", title); err != nil {
			return nil, err
		}
		row++
	}
	if t.Subtitle != "" {
		if err := setRow(f, row, []string{t.Subtitle}); err != nil {
			return nil, err
		}
		row++
	}
	if row > 1 {
		row++
	}

	headerRow := row
	if err := setRow(f, row, t.Headers); err != nil {
		return nil, err
	}
	if len(t.Headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), headerRow)
		if err := f.SetCellStyle(sheetName, first, last, bold); err != nil {
			return nil, err
		}
	}
	row++

	for _, values := range t.Rows {
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	for i := range t.Headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, t.width(i)*xlsxUnitWidth); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
