package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/claude/setsheet/internal/flatten"
)

// SheetName is the single worksheet the XLSX output uses.
const SheetName = "workout_sets"

// WriteXLSX writes the table as a single-sheet XLSX workbook with a header
// row, same column order as the CSV output.
func WriteXLSX(w io.Writer, t flatten.Table, sheet string) error {
	f, err := buildWorkbook(t, sheet)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteXLSXFile writes the table to an XLSX file at path.
func WriteXLSXFile(path string, t flatten.Table, sheet string) error {
	f, err := buildWorkbook(t, sheet)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(t flatten.Table, sheet string) (*excelize.File, error) {
	if sheet == "" {
		sheet = SheetName
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cell address: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return f, nil
}

// cellValue converts a table cell into a type excelize stores natively.
// json.Number becomes a real number so spreadsheet formulas keep working;
// non-numeric literals fall back to text.
func cellValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
