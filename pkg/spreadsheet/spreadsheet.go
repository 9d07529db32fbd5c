// Package spreadsheet reads and writes tables as xlsx workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"clipdata/pkg/tabular"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

var ErrSheetNotFound = errors.New("sheet not found")

// Sheets lists the sheet names of the workbook at path, in tab order.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadSheet reads a sheet as a table, the first one when sheet is empty.
// Cells are read as displayed and go through the same inference as
// delimited text.
func ReadSheet(path, sheet string, opts tabular.ReadOptions) (*tabular.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, tabular.ErrEmpty
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tabular.FromRecords(rows, opts)
}

// WriteSheet writes t to a new workbook at path with a bold header row.
// Dates and datetimes keep ISO number formats so they read back as such.
func WriteSheet(path, sheet string, t *tabular.Table) error {
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}
	dateTimeFmt := "yyyy-mm-dd hh:mm:ss"
	dateTimeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateTimeFmt})
	if err != nil {
		return err
	}

	for c, name := range t.Names() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, name); err != nil {
			return err
		}
	}
	if t.NumCols() > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}

	for c, col := range t.Columns {
		style := 0
		switch col.Type {
		case tabular.Date:
			style = dateStyle
		case tabular.DateTime:
			style = dateTimeStyle
		}
		for r, v := range col.Values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
			if style != 0 && v != nil {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet, cell string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		// Excel has no NaN or infinities.
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return f.SetCellStr(sheet, cell, tabular.FormatValue(val, '.'))
		}
		return f.SetCellFloat(sheet, cell, val, -1, 64)
	case time.Time:
		return f.SetCellValue(sheet, cell, val)
	case string:
		return f.SetCellStr(sheet, cell, val)
	default:
		return f.SetCellValue(sheet, cell, val)
	}
}
