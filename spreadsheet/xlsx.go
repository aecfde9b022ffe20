package spreadsheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrWorksheetNotFound indicates the requested worksheet does not exist
// in the workbook.
var ErrWorksheetNotFound = errors.New("worksheet not found")

// ImportXLSX loads one worksheet of an xlsx workbook into a fresh sheet.
// Formula cells enter through the expression parser; a formula the
// grammar cannot express falls back to the cell's display text. An empty
// sheetName selects the workbook's first worksheet.
func ImportXLSX(path, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewSheetError(ErrCodeWorkbook, err.Error())
	}
	defer f.Close()
	return ImportWorkbook(f, sheetName)
}

// ImportWorkbook is ImportXLSX over an already opened workbook.
func ImportWorkbook(f *excelize.File, sheetName string) (*Sheet, error) {
	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, ErrWorksheetNotFound
		}
		sheetName = list[0]
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWorksheetNotFound, sheetName)
	}

	s := NewSheet()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, NewSheetError(ErrCodeWorkbook, err.Error())
	}
	for rowIdx, row := range rows {
		for colIdx, display := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, NewSheetError(ErrCodeWorkbook, err.Error())
			}
			addr := Address{Col: colIdx + 1, Row: rowIdx + 1}

			formula, err := f.GetCellFormula(sheetName, cellName)
			if err == nil && formula != "" {
				if s.SetCell(addr, "="+formula) == nil {
					continue
				}
				// formula outside the engine grammar (functions, ranges):
				// keep the computed display text instead
			}
			if display == "" {
				continue
			}
			if err := s.SetCell(addr, display); err != nil {
				return nil, NewSheetError(ErrCodeWorkbook,
					fmt.Sprintf("cell %s: %v", addr, err))
			}
		}
	}
	return s, nil
}

// ExportXLSX writes the sheet to a new xlsx workbook at path. Formula
// cells export as formulas, literal cells as their evaluated value.
// Cells outside the xlsx coordinate space are skipped.
func ExportXLSX(s *Sheet, path, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()
	if sheetName == "" {
		sheetName = "Sheet1"
	} else if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return NewSheetError(ErrCodeWorkbook, err.Error())
	}

	for _, addr := range s.Addresses() {
		text, ok := s.CellText(addr)
		if !ok {
			continue
		}
		cellName, err := excelize.CoordinatesToCellName(addr.Col, addr.Row)
		if err != nil {
			continue
		}
		if strings.HasPrefix(text, "=") {
			err = f.SetCellFormula(sheetName, cellName, text[1:])
		} else {
			switch v := s.GetValue(addr); v.Kind() {
			case KindNumber:
				num, _ := v.Number()
				err = f.SetCellValue(sheetName, cellName, num)
			default:
				str, _ := v.Text()
				err = f.SetCellValue(sheetName, cellName, str)
			}
		}
		if err != nil {
			return NewSheetError(ErrCodeWorkbook, err.Error())
		}
	}
	if err := f.SaveAs(path); err != nil {
		return NewSheetError(ErrCodeWorkbook, err.Error())
	}
	return nil
}
