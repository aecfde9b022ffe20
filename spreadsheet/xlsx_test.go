package spreadsheet

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.xlsx")

	src := NewSheet()
	cells := map[string]string{
		"A1": "10",
		"A2": "2.5",
		"A3": "=A1+A2",
		"B1": "hello",
		"B2": `=B1+" world"`,
	}
	for cell, contents := range cells {
		require.NoError(t, src.SetCell(mustAddr(t, cell), contents), cell)
	}

	require.NoError(t, ExportXLSX(src, path, ""))

	loaded, err := ImportXLSX(path, "")
	require.NoError(t, err)
	assert.True(t, loaded.GetValue(mustAddr(t, "A3")).Equal(Number(12.5)))
	assert.True(t, loaded.GetValue(mustAddr(t, "B2")).Equal(Text("hello world")))
	assert.True(t, loaded.GetValue(mustAddr(t, "A1")).Equal(Number(10)))
}

func TestImportWorkbookLiteralsAndFormulas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", 4))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "note"))
	require.NoError(t, f.SetCellFormula("Sheet1", "A2", "A1*3"))

	s, err := ImportWorkbook(f, "")
	require.NoError(t, err)
	assert.True(t, s.GetValue(mustAddr(t, "A1")).Equal(Number(4)))
	assert.True(t, s.GetValue(mustAddr(t, "B1")).Equal(Text("note")))
	assert.True(t, s.GetValue(mustAddr(t, "A2")).Equal(Number(12)))
}

func TestImportWorkbookUnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := ImportWorkbook(f, "Nope")
	assert.True(t, errors.Is(err, ErrWorksheetNotFound))
}

func TestExportNamedWorksheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.xlsx")

	src := NewSheet()
	require.NoError(t, src.SetCell(mustAddr(t, "A1"), "7"))
	require.NoError(t, ExportXLSX(src, path, "Data"))

	loaded, err := ImportXLSX(path, "Data")
	require.NoError(t, err)
	assert.True(t, loaded.GetValue(mustAddr(t, "A1")).Equal(Number(7)))
}
