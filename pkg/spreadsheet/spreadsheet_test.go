package spreadsheet

import (
	"path/filepath"
	"testing"
	"time"

	"clipdata/pkg/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample(t *testing.T) *tabular.Table {
	t.Helper()
	tbl, err := tabular.FromColumns(
		[]string{"city", "pop", "ratio", "capital", "updated"},
		[][]any{
			{"Portland", "Salem", "Seattle"},
			{645291, 175535, nil},
			{0.5, 1.25, 3.75},
			{false, true, false},
			{
				time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC),
			},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestWriteAndReadSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.xlsx")
	orig := sample(t)

	require.NoError(t, WriteSheet(path, "", orig))

	got, err := ReadSheet(path, "", tabular.ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, orig.Names(), got.Names())
	for i, col := range orig.Columns {
		assert.Equal(t, col.Type, got.Columns[i].Type, "column %s", col.Name)
	}
	assert.Equal(t, orig.Rows(), got.Rows())
}

func TestWriteSheet_NamedSheetAndBoldHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.xlsx")
	require.NoError(t, WriteSheet(path, "cities", sample(t)))

	sheets, err := Sheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cities"}, sheets)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle("cities", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	v, err := f.GetCellValue("cities", "B2")
	require.NoError(t, err)
	assert.Equal(t, "645291", v)
}

func TestReadSheet_PicksSheetAndOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "ignored"))
	require.NoError(t, f.SetCellValue("data", "A1", "exported on monday"))
	require.NoError(t, f.SetCellValue("data", "A2", "x"))
	require.NoError(t, f.SetCellValue("data", "B2", "y"))
	require.NoError(t, f.SetCellValue("data", "A3", 1))
	require.NoError(t, f.SetCellValue("data", "B3", "NA"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	sheets, err := Sheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "data"}, sheets)

	tbl, err := ReadSheet(path, "data", tabular.ReadOptions{SkipRows: 1, MissingStrings: []string{"NA"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Names())
	assert.Equal(t, [][]any{{int64(1), nil}}, tbl.Rows())

	_, err = ReadSheet(path, "nope", tabular.ReadOptions{})
	assert.Error(t, err)
}

func TestReadSheet_Errors(t *testing.T) {
	_, err := ReadSheet(filepath.Join(t.TempDir(), "missing.xlsx"), "", tabular.ReadOptions{})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = ReadSheet(path, "", tabular.ReadOptions{})
	assert.ErrorIs(t, err, tabular.ErrEmpty)
}

func TestReadSheet_UnknownSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	tbl, err := tabular.FromColumns([]string{"a"}, [][]any{{1}})
	require.NoError(t, err)
	require.NoError(t, WriteSheet(path, "Data", tbl))

	_, err = ReadSheet(path, "Summary", tabular.ReadOptions{})
	assert.ErrorIs(t, err, ErrSheetNotFound)

	sheets, err := Sheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data"}, sheets)
}
