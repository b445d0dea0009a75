package timesheet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, cells map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue(sheet, "A1", "Timesheet"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "Date"))
	require.NoError(t, f.SetCellValue(sheet, "B4", "Hours"))
	require.NoError(t, f.SetCellValue(sheet, "C4", "Description"))
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}

	path := filepath.Join(t.TempDir(), "hours.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpenWorkbook_ReadsRowsFromStartRow(t *testing.T) {
	path := writeWorkbook(t, "March", map[string]any{
		"A5": time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		"B6": 3,
		"C6": "design",
		"B7": 2.5,
		"C7": "coding",
	})

	rows, err := OpenWorkbook(path, "March")
	require.NoError(t, err)

	got, err := Extract(rows)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Date: date(2024, 3, 4), Hours: 3, Description: "design"},
		{Date: date(2024, 3, 4), Hours: 2.5, Description: "coding"},
	}, got.Entries)
}

func TestOpenWorkbook_PlainNumberInDateColumnIsNotADate(t *testing.T) {
	path := writeWorkbook(t, "March", map[string]any{
		"A5": time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		"A6": 7,
		"B6": 1,
		"C6": "numbered task",
	})

	rows, err := OpenWorkbook(path, "March")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, isDate := rows[1].Date.(time.Time)
	assert.False(t, isDate)
}

func TestOpenWorkbook_MissingFile(t *testing.T) {
	_, err := OpenWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), "March")

	var notFound *SourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "nope.xlsx")
}

func TestOpenWorkbook_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "March", nil)

	_, err := OpenWorkbook(path, "April")

	var notFound *SheetNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "April", notFound.Sheet)
	assert.Contains(t, notFound.Available, "March")
}

func TestReadWorkbook_FromReader(t *testing.T) {
	path := writeWorkbook(t, "March", map[string]any{
		"A5": time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		"B6": 5,
		"C6": "coding",
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := ReadWorkbook(bytes.NewReader(data), "March")
	require.NoError(t, err)

	got, err := Extract(rows)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, date(2024, 3, 11), got.Entries[0].Date)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("yyyy-mm-dd"))
	assert.True(t, isDateFormatCode(`[$-409]d-mmm;@`))
	assert.False(t, isDateFormatCode("0.00"))
	assert.False(t, isDateFormatCode(`#,##0 "days"`))
}
