package timesheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

var csvDateLayouts = []string{
	time.DateOnly,
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	time.DateTime,
	time.RFC3339,
}

// OpenCSV reads a CSV export of the timesheet at path.
func OpenCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open timesheet: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads a CSV export of the timesheet, using the same layout and
// start row as the workbook.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for i := StartRow - 1; i < len(records); i++ {
		record := records[i]
		row := Row{
			Number:      i + 1,
			Hours:       fieldAt(record, 1),
			Description: fieldAt(record, 2),
		}

		if value := fieldAt(record, 0); value != nil {
			row.Date = value
			if date, ok := parseCSVDate(value.(string)); ok {
				row.Date = date
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func fieldAt(record []string, col int) any {
	if col >= len(record) || strings.TrimSpace(record[col]) == "" {
		return nil
	}
	return record[col]
}

func parseCSVDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
