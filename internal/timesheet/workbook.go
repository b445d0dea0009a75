package timesheet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Open reads the timesheet rows at path. CSV files are read as a single
// sheet and the sheet name is ignored; anything else is opened as a workbook.
func Open(path, sheet string) ([]Row, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return OpenCSV(path)
	}
	return OpenWorkbook(path, sheet)
}

// OpenWorkbook reads the named sheet of the xlsx workbook at path.
func OpenWorkbook(path, sheet string) ([]Row, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat timesheet: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readSheet(f, path, sheet)
}

// ReadWorkbook reads the named sheet of an xlsx workbook streamed from r.
func ReadWorkbook(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, "uploaded workbook", sheet)
}

func readSheet(f *excelize.File, source, sheet string) ([]Row, error) {
	sheets := f.GetSheetList()
	if !slices.Contains(sheets, sheet) {
		return nil, &SheetNotFoundError{Path: source, Sheet: sheet, Available: sheets}
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	dates := &dateDetector{file: f, sheet: sheet, styles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dates.date1904 = *props.Date1904
	}

	rows := make([]Row, 0, len(raw))
	for i := StartRow - 1; i < len(raw); i++ {
		number := i + 1
		cells := raw[i]

		row := Row{
			Number:      number,
			Hours:       cellAt(cells, 1),
			Description: cellAt(cells, 2),
		}

		if value := cellAt(cells, 0); value != nil {
			date, ok, err := dates.parse(number, value.(string))
			if err != nil {
				return nil, err
			}
			if ok {
				row.Date = date
			} else {
				row.Date = value
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func cellAt(cells []string, col int) any {
	if col >= len(cells) || strings.TrimSpace(cells[col]) == "" {
		return nil
	}
	return cells[col]
}

// dateDetector decides whether a raw cell in the date column is a date.
// Workbooks store dates as serial numbers, so the cell's number format is
// what tells a date apart from a plain number.
type dateDetector struct {
	file     *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func (d *dateDetector) parse(row int, raw string) (time.Time, bool, error) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return time.Time{}, false, err
	}

	cellType, err := d.file.GetCellType(d.sheet, cell)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read cell %s: %w", cell, err)
	}
	if cellType == excelize.CellTypeDate {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, false, nil
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false, nil
	}

	isDate, err := d.hasDateFormat(cell)
	if err != nil || !isDate {
		return time.Time{}, false, err
	}

	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (d *dateDetector) hasDateFormat(cell string) (bool, error) {
	styleID, err := d.file.GetCellStyle(d.sheet, cell)
	if err != nil {
		return false, fmt.Errorf("read style of %s: %w", cell, err)
	}

	if isDate, ok := d.styles[styleID]; ok {
		return isDate, nil
	}

	style, err := d.file.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("read style %d: %w", styleID, err)
	}

	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.styles[styleID] = isDate
	return isDate, nil
}

func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateFormatCode(code string) bool {
	code = strings.ToLower(formatLiterals.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "ymdhs")
}
