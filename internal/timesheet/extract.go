package timesheet

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// dateLike matches numeric dates such as 3/11/2024 or 2024-03-11.
var dateLike = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b`)

// Extract walks rows in order and rebuilds dated entries.
//
// Date cells only appear on the first row of a run: every following data row
// inherits that date until the next date cell. A row carrying a date emits no
// entry itself. Rows missing hours or a description are skipped. Date-like
// text that the source could not parse is a DataFormatError.
func Extract(rows []Row) (*Extraction, error) {
	result := &Extraction{}

	var (
		cursor     time.Time
		hasCursor  bool
		cursorUsed bool
	)

	for _, row := range rows {
		if date, ok := row.Date.(time.Time); ok {
			if hasCursor && !cursorUsed {
				result.DanglingDates = append(result.DanglingDates, cursor)
			}
			cursor = calendarDate(date)
			hasCursor = true
			cursorUsed = false
			continue
		}
		if text, ok := row.Date.(string); ok && dateLike.MatchString(strings.TrimSpace(text)) {
			return nil, &DataFormatError{
				Row:    row.Number,
				Column: "date",
				Value:  row.Date,
				Reason: "unrecognised date",
			}
		}

		description, hasDescription := descriptionText(row.Description)
		if isAbsent(row.Hours) || !hasDescription {
			continue
		}

		if !hasCursor {
			return nil, &DataFormatError{
				Row:    row.Number,
				Column: "date",
				Value:  row.Date,
				Reason: "hours recorded before any date cell",
			}
		}

		hours, err := parseHours(row)
		if err != nil {
			return nil, err
		}

		result.Entries = append(result.Entries, Entry{
			Date:        cursor,
			Hours:       hours,
			Description: description,
		})
		cursorUsed = true
	}

	if hasCursor && !cursorUsed {
		result.DanglingDates = append(result.DanglingDates, cursor)
	}

	return result, nil
}

func parseHours(row Row) (float64, error) {
	value := row.Hours
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}

	if _, ok := value.(bool); ok {
		return 0, &DataFormatError{Row: row.Number, Column: "hours", Value: row.Hours, Reason: "hours must be a number"}
	}

	hours, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, &DataFormatError{Row: row.Number, Column: "hours", Value: row.Hours, Reason: "hours must be a number"}
	}
	if hours < 0 {
		return 0, &DataFormatError{Row: row.Number, Column: "hours", Value: row.Hours, Reason: "hours cannot be negative"}
	}

	return hours, nil
}

func descriptionText(value any) (string, bool) {
	if isAbsent(value) {
		return "", false
	}
	text := strings.TrimSpace(cast.ToString(value))
	return text, text != ""
}

func isAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
