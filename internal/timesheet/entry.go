// Package timesheet reads the fixed three-column timesheet layout
// (date, hours, description) and reconstructs dated time entries from it.
package timesheet

import "time"

// StartRow is the 1-based row where timesheet data begins. Rows above it
// hold the sheet's title and column headers.
const StartRow = 5

// Entry is a single block of billable work on a calendar date.
type Entry struct {
	Date        time.Time
	Hours       float64
	Description string
}

// Row is one row of the timesheet layout. Absent cells are nil.
//
// Date holds a time.Time when the source recognised a date cell, otherwise
// whatever raw value was in the column.
type Row struct {
	Number      int
	Date        any
	Hours       any
	Description any
}

// Extraction is the result of scanning a run of rows.
type Extraction struct {
	Entries []Entry

	// DanglingDates are date cells that were not followed by any data row
	// before the next date cell or the end of the sheet.
	DanglingDates []time.Time
}

// TotalHours sums the hours of every extracted entry.
func (e *Extraction) TotalHours() float64 {
	var total float64
	for _, entry := range e.Entries {
		total += entry.Hours
	}
	return total
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
