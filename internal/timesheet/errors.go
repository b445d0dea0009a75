package timesheet

import (
	"fmt"
	"strings"
)

// SourceNotFoundError reports a timesheet file that does not exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("timesheet file %q does not exist", e.Path)
}

// SheetNotFoundError reports a workbook without the requested sheet.
type SheetNotFoundError struct {
	Path      string
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	msg := fmt.Sprintf("sheet %q not found in %s", e.Sheet, e.Path)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// DataFormatError reports a row whose cells cannot form a valid entry.
// Any DataFormatError aborts the whole run since totals would be unreliable.
type DataFormatError struct {
	Row    int
	Column string
	Value  any
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("row %d, %s column: %s", e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d, %s column: %s (got %v)", e.Row, e.Column, e.Reason, e.Value)
}
