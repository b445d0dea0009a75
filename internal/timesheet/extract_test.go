package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtract_DatePropagatesToFollowingRows(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Hours: "3", Description: "design"},
		{Number: 7, Hours: 2.0, Description: "  design "},
		{Number: 8},
		{Number: 9, Date: date(2024, 3, 6)},
		{Number: 10, Hours: "4.5", Description: "coding"},
	}

	got, err := Extract(rows)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Date: date(2024, 3, 4), Hours: 3, Description: "design"},
		{Date: date(2024, 3, 4), Hours: 2, Description: "design"},
		{Date: date(2024, 3, 6), Hours: 4.5, Description: "coding"},
	}, got.Entries)
	assert.Empty(t, got.DanglingDates)
	assert.InDelta(t, 9.5, got.TotalHours(), 1e-9)
}

func TestExtract_TruncatesTimeOfDay(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: time.Date(2024, 3, 4, 17, 30, 0, 0, time.FixedZone("X", 3600))},
		{Number: 6, Hours: "1", Description: "review"},
	}

	got, err := Extract(rows)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, date(2024, 3, 4), got.Entries[0].Date)
}

func TestExtract_DateRowEmitsNothing(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4), Hours: "8", Description: "ignored"},
		{Number: 6, Hours: "1", Description: "kept"},
	}

	got, err := Extract(rows)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "kept", got.Entries[0].Description)
}

func TestExtract_SkipsIncompleteRows(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Hours: "2"},
		{Number: 7, Description: "notes only"},
		{Number: 8, Hours: "1", Description: "   "},
		{Number: 9, Hours: " ", Description: "blank hours"},
		{Number: 10, Hours: "1", Description: "real"},
	}

	got, err := Extract(rows)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "real", got.Entries[0].Description)
}

func TestExtract_ReportsDanglingDates(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Date: date(2024, 3, 5)},
		{Number: 7, Hours: "1", Description: "work"},
		{Number: 8, Date: date(2024, 3, 6)},
	}

	got, err := Extract(rows)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)
	assert.Equal(t, []time.Time{date(2024, 3, 4), date(2024, 3, 6)}, got.DanglingDates)
}

func TestExtract_NonNumericHoursFails(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Hours: "1", Description: "ok"},
		{Number: 7, Hours: "three", Description: "broken"},
	}

	_, err := Extract(rows)

	var dataErr *DataFormatError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, 7, dataErr.Row)
	assert.Equal(t, "hours", dataErr.Column)
	assert.Contains(t, err.Error(), "three")
}

func TestExtract_NegativeHoursFails(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Hours: "-2", Description: "refund"},
	}

	_, err := Extract(rows)

	var dataErr *DataFormatError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "hours cannot be negative", dataErr.Reason)
}

func TestExtract_DataBeforeAnyDateFails(t *testing.T) {
	rows := []Row{
		{Number: 5, Hours: "2", Description: "orphan"},
		{Number: 6, Date: date(2024, 3, 4)},
	}

	_, err := Extract(rows)

	var dataErr *DataFormatError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, 5, dataErr.Row)
	assert.Equal(t, "date", dataErr.Column)
}

func TestExtract_NonDateTextInDateColumnDoesNotMoveCursor(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Date: "continued", Hours: "2", Description: "work"},
	}

	got, err := Extract(rows)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, date(2024, 3, 4), got.Entries[0].Date)
}

func TestExtract_UnparsedDateTextFails(t *testing.T) {
	rows := []Row{
		{Number: 5, Date: date(2024, 3, 4)},
		{Number: 6, Hours: "3", Description: "design"},
		{Number: 7, Date: "2024.13.45"},
		{Number: 8, Hours: "5", Description: "coding"},
	}

	_, err := Extract(rows)

	var dataErr *DataFormatError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, 7, dataErr.Row)
	assert.Equal(t, "date", dataErr.Column)
	assert.Equal(t, "2024.13.45", dataErr.Value)
}

func TestExtract_Empty(t *testing.T) {
	got, err := Extract(nil)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Zero(t, got.TotalHours())
}
