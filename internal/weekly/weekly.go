// Package weekly groups time entries into ISO 8601 calendar weeks.
package weekly

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/angelofallars/hourbill/internal/timesheet"
)

// Key identifies an ISO week. Weeks start on Monday and week 1 is the week
// containing the year's first Thursday.
type Key struct {
	Year int
	Week int
}

func (k Key) String() string { return fmt.Sprintf("%d-W%02d", k.Year, k.Week) }

// Compare orders keys by year, then week.
func (k Key) Compare(other Key) int {
	if c := cmp.Compare(k.Year, other.Year); c != 0 {
		return c
	}
	return cmp.Compare(k.Week, other.Week)
}

// KeyOf returns the ISO week containing date.
func KeyOf(date time.Time) Key {
	year, week := date.ISOWeek()
	return Key{Year: year, Week: week}
}

// StartOf returns the Monday of the ISO week containing date.
func StartOf(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Week is the aggregated work of one ISO week, before summarization.
type Week struct {
	Key          Key
	Start        time.Time
	TotalHours   float64
	Descriptions []string
}

// Summary is a week whose descriptions were condensed into one sentence.
type Summary struct {
	Key         Key
	Start       time.Time
	TotalHours  float64
	Description string

	// Fallback is set when the description is the plain join of the
	// week's tasks rather than a generated summary.
	Fallback bool
}

// Aggregate groups entries by ISO week, sorted by ascending key.
func Aggregate(entries []timesheet.Entry) []Week {
	groups := map[Key]*Week{}
	var order []Key

	for _, entry := range entries {
		key := KeyOf(entry.Date)
		week, ok := groups[key]
		if !ok {
			week = &Week{Key: key, Start: StartOf(entry.Date)}
			groups[key] = week
			order = append(order, key)
		}
		week.TotalHours += entry.Hours
		week.Descriptions = append(week.Descriptions, entry.Description)
	}

	slices.SortFunc(order, Key.Compare)

	weeks := make([]Week, 0, len(order))
	for _, key := range order {
		week := groups[key]
		week.Descriptions = Dedup(week.Descriptions)
		weeks = append(weeks, *week)
	}

	return weeks
}

// Dedup removes exact duplicates, keeping the first occurrence of each.
func Dedup(descriptions []string) []string {
	seen := make(map[string]struct{}, len(descriptions))
	unique := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}

// TotalHours sums the hours of every week.
func TotalHours(weeks []Week) float64 {
	var total float64
	for _, w := range weeks {
		total += w.TotalHours
	}
	return total
}
