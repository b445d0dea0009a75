package invoice

import (
	"time"

	"github.com/angelofallars/hourbill/internal/weekly"
)

type Invoice struct {
	Business Business
	Client   Client
	Details  Details
	Items    []LineItem
}

type Business struct {
	Name    string
	Address string
	Email   string
}

type Client struct {
	Name    string
	Address string
}

type Details struct {
	Number  string
	Date    time.Time
	DueDate time.Time
	Notes   string
}

// LineItem bills one week of work.
type LineItem struct {
	Period      string
	Description string
	Quantity    float64
	Rate        float64
	Amount      float64
}

// PeriodLayout formats each end of a billing period label.
const PeriodLayout = "01-02"

// PeriodSeparator sits between the two ends of a billing period label.
const PeriodSeparator = "–"

// PeriodLabel describes the seven days from start through start+6.
func PeriodLabel(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	return start.Format(PeriodLayout) + PeriodSeparator + end.Format(PeriodLayout)
}

// NewLineItem bills a summarized week at rate per hour.
func NewLineItem(summary weekly.Summary, rate float64) LineItem {
	return LineItem{
		Period:      PeriodLabel(summary.Start),
		Description: summary.Description,
		Quantity:    summary.TotalHours,
		Rate:        rate,
		Amount:      summary.TotalHours * rate,
	}
}

// NewLineItems bills every summary in order.
func NewLineItems(summaries []weekly.Summary, rate float64) []LineItem {
	items := make([]LineItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, NewLineItem(s, rate))
	}
	return items
}

// Subtotal sums the amount of every item. It is computed on each call so it
// always matches the current items.
func (inv *Invoice) Subtotal() float64 {
	var subtotal float64
	for _, item := range inv.Items {
		subtotal += item.Amount
	}
	return subtotal
}

// Total is the amount due. No taxes or discounts apply.
func (inv *Invoice) Total() float64 {
	return inv.Subtotal()
}

// TotalHours sums the quantity of every item.
func (inv *Invoice) TotalHours() float64 {
	var hours float64
	for _, item := range inv.Items {
		hours += item.Quantity
	}
	return hours
}
