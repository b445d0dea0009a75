package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/angelofallars/hourbill/internal/invoice"
	"github.com/angelofallars/hourbill/internal/summarize"
	"github.com/angelofallars/hourbill/internal/timesheet"
	"github.com/angelofallars/hourbill/internal/weekly"
)

type Invoice interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*invoice.Invoice, error)
}

type invoiceService struct {
	summarizer *summarize.Summarizer
	slog       *slog.Logger
}

func NewInvoice(summarizer *summarize.Summarizer, slog *slog.Logger) *invoiceService {
	return &invoiceService{
		summarizer: summarizer,
		slog:       slog,
	}
}

type CreateInvoiceRequest struct {
	Rows     []timesheet.Row
	Rate     float64
	Business invoice.Business
	Client   invoice.Client
	Details  invoice.Details
}

// Create runs rows through extraction, weekly aggregation, summarization and
// pricing. Any data error or a cancelled ctx aborts the run before an
// invoice exists.
func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*invoice.Invoice, error) {
	log := s.slog.With("run_id", uuid.NewString())

	extraction, err := timesheet.Extract(req.Rows)
	if err != nil {
		return nil, err
	}
	for _, d := range extraction.DanglingDates {
		log.Warn("date has no time entries", "date", d.Format("2006-01-02"))
	}

	weeks := weekly.Aggregate(extraction.Entries)
	log.Info("aggregated timesheet",
		"rows", len(req.Rows),
		"entries", len(extraction.Entries),
		"weeks", len(weeks),
	)

	summaries := s.summarizer.Weeks(ctx, weeks)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summarize weeks: %w", err)
	}
	fallbacks := 0
	for _, summary := range summaries {
		if summary.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		log.Info("used joined descriptions", "weeks", fallbacks)
	}

	inv := &invoice.Invoice{
		Business: req.Business,
		Client:   req.Client,
		Details:  req.Details,
		Items:    invoice.NewLineItems(summaries, req.Rate),
	}

	if billed, worked := inv.TotalHours(), extraction.TotalHours(); !sameHours(billed, worked) {
		return nil, fmt.Errorf("billed %v hours but timesheet has %v", billed, worked)
	}

	log.Info("created invoice", "items", len(inv.Items), "total", inv.Total())

	return inv, nil
}

func sameHours(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Factory builds an Invoice service that summarizes with apiKey. An empty
// key selects the default credentials.
type Factory func(apiKey string) Invoice
