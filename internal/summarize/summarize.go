// Package summarize condenses a week's task descriptions into a single
// invoice-ready sentence using a text generation service, falling back to a
// plain join of the tasks when the service cannot be used.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelofallars/hourbill/internal/weekly"
)

// Separator joins descriptions when no generated summary is available.
const Separator = "; "

const promptHeader = "Summarize these work tasks into one brief professional sentence for an invoice. " +
	"Keep mentions of the specifics. Avoid technical jargon and repetition:"

var (
	// ErrNoGenerator means the Summarizer runs fallback-only.
	ErrNoGenerator = errors.New("no text generator configured")
	// ErrEmptySummary is returned for a blank generated response.
	ErrEmptySummary = errors.New("generator returned an empty summary")
	// ErrNoDescriptions is returned when there is nothing to summarize.
	ErrNoDescriptions = errors.New("no descriptions to summarize")
)

// Generator produces text for a single prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config tunes generation calls.
type Config struct {
	// Timeout bounds each generation call. Zero means no extra bound.
	Timeout time.Duration

	// Concurrency is the number of weeks summarized at once.
	Concurrency int
}

// DefaultConfig allows 30 seconds per call and 4 calls at once.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		Concurrency: 4,
	}
}

// Result is the outcome of one summarization. Text is always usable; Err
// records why the fallback join was used instead of a generated summary.
type Result struct {
	Text string
	Err  error
}

// Fallback reports whether Text is the plain join of the descriptions.
func (r Result) Fallback() bool { return r.Err != nil }

// Summarizer turns week descriptions into invoice text.
type Summarizer struct {
	gen    Generator
	cfg    Config
	logger *slog.Logger
}

// New creates a Summarizer. A nil gen makes every summary a fallback join.
func New(gen Generator, cfg Config, logger *slog.Logger) *Summarizer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gen: gen, cfg: cfg, logger: logger}
}

// Prompt builds the generation prompt for descriptions.
func Prompt(descriptions []string) string {
	return promptHeader + "\n- " + strings.Join(descriptions, "\n- ")
}

// Fallback joins descriptions with Separator.
func Fallback(descriptions []string) string {
	return strings.Join(descriptions, Separator)
}

// Summarize condenses descriptions into one sentence. It never fails: any
// generation problem yields the fallback join with Err set.
func (s *Summarizer) Summarize(ctx context.Context, descriptions []string) Result {
	if len(descriptions) == 0 {
		return Result{Err: ErrNoDescriptions}
	}

	text, err := s.generate(ctx, descriptions)
	if err != nil {
		return Result{Text: Fallback(descriptions), Err: err}
	}
	return Result{Text: text}
}

func (s *Summarizer) generate(ctx context.Context, descriptions []string) (string, error) {
	if s.gen == nil {
		return "", ErrNoGenerator
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.gen.Complete(ctx, Prompt(descriptions))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}

// Weeks summarizes every week, running up to Config.Concurrency generation
// calls at once. The output keeps the order of weeks, and a failure in one
// week only affects that week's description.
func (s *Summarizer) Weeks(ctx context.Context, weeks []weekly.Week) []weekly.Summary {
	summaries := make([]weekly.Summary, len(weeks))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for i, week := range weeks {
		g.Go(func() error {
			result := s.Summarize(ctx, week.Descriptions)
			if result.Fallback() && !errors.Is(result.Err, ErrNoGenerator) {
				s.logger.Warn("summarization failed, using joined descriptions",
					"week", week.Key.String(), "err", result.Err)
			}

			summaries[i] = weekly.Summary{
				Key:         week.Key,
				Start:       week.Start,
				TotalHours:  week.TotalHours,
				Description: result.Text,
				Fallback:    result.Fallback(),
			}
			return nil
		})
	}

	_ = g.Wait()

	return summaries
}
