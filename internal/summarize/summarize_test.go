package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelofallars/hourbill/internal/weekly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarize_UsesGeneratedText(t *testing.T) {
	var prompt string
	gen := generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  Designed and implemented the billing page.  ", nil
	})

	result := New(gen, DefaultConfig(), discardLogger()).Summarize(context.Background(), []string{"design", "coding"})

	require.NoError(t, result.Err)
	assert.False(t, result.Fallback())
	assert.Equal(t, "Designed and implemented the billing page.", result.Text)
	assert.True(t, strings.HasSuffix(prompt, ":\n- design\n- coding"))
	assert.Contains(t, prompt, "one brief professional sentence")
}

func TestSummarize_FallsBackOnError(t *testing.T) {
	boom := errors.New("connection refused")
	gen := generatorFunc(func(context.Context, string) (string, error) { return "", boom })

	result := New(gen, DefaultConfig(), discardLogger()).Summarize(context.Background(), []string{"design", "coding"})

	assert.True(t, result.Fallback())
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, "design; coding", result.Text)
}

func TestSummarize_FallsBackOnEmptyResponse(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) { return " \n", nil })

	result := New(gen, DefaultConfig(), discardLogger()).Summarize(context.Background(), []string{"design"})

	assert.ErrorIs(t, result.Err, ErrEmptySummary)
	assert.Equal(t, "design", result.Text)
}

func TestSummarize_FallsBackWithoutGenerator(t *testing.T) {
	result := New(nil, DefaultConfig(), nil).Summarize(context.Background(), []string{"a", "b", "c"})

	assert.ErrorIs(t, result.Err, ErrNoGenerator)
	assert.Equal(t, "a; b; c", result.Text)
}

func TestSummarize_TimeoutBoundsCall(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	cfg := Config{Timeout: 20 * time.Millisecond, Concurrency: 1}

	result := New(gen, cfg, discardLogger()).Summarize(context.Background(), []string{"slow"})

	assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
	assert.Equal(t, "slow", result.Text)
}

func TestSummarize_NoDescriptions(t *testing.T) {
	result := New(nil, DefaultConfig(), nil).Summarize(context.Background(), nil)
	assert.ErrorIs(t, result.Err, ErrNoDescriptions)
}

func TestWeeks_IsolatesFailuresAndKeepsOrder(t *testing.T) {
	weeks := make([]weekly.Week, 8)
	for i := range weeks {
		weeks[i] = weekly.Week{
			Key:          weekly.Key{Year: 2024, Week: i + 1},
			TotalHours:   float64(i),
			Descriptions: []string{fmt.Sprintf("task %d", i), "review"},
		}
	}

	gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "task 3") {
			return "", errors.New("boom")
		}
		// Later weeks answer first.
		for i := 0; i < len(weeks); i++ {
			if strings.Contains(prompt, fmt.Sprintf("task %d\n", i)) {
				time.Sleep(time.Duration(len(weeks)-i) * time.Millisecond)
				return fmt.Sprintf("summary %d", i), nil
			}
		}
		return "", errors.New("unexpected prompt")
	})

	summaries := New(gen, Config{Concurrency: 4}, discardLogger()).Weeks(context.Background(), weeks)

	require.Len(t, summaries, len(weeks))
	for i, s := range summaries {
		assert.Equal(t, weeks[i].Key, s.Key)
		assert.Equal(t, weeks[i].TotalHours, s.TotalHours)
		if i == 3 {
			assert.True(t, s.Fallback)
			assert.Equal(t, "task 3; review", s.Description)
			continue
		}
		assert.False(t, s.Fallback)
		assert.Equal(t, fmt.Sprintf("summary %d", i), s.Description)
	}
}

func TestWeeks_RespectsConcurrencyLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	var calls atomic.Int32
	gen := generatorFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		mu.Lock()
		current++
		peak = max(peak, current)
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return "ok", nil
	})

	weeks := make([]weekly.Week, 10)
	for i := range weeks {
		weeks[i] = weekly.Week{Key: weekly.Key{Year: 2024, Week: i + 1}, Descriptions: []string{"x"}}
	}

	New(gen, Config{Concurrency: 2}, discardLogger()).Weeks(context.Background(), weeks)

	assert.Equal(t, int32(10), calls.Load())
	assert.LessOrEqual(t, peak, 2)
}
