// Package config loads the business, client and invoice metadata that frame
// a generated invoice.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/angelofallars/hourbill/internal/invoice"
	"github.com/angelofallars/hourbill/internal/summarize"
	"github.com/angelofallars/hourbill/pkg/openai"
)

const (
	DefaultPath = "config.yaml"
	DefaultRate = 50.0
	envPrefix   = "HOURBILL"
)

type Config struct {
	Business invoice.Business
	Client   invoice.Client
	Invoice  invoice.Details

	// Rate is the price of one hour of work.
	Rate float64

	// Output is where the rendered invoice is written.
	Output string

	// Template optionally replaces the built-in invoice template.
	Template string

	Summarizer Summarizer
}

type Summarizer struct {
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	Concurrency int
}

// SummarizeConfig returns the settings for a summarize.Summarizer.
func (s Summarizer) SummarizeConfig() summarize.Config {
	return summarize.Config{Timeout: s.Timeout, Concurrency: s.Concurrency}
}

// ConfigError lists every problem found in a configuration file.
type ConfigError struct {
	Path     string
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid config %s: %s", e.Path, e.Problems[0])
	}
	return fmt.Sprintf("invalid config %s:\n  - %s", e.Path, strings.Join(e.Problems, "\n  - "))
}

// Load reads and validates the configuration file at path. Values can be
// overridden with HOURBILL_* environment variables, e.g. HOURBILL_RATE.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Path: path, Problems: []string{"file does not exist"}}
		}
		return nil, &ConfigError{Path: path, Problems: []string{err.Error()}}
	}

	return fromViper(path, v)
}

func fromViper(path string, v *viper.Viper) (*Config, error) {
	c := &checker{v: v}

	cfg := &Config{
		Business: invoice.Business{
			Name:    c.requiredString("business", "name"),
			Address: c.requiredString("business", "address"),
			Email:   c.requiredString("business", "email"),
		},
		Client: invoice.Client{
			Name:    c.requiredString("client", "name"),
			Address: c.requiredString("client", "address"),
		},
		Invoice: invoice.Details{
			Number:  c.requiredString("invoice", "number"),
			Date:    c.requiredDate("invoice", "date"),
			DueDate: c.requiredDate("invoice", "due_date"),
			Notes:   c.optionalString("invoice.notes", ""),
		},
		Rate:     c.optionalFloat("rate", DefaultRate),
		Output:   c.optionalString("output", ""),
		Template: c.optionalString("template", ""),
		Summarizer: Summarizer{
			Model:       c.optionalString("summarizer.model", openai.DefaultModel),
			BaseURL:     c.optionalString("summarizer.base_url", openai.DefaultBaseURL),
			Temperature: c.optionalFloat("summarizer.temperature", openai.DefaultTemperature),
			Timeout:     c.optionalDuration("summarizer.timeout", summarize.DefaultConfig().Timeout),
			Concurrency: c.optionalInt("summarizer.concurrency", summarize.DefaultConfig().Concurrency),
		},
	}

	if cfg.Rate < 0 {
		c.problem("rate: must not be negative")
	}
	if cfg.Summarizer.Concurrency < 1 {
		c.problem("summarizer.concurrency: must be at least 1")
	}
	if !cfg.Invoice.Date.IsZero() && !cfg.Invoice.DueDate.IsZero() && cfg.Invoice.DueDate.Before(cfg.Invoice.Date) {
		c.problem("invoice.due_date: must not be before invoice.date")
	}

	if len(c.problems) > 0 {
		return nil, &ConfigError{Path: path, Problems: c.problems}
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput(cfg.Invoice.Number)
	}

	return cfg, nil
}

// DefaultOutput is the output path used when none is configured.
func DefaultOutput(number string) string {
	return fmt.Sprintf("invoice_%s.html", number)
}

// checker collects every validation problem instead of stopping at the
// first one.
type checker struct {
	v        *viper.Viper
	problems []string
	sections map[string]bool
}

func (c *checker) problem(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

// section reports whether the named mapping is usable, recording a problem
// the first time it is not.
func (c *checker) section(name string) bool {
	if c.sections == nil {
		c.sections = map[string]bool{}
	}
	if ok, seen := c.sections[name]; seen {
		return ok
	}

	ok := true
	switch c.v.Get(name).(type) {
	case map[string]any:
	case nil:
		c.problem("%s: missing section", name)
		ok = false
	default:
		c.problem("%s: expected a mapping", name)
		ok = false
	}
	c.sections[name] = ok
	return ok
}

func (c *checker) requiredString(section, field string) string {
	if !c.section(section) {
		return ""
	}

	key := section + "." + field
	value := c.v.Get(key)
	if value == nil {
		c.problem("%s: missing required field", key)
		return ""
	}

	s, err := scalarString(value)
	if err != nil {
		c.problem("%s: expected text, got %T", key, value)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		c.problem("%s: must not be empty", key)
	}
	return s
}

func (c *checker) requiredDate(section, field string) time.Time {
	if !c.section(section) {
		return time.Time{}
	}

	key := section + "." + field
	switch value := c.v.Get(key).(type) {
	case nil:
		c.problem("%s: missing required field", key)
	case time.Time:
		return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	case string:
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
		if err != nil {
			c.problem("%s: expected a YYYY-MM-DD date, got %q", key, value)
			return time.Time{}
		}
		return t
	default:
		c.problem("%s: expected a YYYY-MM-DD date, got %T", key, value)
	}
	return time.Time{}
}

func (c *checker) optionalString(key, def string) string {
	value := c.v.Get(key)
	if value == nil {
		return def
	}
	s, err := scalarString(value)
	if err != nil {
		c.problem("%s: expected text, got %T", key, value)
		return def
	}
	return s
}

func (c *checker) optionalFloat(key string, def float64) float64 {
	value := c.v.Get(key)
	if value == nil {
		return def
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		c.problem("%s: expected a number, got %v", key, value)
		return def
	}
	return f
}

func (c *checker) optionalInt(key string, def int) int {
	value := c.v.Get(key)
	if value == nil {
		return def
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		c.problem("%s: expected a whole number, got %v", key, value)
		return def
	}
	return n
}

func (c *checker) optionalDuration(key string, def time.Duration) time.Duration {
	value := c.v.Get(key)
	if value == nil {
		return def
	}
	d, err := cast.ToDurationE(value)
	if err != nil {
		c.problem("%s: expected a duration such as 30s, got %v", key, value)
		return def
	}
	return d
}

func scalarString(value any) (string, error) {
	switch value.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("not a scalar: %T", value)
	}
	return cast.ToStringE(value)
}
