package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
business:
  name: Jane Doe Consulting
  address: 1 Main St, Springfield
  email: jane@example.com
client:
  name: Acme Corp
  address: 99 Industrial Way
invoice:
  number: "2024-007"
  date: "2024-03-18"
  due_date: "2024-04-17"
  notes: Thank you for your business.
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe Consulting", cfg.Business.Name)
	assert.Equal(t, "jane@example.com", cfg.Business.Email)
	assert.Equal(t, "Acme Corp", cfg.Client.Name)
	assert.Equal(t, "2024-007", cfg.Invoice.Number)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), cfg.Invoice.Date)
	assert.Equal(t, time.Date(2024, 4, 17, 0, 0, 0, 0, time.UTC), cfg.Invoice.DueDate)
	assert.Equal(t, "Thank you for your business.", cfg.Invoice.Notes)

	assert.Equal(t, DefaultRate, cfg.Rate)
	assert.Equal(t, "invoice_2024-007.html", cfg.Output)
	assert.Equal(t, 30*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, 4, cfg.Summarizer.Concurrency)
	assert.Equal(t, "gpt-4-turbo", cfg.Summarizer.Model)
}

func TestLoad_Optionals(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML+`
rate: 85.5
output: out/march.html
summarizer:
  model: gpt-4o-mini
  timeout: 5s
  concurrency: 2
`))
	require.NoError(t, err)

	assert.Equal(t, 85.5, cfg.Rate)
	assert.Equal(t, "out/march.html", cfg.Output)
	assert.Equal(t, "gpt-4o-mini", cfg.Summarizer.Model)
	assert.Equal(t, 5*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, 2, cfg.Summarizer.SummarizeConfig().Concurrency)
}

func TestLoad_NumericInvoiceNumber(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
business: {name: B, address: A, email: e@x.io}
client: {name: C, address: D}
invoice: {number: 42, date: "2024-03-01", due_date: "2024-03-31"}
`))
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Invoice.Number)
	assert.Equal(t, "invoice_42.html", cfg.Output)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	_, err := Load(writeConfig(t, `
business:
  name: Jane
client: Acme
invoice:
  number: "1"
  date: March 1st
  due_date: "2024-03-31"
rate: lots
`))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ElementsMatch(t, []string{
		"business.address: missing required field",
		"business.email: missing required field",
		"client: expected a mapping",
		`invoice.date: expected a YYYY-MM-DD date, got "March 1st"`,
		"rate: expected a number, got lots",
	}, cfgErr.Problems)
	assert.Contains(t, err.Error(), "client: expected a mapping")
}

func TestLoad_MissingSections(t *testing.T) {
	_, err := Load(writeConfig(t, "rate: 10\n"))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{
		"business: missing section",
		"client: missing section",
		"invoice: missing section",
	}, cfgErr.Problems)
}

func TestLoad_DueDateBeforeDate(t *testing.T) {
	_, err := Load(writeConfig(t, `
business: {name: B, address: A, email: e@x.io}
client: {name: C, address: D}
invoice: {number: "1", date: "2024-03-31", due_date: "2024-03-01"}
`))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"invoice.due_date: must not be before invoice.date"}, cfgErr.Problems)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"file does not exist"}, cfgErr.Problems)
}

func TestLoad_EnvOverridesRate(t *testing.T) {
	t.Setenv("HOURBILL_RATE", "120")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.Rate)
}
