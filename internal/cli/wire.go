package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelofallars/hourbill/internal/config"
	"github.com/angelofallars/hourbill/internal/render"
	"github.com/angelofallars/hourbill/internal/service"
	"github.com/angelofallars/hourbill/internal/summarize"
	"github.com/angelofallars/hourbill/internal/timesheet"
	"github.com/angelofallars/hourbill/pkg/openai"
)

const apiKeyEnv = "OPENAI_API_KEY"

type commonOptions struct {
	envFile string
	verbose bool
}

func (o *commonOptions) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log details to stderr")
}

type environment struct {
	apiKey string
	slog   *slog.Logger
}

// wire loads the dotenv file and builds the logger. The API key is read
// here once and passed down explicitly.
func (o *commonOptions) wire(cmd *cobra.Command, level slog.Level) (*environment, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		logger.Info(apiKeyEnv + " is not set; week descriptions will be joined instead of summarized")
	}

	return &environment{
		apiKey: apiKey,
		slog:   logger,
	}, nil
}

// invoices returns a service factory for cfg. An empty key passed to the
// factory uses the key from the environment.
func (e *environment) invoices(cfg *config.Config) service.Factory {
	return func(apiKey string) service.Invoice {
		if apiKey == "" {
			apiKey = e.apiKey
		}

		var gen summarize.Generator
		if apiKey != "" {
			gen = openai.New(apiKey,
				openai.WithBaseURL(cfg.Summarizer.BaseURL),
				openai.WithModel(cfg.Summarizer.Model),
				openai.WithTemperature(cfg.Summarizer.Temperature),
			)
		}

		summarizer := summarize.New(gen, cfg.Summarizer.SummarizeConfig(), e.slog)
		return service.NewInvoice(summarizer, e.slog)
	}
}

func newRenderer(templatePath string) (*render.Renderer, error) {
	if templatePath == "" {
		return render.New(nil), nil
	}
	tmpl, err := render.LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return render.New(tmpl), nil
}

func invoiceRequest(cfg *config.Config, rows []timesheet.Row) service.CreateInvoiceRequest {
	return service.CreateInvoiceRequest{
		Rows:     rows,
		Rate:     cfg.Rate,
		Business: cfg.Business,
		Client:   cfg.Client,
		Details:  cfg.Invoice,
	}
}
