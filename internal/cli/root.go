package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angelofallars/hourbill/internal/config"
	"github.com/angelofallars/hourbill/internal/render"
	"github.com/angelofallars/hourbill/internal/timesheet"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

type generateOptions struct {
	configPath string
	output     string
	rate       float64
	template   string
}

func newRootCmd() *cobra.Command {
	opts := &generateOptions{}
	common := &commonOptions{}

	rootCmd := &cobra.Command{
		Use:   "hourbill <sheet> <file>",
		Short: "Turn a weekly timesheet into an invoice",
		Long: "hourbill reads the named sheet of a timesheet workbook (or a CSV export), " +
			"groups the hours into ISO weeks, summarizes each week's tasks and writes a priced HTML invoice.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, common, opts, args[0], args[1])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "path to the invoice config file")
	flags.StringVarP(&opts.output, "output", "o", "", "output path (overrides the config)")
	flags.Float64Var(&opts.rate, "rate", 0, "hourly rate (overrides the config)")
	flags.StringVar(&opts.template, "template", "", "HTML template replacing the built-in invoice layout")
	common.register(rootCmd)

	rootCmd.AddCommand(newServeCmd(common))

	return rootCmd
}

func runGenerate(cmd *cobra.Command, common *commonOptions, opts *generateOptions, sheet, file string) error {
	env, err := common.wire(cmd, slog.LevelWarn)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if cmd.Flags().Changed("rate") {
		if opts.rate < 0 {
			return fmt.Errorf("--rate cannot be negative")
		}
		cfg.Rate = opts.rate
	}
	if opts.template != "" {
		cfg.Template = opts.template
	}

	renderer, err := newRenderer(cfg.Template)
	if err != nil {
		return err
	}

	rows, err := timesheet.Open(file, sheet)
	if err != nil {
		return err
	}

	inv, err := env.invoices(cfg)("").Create(cmd.Context(), invoiceRequest(cfg, rows))
	if err != nil {
		return err
	}

	if err := render.WriteFile(cmd.Context(), cfg.Output, renderer.Invoice(inv)); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Invoice generated successfully: %s\n", cfg.Output)
	return err
}
