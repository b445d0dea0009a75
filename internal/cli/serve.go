package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angelofallars/hourbill/app"
	"github.com/angelofallars/hourbill/app/route/invoice"
	"github.com/angelofallars/hourbill/internal/config"
)

func newServeCmd(common *commonOptions) *cobra.Command {
	var (
		configPath string
		host       string
		port       uint
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI for building invoices from uploaded timesheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := common.wire(cmd, slog.LevelInfo)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			renderer, err := newRenderer(cfg.Template)
			if err != nil {
				return err
			}

			handlers := invoice.NewHandlerGroup(env.invoices(cfg), renderer, invoice.Defaults{
				Business: cfg.Business,
				Client:   cfg.Client,
				Details:  cfg.Invoice,
				Rate:     cfg.Rate,
			}, env.slog)

			return app.New(env.slog, handlers).
				WithHost(host).
				WithPort(port).
				Serve()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the invoice config file")
	cmd.Flags().StringVar(&host, "host", "localhost", "address to listen on")
	cmd.Flags().UintVar(&port, "port", 3000, "port to listen on")

	return cmd
}
