package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schedcal/internal/web"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule over a JSON HTTP API",
		Long: `Start the HTTP server. Endpoints: /health, /api/schedule,
/api/calendar, /api/ics, /api/events (POST add, DELETE remove),
/api/parse (natural-language add).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := setup()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return web.NewServer(cfg, svc).Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}
