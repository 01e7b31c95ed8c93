package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vnav"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the application",
		Long: `Serve pages and live navigation sessions for the configured routes.

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  vnav serve
  vnav serve --addr=0.0.0.0:8080
  vnav serve --config=deploy/vnav.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			app, err := vnav.New(cfg, vnav.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			printBanner(out)
			info(out, "serving %d routes on http://%s", app.Table().Len(), cfg.Server.Address)
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}
