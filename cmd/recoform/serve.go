package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/internal/metrics"
	"github.com/goliatone/go-recoform/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var secureCookies bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation form over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			orch, err := a.orchestrator(ctx, m)
			if err != nil {
				return err
			}

			cfg := server.Config{
				Addr:          a.cfg.Server.Addr,
				ShutdownGrace: a.cfg.Server.ShutdownGrace,
				RateLimit:     a.cfg.Server.RateLimit,
				SessionTTL:    a.cfg.Server.SessionTTL,
				CookieSecure:  secureCookies,
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			srv, err := server.New(cfg, orch,
				server.WithMetrics(m),
				server.WithLogger(logging.WithComponent("server")),
			)
			if err != nil {
				return err
			}
			logging.Info().
				Str("addr", cfg.Addr).
				Str("recommender", orch.Client().BaseURL()).
				Msg("starting recoform")
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the session cookie Secure (behind TLS)")
	return cmd
}
