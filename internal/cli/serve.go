package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ghgledger/ghgledger/internal/api"
	"github.com/ghgledger/ghgledger/internal/store"
)

// newServeCmd creates the "serve" subcommand hosting the HTTP API.
func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := listen
			if addr == "" {
				addr = a.cfg.Server.Listen
			}

			st, err := store.Open(a.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.New(st, st, a.logger)
			a.logger.Info().Str("addr", addr).Msg("listening")

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Listen(ctx, addr) })
			if err := g.Wait(); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
