package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/launchmap/launchmap/internal/api"
)

// newServeCmd creates the serve command running the HTTP API.
func newServeCmd() *cobra.Command {
	var (
		listen string
		demo   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the topology HTTP API",
		Long: `Run the topology HTTP API.

The server exposes positioned topologies, auto-connect suggestions, and the
connection mutation endpoints. Store and cache backends come from the config
file; --demo seeds the in-memory store with a sample project.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			if listen != "" {
				cfg.Server.Listen = listen
			}

			st, err := openStore(ctx, cfg, demo)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			ca, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer ca.Close()

			srv := api.NewServer(st, api.Options{
				RootLabel: cfg.RootLabel,
				Layout:    layoutOptions(cfg),
				Cache:     ca,
				Logger:    logger,
			})

			httpSrv := &http.Server{
				Addr:              cfg.Server.Listen,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Listen, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			timeout := cfg.Server.ShutdownTimeout.Duration
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			logger.Info("shutting down")
			if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed the memory store with a sample project")

	return cmd
}
