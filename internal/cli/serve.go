package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackpact/stackpact/internal/core/pipeline"
	"github.com/stackpact/stackpact/internal/shell/api"
	"github.com/stackpact/stackpact/internal/shell/store"
)

// newServeCommand creates the "serve" subcommand that exposes render and
// validate over HTTP.
func newServeCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve render and validate operations over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			var history store.Store
			if cfg.History.DSN != "" {
				sqlite, err := store.NewSQLiteStore(cfg.History.DSN)
				if err != nil {
					return err
				}
				defer sqlite.Close()
				history = sqlite
			}

			runner := &pipeline.Runner{Logger: logger}
			handler := api.NewHandler(runner, history, logger, cfg.Server.SharedSecret)

			server := &http.Server{
				Addr:         cfg.Server.Address(),
				Handler:      handler.Routes(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", server.Addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	return cmd
}
