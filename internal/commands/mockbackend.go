package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/fakebackend"
	"github.com/diogo/agentchat/internal/logging"
)

// NewMockBackendCmd creates the hidden command that serves a local fake backend
func NewMockBackendCmd(deps *Dependencies) *cobra.Command {
	var (
		addr      string
		unhealthy bool
	)

	cmd := &cobra.Command{
		Use:    "mock-backend",
		Short:  "Serve a local fake agent backend",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, deps)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogJSON, cmd.ErrOrStderr())

			backend := fakebackend.New(fakebackend.WithLogger(logger))
			if unhealthy {
				backend.SetHealthStatus(http.StatusServiceUnavailable)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, &http.Server{
				Addr:              addr,
				Handler:           backend.Router(),
				ReadHeaderTimeout: 15 * time.Second,
				IdleTimeout:       120 * time.Second,
			}, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8001", "Listen address")
	cmd.Flags().BoolVar(&unhealthy, "unhealthy", false, "Answer /health with 503")

	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errChan := make(chan error, 1)
	go func() { errChan <- srv.ListenAndServe() }()
	logger.Info("mock backend listening", "addr", srv.Addr)

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock backend: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("mock backend stopped")
	return nil
}
