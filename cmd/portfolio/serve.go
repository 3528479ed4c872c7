package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/di"
)

func serveCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and live view server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			logger := container.Logger
			defer logger.Sync()

			if err := container.Start(); err != nil {
				return err
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("Starting server",
					zap.String("address", cfg.Server.Address),
					zap.String("environment", cfg.Environment),
					zap.Int("nodes", container.Site.Graph().Len()),
				)
				if err := container.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()

			select {
			case <-ctx.Done():
				logger.Info("Shutting down server...")
			case err := <-serverErr:
				if err != nil {
					logger.Error("Server failed", zap.Error(err))
					container.Shutdown(context.Background())
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := container.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", zap.Error(err))
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address, overriding server.address")
	return cmd
}
