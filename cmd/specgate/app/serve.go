package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/internal/api"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 60 * time.Second // merged documents can be large
	serverIdleTimeout      = 60 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the merged specification over HTTP",
	Long: `Serve the merged OpenAPI document, a documentation page, health and
metrics endpoints. Aggregation runs on demand and results are cached for the
configured refresh TTL.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", ":8001", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("error binding address flag", "error", err)
	}
	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("error marking config flag required", "error", err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	agg := aggregator.New(cfg.AggregatorConfig())
	_, router := api.NewServer(agg)

	address := viper.GetString("address")
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shut down", "error", err)
		return err
	}

	slog.Info("server shutdown complete")
	return nil
}
