// Package server implements the command that runs the stackd HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autostack/stackd/app"
	"github.com/autostack/stackd/config"
	"github.com/autostack/stackd/logging"
	"github.com/autostack/stackd/web"
)

// NewCmdServer creates the command that serves the deployment API
func NewCmdServer() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the stackd server",
		Long:  "Starts the HTTP API that accepts deploy, destroy and cancel requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runServer(configPath)
		},
	}

	cmd.Flags().StringP("config", "f", "", "Path to configuration file")
	return cmd
}

func runServer(configPath string) error {
	cfg := app.GetConfig()

	// A config file replaces the CLI configuration entirely.
	if configPath != "" {
		fileCfg, err := config.NewConfigFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		logging.InitLogging(fileCfg.LogLevel)
		if err := app.InitializeWithConfig(fileCfg); err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		cfg = fileCfg
	}

	slog.Info("Starting stackd server")

	api := web.NewAPI(
		app.GetOrchestrator(),
		app.GetValidator(),
		app.GetDeploymentRepository(),
		app.GetEngine(),
		app.GetMetrics().Handler(),
		app.Version,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel)

	return serve(ctx, cfg, api)
}

func serve(ctx context.Context, cfg *config.Config, api *web.API) error {
	router := api.Routes()

	address := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:    address,
		Handler: middleware.Logger(router),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("API server starting", "address", fmt.Sprintf("http://%s", address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		slog.Info("Shutting down API server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}

		// In-flight terraform operations finish on their own schedule; wait
		// so their final status lands in the store before exit.
		app.GetOrchestrator().Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("API server stopped")
	return nil
}

// handleShutdown handles OS signals for graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutdown signal received")
	cancel()
}
