package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/todobridge/todobridge/internal/logging"
	"github.com/todobridge/todobridge/internal/server"
)

func newRestCmd() *cobra.Command {
	var (
		addr           string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "rest",
		Short: "Start the REST API server",
		Long: `Start the JSON REST API server in front of the Todoist API.

The listen address defaults to the PORT environment variable. All
responses use a uniform envelope: {"success":true,"data":...} on
success and {"success":false,"error":...} on failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRest(addr, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: \":$PORT\")")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runRest(addr string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "false" {
		metricsConfig.Enabled = false
	}

	stack, err := buildStack(shutdownCtx)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.provider.Shutdown(shutdownCtx); err != nil {
			stack.logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && stack.provider.Enabled() {
		metricsServer, err = startMetricsServer(stack, metricsConfig)
		if err != nil {
			return err
		}
	}

	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				stack.logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := stack.serverContext.Shutdown(); err != nil {
			stack.logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	if addr == "" {
		addr = fmt.Sprintf(":%d", stack.cfg.Port)
	}

	checker := server.NewHealthChecker(stack.serverContext, stack.service)
	restServer := server.NewRESTServer(server.RESTConfig{
		Addr:           addr,
		ServiceName:    stack.cfg.ServerName,
		ServiceVersion: stack.cfg.ServerVersion,
		Development:    stack.cfg.IsDevelopment(),
	}, stack.service, checker, stack.logger, stack.provider.Metrics())

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := restServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		stack.logger.Info("shutdown signal received, stopping api server")
		checker.SetReady(false)
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := restServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down api server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("api server stopped with error: %w", err)
		}
	}

	return nil
}
