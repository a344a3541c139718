package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/todobridge/todobridge/internal/config"
	"github.com/todobridge/todobridge/internal/instrumentation"
	"github.com/todobridge/todobridge/internal/logging"
	"github.com/todobridge/todobridge/internal/relay"
	"github.com/todobridge/todobridge/internal/server"
	"github.com/todobridge/todobridge/internal/todoist"
	"github.com/todobridge/todobridge/internal/tools/todoist_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		transport      string
		httpAddr       string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Todoist task,
project, and label tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Configuration is read from the environment and an optional .env file:
  TODOIST_API_TOKEN         Todoist REST API token (required)
  TODOBRIDGE_MODE           development, production or test (default: development)
  LOG_LEVEL                 debug, info, warn or error (default: info)
  TODOIST_TIMEOUT_SECONDS   Per-call upstream timeout, 1-60 (default: 15)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, httpAddr, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// appStack bundles the components shared by the serve and rest
// commands.
type appStack struct {
	cfg           *config.Config
	logger        *slog.Logger
	provider      *instrumentation.Provider
	service       *relay.Service
	serverContext *server.ServerContext
}

// buildStack loads configuration and wires the Todoist client, relay
// facade, and server context. Configuration errors are fatal.
func buildStack(ctx context.Context) (*appStack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceName = cfg.ServerName
	instrConfig.ServiceVersion = cfg.ServerVersion

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	client, err := todoist.NewClient(cfg.APIToken,
		todoist.WithTimeout(cfg.Timeout),
		todoist.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todoist client: %w", err)
	}

	service := relay.NewService(client, logger, provider.Metrics())
	serverContext := server.NewServerContext(ctx, service)

	logger.Info("stack initialized",
		"mode", cfg.Mode,
		"api_token", logging.SanitizeToken(cfg.APIToken),
		"upstream_timeout", cfg.Timeout.String(),
	)

	return &appStack{
		cfg:           cfg,
		logger:        logger,
		provider:      provider,
		service:       service,
		serverContext: serverContext,
	}, nil
}

// startMetricsServer starts the dedicated metrics listener and waits
// until it is bound, so a bad address fails startup instead of being
// discovered later.
func startMetricsServer(stack *appStack, metricsConfig MetricsConfig) (*server.MetricsServer, error) {
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		InstrumentationProvider: stack.provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		stack.logger.Info("metrics server started", "addr", metricsServer.Addr())
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}

	return metricsServer, nil
}

func runServe(transport, httpAddr string, metricsConfig MetricsConfig) error {
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
		if err := stack.provider.Shutdown(shutdownCtx); err != nil && transport != "stdio" {
			stack.logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && stack.provider.Enabled() {
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
		if err := stack.serverContext.Shutdown(); err != nil && transport != "stdio" {
			stack.logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer(stack.cfg.ServerName, stack.cfg.ServerVersion,
		mcpserver.WithToolCapabilities(true),
	)

	if err := todoist_tools.RegisterTodoistTools(mcpSrv, stack.serverContext, stack.logger, stack.provider.Metrics()); err != nil {
		return fmt.Errorf("failed to register todoist tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, stack, httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, stack *appStack, addr string) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)

	checker := server.NewHealthChecker(stack.serverContext, stack.service)
	checker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stack.logger.Info("starting mcp http server", "addr", addr, "endpoint", "/mcp")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		stack.logger.Info("shutdown signal received, stopping mcp http server")
		checker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down http server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
	}

	return nil
}
