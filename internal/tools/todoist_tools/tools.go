package todoist_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/todobridge/todobridge/internal/instrumentation"
	"github.com/todobridge/todobridge/internal/logging"
	"github.com/todobridge/todobridge/internal/server"
)

// toolDeps bundles what every handler needs.
type toolDeps struct {
	sc      *server.ServerContext
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// RegisterTodoistTools registers all Todoist tools with the MCP server.
func RegisterTodoistTools(s *mcpserver.MCPServer, sc *server.ServerContext, logger *slog.Logger, metrics *instrumentation.Metrics) error {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	deps := &toolDeps{sc: sc, logger: logger, metrics: metrics}

	if err := registerTaskTools(s, deps); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}
	if err := registerProjectTools(s, deps); err != nil {
		return fmt.Errorf("failed to register project tools: %w", err)
	}
	if err := registerLabelTools(s, deps); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}
	if err := registerHealthTools(s, deps); err != nil {
		return fmt.Errorf("failed to register health tools: %w", err)
	}

	return nil
}

// instrument wraps a tool handler with logging and metrics. A result
// carrying a failure envelope counts as an error invocation.
func (d *toolDeps) instrument(name string, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)

		duration := time.Since(start)
		status := logging.StatusSuccess
		if err != nil || isFailureResult(result) {
			status = logging.StatusError
		}
		d.metrics.RecordToolInvocation(ctx, name, status, duration)
		d.logger.LogAttrs(ctx, slog.LevelInfo, "tool invoked",
			logging.Tool(name),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
		)
		return result, err
	}
}

// addTool registers one instrumented tool.
func (d *toolDeps) addTool(s *mcpserver.MCPServer, tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	s.AddTool(tool, d.instrument(tool.Name, handler))
}

// resultEnvelope mirrors the wire shape of tool results, used to
// classify outcomes for metrics.
type resultEnvelope struct {
	Success bool `json:"success"`
}

func isFailureResult(result *mcp.CallToolResult) bool {
	if result == nil || len(result.Content) == 0 {
		return false
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return false
	}
	var envelope resultEnvelope
	if err := json.Unmarshal([]byte(text.Text), &envelope); err != nil {
		return false
	}
	return !envelope.Success
}

// argsFromRequest extracts the argument map; a missing or mistyped
// payload yields an empty map so handlers see absent optionals.
func argsFromRequest(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg returns the named string argument, or "" when absent.
func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}

// copyArgs picks the named keys out of args, preserving their JSON
// values so schema validation sees exactly what the caller sent. The
// comma-separated labels argument is expanded into the list the wire
// format expects.
func copyArgs(args map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		if value, ok := args[key]; ok {
			out[key] = value
		}
	}
	if labels, ok := out["labels"].(string); ok {
		if list := splitCommaList(labels); list != nil {
			out["labels"] = list
		} else {
			delete(out, "labels")
		}
	}
	return out
}

// splitCommaList parses a comma-separated string into a slice,
// trimming whitespace and dropping empty elements. Returns nil for an
// empty input.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
