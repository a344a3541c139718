package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK           = "ok"
	healthStatusDegraded     = "degraded"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// upstreamHealthTimeout bounds the Todoist round trip made by the
// full health check.
const upstreamHealthTimeout = 5 * time.Second

// UpstreamChecker reports whether the upstream Todoist API is
// reachable. The relay facade satisfies it.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) bool
}

// HealthChecker provides the health check endpoints.
type HealthChecker struct {
	// ready indicates whether the server is ready to receive traffic
	ready atomic.Bool
	// serverContext provides the shutdown state
	serverContext *ServerContext
	// upstream is probed by the full health check
	upstream UpstreamChecker
	// startTime tracks when the server started
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(sc *ServerContext, upstream UpstreamChecker) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		upstream:      upstream,
		startTime:     time.Now(),
	}
	// Server starts as ready by default
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// isServerShuttingDown checks if the server context is shutting down.
// Returns false if serverContext is nil (safe for testing).
func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// SimpleHandler returns an HTTP handler for the /health/simple
// endpoint. It only confirms the process is serving requests and never
// touches upstream.
func (h *HealthChecker) SimpleHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns an HTTP handler for the /health/ready
// endpoint. Readiness reflects local state only: the ready flag and
// the shutdown flag.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
			allOk = false
		} else {
			checks["ready"] = healthStatusOK
		}

		if h.isServerShuttingDown() {
			checks["shutdown"] = healthStatusShuttingDown
			allOk = false
		} else {
			checks["shutdown"] = healthStatusOK
		}

		response := HealthResponse{Checks: checks}

		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// UpstreamHandler returns an HTTP handler for the /health endpoint.
// It issues one cheap read against the Todoist API and reports 503
// when upstream is unreachable.
func (h *HealthChecker) UpstreamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), upstreamHealthTimeout)
		defer cancel()

		checks := map[string]string{"upstream": healthStatusOK}
		response := HealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Checks: checks,
		}

		if h.upstream == nil || !h.upstream.HealthCheck(ctx) {
			checks["upstream"] = healthStatusDegraded
			response.Status = healthStatusDegraded
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints registers the health check endpoints on the
// given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("GET /health", h.UpstreamHandler())
	mux.Handle("GET /health/simple", h.SimpleHandler())
	mux.Handle("GET /health/ready", h.ReadinessHandler())
}
