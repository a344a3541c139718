package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadinessTracksReadyFlag(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	checker := NewHealthChecker(sc, nil)

	recorder := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 when ready, got %d", recorder.Code)
	}

	checker.SetReady(false)
	recorder = httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when not ready, got %d", recorder.Code)
	}

	var body HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Checks["ready"] != healthStatusNotReady {
		t.Errorf("expected ready check %q, got %q", healthStatusNotReady, body.Checks["ready"])
	}
}

func TestReadinessReflectsShutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	checker := NewHealthChecker(sc, nil)

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	recorder := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after shutdown, got %d", recorder.Code)
	}
}

func TestServerContextShutdownIdempotent(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)

	if sc.IsShutdown() {
		t.Error("expected fresh context not shutdown")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("expected context shutdown")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("expected context cancelled after shutdown")
	}
}
