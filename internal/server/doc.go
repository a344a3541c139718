// Package server provides the shared server context and the HTTP
// surfaces of the application.
//
// # Key Components
//
// ServerContext carries the relay facade and a cancellable context
// with a shutdown flag, shared by both front ends.
//
// RESTServer is the JSON HTTP front end: a stdlib ServeMux with method
// patterns, uniform success/failure envelopes, request logging, and
// HTTP metrics. Validation failures map to 400, upstream API failures
// pass their status through, and everything else is a 500 that never
// leaks internals outside development mode.
//
// HealthChecker exposes three probes: /health/simple (process
// liveness), /health/ready (local readiness and shutdown state), and
// /health (one bounded round trip to the Todoist API).
//
// MetricsServer serves Prometheus metrics on a dedicated port so
// operational data stays off the API listener.
package server
