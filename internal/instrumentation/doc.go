// Package instrumentation provides OpenTelemetry-based metrics for
// the REST front end, the MCP front end, and the Todoist upstream
// client.
//
// Metrics are exported through the Prometheus exporter and exposed for
// scraping on a dedicated metrics server. A disabled provider returns
// no-op recorders so callers never need nil checks.
package instrumentation
