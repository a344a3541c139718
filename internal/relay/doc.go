// Package relay implements the transport-agnostic business operations
// facade shared by the REST and MCP front ends.
//
// Every operation is a direct pass-through to one Todoist client call
// with uniform structured logging and metrics; the facade never
// retries, never caches, and propagates typed errors unchanged. The
// only composed operations are HealthCheck, which degrades any failure
// to a boolean, and AccountInfo, which fans out the project and task
// listings concurrently.
package relay
