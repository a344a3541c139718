// Package logging provides slog helpers shared across the
// application.
//
// It centralizes attribute key names so log output stays queryable,
// and provides redaction helpers so the Todoist API token never
// appears in log output.
package logging
