package instrumentation

import "os"

// Config controls the observability setup.
type Config struct {
	// Enabled turns metrics collection on. When false the provider
	// returns no-op recorders.
	Enabled bool

	// ServiceName identifies this service in metric resource
	// attributes.
	ServiceName string

	// ServiceVersion is the running version (set from the build).
	ServiceVersion string
}

// DefaultConfig returns the configuration from the environment.
// Metrics default to enabled; METRICS_ENABLED=false disables them.
func DefaultConfig() Config {
	enabled := os.Getenv("METRICS_ENABLED") != "false"
	return Config{
		Enabled:        enabled,
		ServiceName:    "todobridge",
		ServiceVersion: "dev",
	}
}
