package todoist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind discriminates the failure classes surfaced by this package.
type ErrorKind string

const (
	// KindValidation marks a local, pre-network input failure.
	KindValidation ErrorKind = "validation"
	// KindAPI marks a non-success HTTP status from upstream.
	KindAPI ErrorKind = "api"
	// KindNetwork marks a transport failure (DNS, connect, timeout)
	// where no HTTP status is available.
	KindNetwork ErrorKind = "network"
)

// FieldError describes a single failing field path in a validation
// failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the single tagged error type for all upstream and
// validation failures. Kind selects which fields are meaningful:
// Status/Code/Body for api, Timeout for network, Fields for
// validation.
type Error struct {
	Kind    ErrorKind
	Message string

	// api
	Status int
	Code   string
	Body   string

	// network
	Timeout bool

	// validation
	Fields []FieldError

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		if len(e.Fields) > 0 {
			parts := make([]string, 0, len(e.Fields))
			for _, f := range e.Fields {
				parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Message))
			}
			return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
		}
		return fmt.Sprintf("validation failed: %s", e.Message)
	case KindAPI:
		if e.Code != "" {
			return fmt.Sprintf("todoist api error: status %d (%s)", e.Status, e.Code)
		}
		return fmt.Sprintf("todoist api error: status %d", e.Status)
	case KindNetwork:
		if e.Timeout {
			return fmt.Sprintf("todoist request timed out: %s", e.Message)
		}
		return fmt.Sprintf("todoist network error: %s", e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError builds a validation-kind error from per-field
// failures.
func NewValidationError(msg string, fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// NewAPIError builds an api-kind error from an upstream HTTP response.
func NewAPIError(status int, code, body string) *Error {
	return &Error{Kind: KindAPI, Status: status, Code: code, Body: body}
}

// NewNetworkError wraps a transport failure. timeout marks deadline
// and cancellation failures.
func NewNetworkError(err error, timeout bool) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), Timeout: timeout, cause: err}
}

// AsError unwraps err into a *Error if possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
