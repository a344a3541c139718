package server

import (
	"encoding/json"
	"net/http"

	"github.com/todobridge/todobridge/internal/todoist"
)

// successEnvelope is the uniform REST success body.
type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   *int        `json:"count,omitempty"`
}

// errorEnvelope is the uniform REST failure body.
type errorEnvelope struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Details []todoist.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes a success envelope with the given status.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

// writeList writes a success envelope carrying a collection and its
// element count.
func writeList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data, Count: &count})
}

// statusForError maps a typed error to its HTTP status. Validation
// failures are the caller's fault; upstream statuses pass through when
// they are valid HTTP error codes; everything else is a 500.
func statusForError(err error) int {
	e, ok := todoist.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case todoist.KindValidation:
		return http.StatusBadRequest
	case todoist.KindAPI:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a failure envelope for err. Validation details are
// always included; network and unexpected errors are reported
// generically unless development is set, so internals never leak in
// production.
func writeError(w http.ResponseWriter, err error, development bool) {
	status := statusForError(err)
	envelope := errorEnvelope{Error: "internal server error"}

	if e, ok := todoist.AsError(err); ok {
		switch e.Kind {
		case todoist.KindValidation:
			envelope.Error = e.Error()
			envelope.Details = e.Fields
		case todoist.KindAPI:
			envelope.Error = e.Error()
		default:
			if development {
				envelope.Error = e.Error()
			}
		}
	} else if development && err != nil {
		envelope.Error = err.Error()
	}

	writeJSON(w, status, envelope)
}
