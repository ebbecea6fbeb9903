// Package httputil centralizes JSON response writing and coded-error
// translation so every handler produces the same envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "domainlens/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded error to an HTTP status and writes the error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	msg := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	WriteJSON(w, StatusForCode(code), ErrorResponse{Error: string(code), Message: msg})
}

// StatusForCode maps domain error codes onto HTTP statuses.
func StatusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound, dErrors.CodeEndpointUnresolved:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeServerError, dErrors.CodeRelayError, dErrors.CodeTransportBlocked:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
