// Package domainerrors defines coded errors for service boundaries.
//
// Services wrap infrastructure failures into coded errors so handlers can map
// them onto HTTP statuses without inspecting error strings. Stores and other
// infrastructure layers return pkg/platform/sentinel errors instead; the
// service layer is the only place that translates between the two.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal"

	// Resolution-engine failure taxonomy. Terminal positive signals and
	// per-call failures; only transport-blocked outcomes feed learned state.
	CodeNotRegistered      Code = "not_registered"
	CodeEndpointUnresolved Code = "endpoint_unresolved"
	CodeTransportBlocked   Code = "transport_blocked"
	CodeTimeout            Code = "timeout"
	CodeServerError        Code = "server_error"
	CodeRelayError         Code = "relay_error"
	CodeParseError         Code = "parse_error"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is reports whether err matches target, following wrapped causes.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
