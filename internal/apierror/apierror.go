// Package apierror provides the error taxonomy shared by all services and
// the canonical JSON envelope for 4xx/5xx responses. Services return typed
// errors; the handler layer maps them to HTTP without leaking internals
// (stack traces, SQL errors, upstream bodies).
package apierror

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for boundary mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindDgiClient  // upstream 4xx — caller data problem, not retried
	KindDgiServer  // upstream 5xx — retried up to budget, then surfaced
	KindDgiNetwork // transport/timeout — retryable
	KindDgiInvalid // 2xx with an unusable body
	KindUnexpected
)

// Error is the service-level error carried across layers.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds the per-field map for validation errors.
	Fields map[string]string
	// UpstreamStatus is the DGI HTTP status for the Dgi* kinds.
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "request validation failed", Fields: fields}
}

func NotFound(resource string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %v", resource, id)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: "internal error", Err: err}
}

// As extracts an *Error from any error chain, wrapping unknown errors as
// Unexpected so the boundary always has a Kind to map.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Unexpected(err)
}

// Envelope is the JSON error body returned on every 4xx/5xx response.
type Envelope struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	ErrorName        string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ErrorID          string            `json:"errorId"`
	CorrelationID    string            `json:"correlationId,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}
