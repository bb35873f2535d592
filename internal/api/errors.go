package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrHTTP matches any *HTTPError (non-2xx response from the backend).
	ErrHTTP = errors.New("http error")

	// ErrTransport matches any *TransportError (no response reached the client).
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse matches any *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is returned when the backend answers with a non-2xx status.
// Message carries the response body text when the server sent one, or a
// generic "HTTP error, status=<n>" fallback when the body was empty or
// unreadable.
type HTTPError struct {
	// Status is the HTTP status code of the response.
	Status int
	// Message is the error text shown to the user.
	Message string
}

// Error returns the server-provided message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrHTTP).
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// TransportError is returned when no HTTP response was received at all:
// DNS failure, connection refused, timeout, TLS handshake failure.
// It is deliberately distinct from HTTPError so callers can tell
// "the server said no" apart from "the server was never reached".
type TransportError struct {
	// Cause is the underlying network error.
	Cause error
}

// Error returns a human-readable description of the transport failure.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network request failed: %v", e.Cause)
	}
	return "network request failed"
}

// Unwrap returns the underlying error cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrTransport).
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// MalformedResponseError is returned when the backend answered 2xx but the
// body is missing a field the caller cannot proceed without, for example an
// order created without an identifier.
type MalformedResponseError struct {
	// What names the missing or invalid part of the response.
	What string
}

// Error returns a human-readable description of the malformed response.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("server response missing %s", e.What)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrMalformedResponse).
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
