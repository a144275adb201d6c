// Package errs defines the typed failures returned by request execution.
package errs

import (
	"errors"
	"fmt"
)

// Kinds. Every *Error carries exactly one of these, test with errors.Is.
var (
	ErrCancelled    = errors.New("request cancelled")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNoData       = errors.New("no data")
	ErrDecoding     = errors.New("decoding response")
	ErrWarning      = errors.New("warning")
	ErrTransport    = errors.New("transport failure")
)

// Error represents a failed request.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
	Body       []byte
	Err        error
}

// New constructs an error of the given kind wrapping err.
func New(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Cancelled wraps the cancellation cause.
func Cancelled(err error) *Error {
	return New(ErrCancelled, err)
}

// Unauthorized reports a rejected or missing credential.
func Unauthorized(statusCode int, body []byte) *Error {
	return &Error{Kind: ErrUnauthorized, StatusCode: statusCode, Body: body}
}

// BadRequest reports a request that could not be built.
func BadRequest(format string, args ...any) *Error {
	return New(ErrBadRequest, fmt.Errorf(format, args...))
}

// NoData reports a successful response without the body the caller required.
func NoData(statusCode int) *Error {
	return &Error{Kind: ErrNoData, StatusCode: statusCode}
}

// Decoding keeps the raw body next to the decoder failure.
func Decoding(err error, body []byte) *Error {
	return &Error{Kind: ErrDecoding, Body: body, Err: err}
}

// Warning is a soft failure signalled by the server through a response header.
func Warning(message string, statusCode int, body []byte) *Error {
	return &Error{Kind: ErrWarning, Message: message, StatusCode: statusCode, Body: body}
}

// Transport wraps any other failure reported by the transport.
func Transport(err error, statusCode int, body []byte) *Error {
	return &Error{Kind: ErrTransport, StatusCode: statusCode, Body: body, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s [%d]", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}

	return e, true
}

// IsUnauthorized checks if err is an unauthorized failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsCancelled checks if err is a cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// RawBody returns the response body attached to err, or nil.
func RawBody(err error) []byte {
	e, ok := As(err)
	if !ok {
		return nil
	}

	return e.Body
}
