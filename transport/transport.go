// Package transport sends wire requests and reports what came back.
//
// Two implementations ship with the package: [HTTP], built on net/http,
// and [Resty], built on github.com/go-resty/resty/v2. Both read the whole
// body and never follow the error path on their own: every outcome,
// including HTTP failures, is returned as an [Outcome].
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adamwoolhether/reqmaker/request"
)

// maxErrBodySize caps the body copied into an UnexpectedStatusError
// message. The Outcome still carries the full body.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrCancelled may be returned by transports that signal cancellation
	// without a context error.
	ErrCancelled = errors.New("transport cancelled")
	// ErrUnexpectedStatusCode is the sentinel wrapped by UnexpectedStatusError.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with ErrUnexpectedStatusCode for 401 and 403.
	ErrAuthFailure = errors.New("auth failure")
)

// Transport sends exactly one request per call and blocks until the
// exchange completes.
type Transport interface {
	Send(ctx context.Context, w *request.Wire) Outcome
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, w *request.Wire) Outcome

func (f Func) Send(ctx context.Context, w *request.Wire) Outcome { return f(ctx, w) }

// Outcome is the result of one exchange. Err is nil when the server
// answered with a non-error status. Body may be set alongside Err.
type Outcome struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
	Err        error
}

// Failed builds an outcome for an exchange that produced no response.
func Failed(u *url.URL, err error) Outcome {
	return Outcome{URL: u, Err: err}
}

// UnexpectedStatusError is reported for 4xx and 5xx responses.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// statusError returns nil for 1xx-3xx statuses.
func statusError(code int, body []byte) error {
	if code < http.StatusBadRequest {
		return nil
	}

	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}

	sentinel := ErrUnexpectedStatusCode
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		sentinel = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return &UnexpectedStatusError{
		StatusCode: code,
		Body:       string(body),
		Err:        sentinel,
	}
}
