package client

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/reqmaker/cookie"
	"github.com/adamwoolhether/reqmaker/transport"
)

// Option is a functional option for configuring a [Maker] via [Build].
type Option func(*options) error
type options struct {
	transport       transport.Transport
	cookies         cookie.Store
	logger          *slog.Logger
	tracer          trace.Tracer
	requestIDHeader string
}

// WithTransport replaces the default net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithCookieStore sets the store cookies are read from and written to.
// Without it each Maker gets its own in-memory jar.
func WithCookieStore(s cookie.Store) Option {
	return func(o *options) error {
		if s == nil {
			return errors.New("cookie store must not be nil")
		}
		o.cookies = s
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Maker].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer records a span per performed request.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithRequestID stamps every request lacking the given header with a
// random UUID, e.g. WithRequestID("X-Request-ID").
func WithRequestID(header string) Option {
	return func(o *options) error {
		if header == "" {
			return errors.New("request id header must not be empty")
		}
		o.requestIDHeader = http.CanonicalHeaderKey(header)
		return nil
	}
}
