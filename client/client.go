package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/reqmaker/cookie"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/request"
	"github.com/adamwoolhether/reqmaker/transport"
)

// Maker builds, sends and classifies requests. A Maker may be shared by
// goroutines; a Descriptor may not.
type Maker struct {
	transport       transport.Transport
	cookies         cookie.Store
	logger          *slog.Logger
	tracer          trace.Tracer
	requestIDHeader string
}

// Build instantiates a Maker. By default it sends over a plain net/http
// transport, keeps cookies in a private in-memory jar, logs to
// slog.Default and traces with a no-op tracer.
func Build(optFns ...Option) (*Maker, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	m := &Maker{
		transport:       opts.transport,
		cookies:         opts.cookies,
		logger:          opts.logger,
		tracer:          opts.tracer,
		requestIDHeader: opts.requestIDHeader,
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.tracer == nil {
		m.tracer = noop.NewTracerProvider().Tracer("reqmaker")
	}
	if m.transport == nil {
		t, err := transport.NewHTTP(transport.WithLogger(m.logger))
		if err != nil {
			return nil, fmt.Errorf("default transport: %w", err)
		}
		m.transport = t
	}
	if m.cookies == nil {
		jar, err := cookie.NewJar()
		if err != nil {
			return nil, err
		}
		m.cookies = jar
	}

	return m, nil
}

// Perform builds d, sends it and classifies the outcome. It blocks until
// the transport returns. On success the first cookie of the response is
// stored. An unauthorized response on a descriptor with
// LogOutIfUnauthorized runs Config.OnUnauthorized before the error is
// returned.
func (m *Maker) Perform(ctx context.Context, d *request.Descriptor) (*Response, error) {
	ctx, span := m.tracer.Start(ctx, "reqmaker.perform")
	defer span.End()

	resp, err := m.perform(ctx, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

func (m *Maker) perform(ctx context.Context, d *request.Descriptor) (*Response, error) {
	w, err := request.Builder{Logger: m.logger}.Build(d)
	if err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("http.request.method", w.Method),
		attribute.String("url.full", w.URL.Redacted()),
	)

	m.attachCookies(w)
	if m.requestIDHeader != "" && w.Header.Get(m.requestIDHeader) == "" {
		id := uuid.NewString()
		w.Header.Set(m.requestIDHeader, id)
		span.SetAttributes(attribute.String("request.id", id))
	}

	m.logger.Debug("request started", "method", w.Method, "url", w.URL.Redacted())
	start := time.Now()

	out := m.send(ctx, d, w)

	m.logger.Debug("request completed", "method", w.Method, "url", w.URL.Redacted(), "statusCode", out.StatusCode, "since", time.Since(start).String())
	span.SetAttributes(attribute.Int("http.response.status_code", out.StatusCode))

	resp, err := Classify(out, d.Config.WarningHeaderName())
	if err != nil {
		if errs.IsUnauthorized(err) && d.LogOutIfUnauthorized {
			m.logger.Info("unauthorized response, running handler", "url", w.URL.Redacted())
			d.Config.Unauthorized()
		}
		return nil, err
	}

	m.storeCookie(resp)

	return resp, nil
}

// send holds the descriptor's running mark for exactly the transport call.
func (m *Maker) send(ctx context.Context, d *request.Descriptor, w *request.Wire) transport.Outcome {
	release := d.Acquire()
	defer release()

	return m.transport.Send(ctx, w)
}

func (m *Maker) attachCookies(w *request.Wire) {
	cookies := m.cookies.Cookies(w.URL)
	if len(cookies) == 0 {
		return
	}

	parts := make([]string, 0, len(cookies)+1)
	if existing := w.Header.Get("Cookie"); existing != "" {
		parts = append(parts, existing)
	}
	for _, c := range cookies {
		parts = append(parts, (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	w.Header.Set("Cookie", strings.Join(parts, "; "))
}

// storeCookie hands the first Set-Cookie of r to the store. Unparsable
// headers are ignored.
func (m *Maker) storeCookie(r *Response) {
	if r.URL == nil || len(r.Header.Values("Set-Cookie")) == 0 {
		return
	}

	cookies := (&http.Response{Header: r.Header}).Cookies()
	if len(cookies) == 0 {
		m.logger.Debug("ignoring unparsable set-cookie header", "url", r.URL.Redacted())
		return
	}

	m.logger.Debug("storing cookie", "name", cookies[0].Name, "path", r.URL.Path)
	m.cookies.SetCookies(r.URL, cookies[:1])
}

// PerformAs performs d and interprets the body as exp describes.
// Raw and JSON expectations fail with errs.ErrNoData on an empty body;
// decoding failures keep the raw body.
func PerformAs[T any](ctx context.Context, m *Maker, d *request.Descriptor, exp Expectation[T]) (T, error) {
	var zero T

	if exp.kind == 0 {
		return zero, errs.BadRequest("unset expectation")
	}

	resp, err := m.Perform(ctx, d)
	if err != nil {
		return zero, err
	}

	switch exp.kind {
	case expectVoid:
		return zero, nil

	case expectRaw:
		if len(resp.Body) == 0 {
			return zero, errs.NoData(resp.StatusCode)
		}
		raw, ok := any(resp.Body).(T)
		if !ok {
			return zero, errs.BadRequest("raw expectation for %T", zero)
		}
		return raw, nil

	default:
		if len(resp.Body) == 0 {
			return zero, errs.NoData(resp.StatusCode)
		}

		var v T
		if err := d.Config.ResponseDecoder().Decode(resp.Body, &v); err != nil {
			m.logger.Debug("decoding response failed", "error", err, "type", fmt.Sprintf("%T", v))
			return zero, errs.Decoding(err, resp.Body)
		}
		return v, nil
	}
}
