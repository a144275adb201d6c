package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/reqmaker/request"
	"github.com/adamwoolhether/reqmaker/transport/throttle"
)

// HTTP sends wire requests with an [http.Client]. Cookies are left to the
// caller: the client it builds has no jar.
type HTTP struct {
	c      *http.Client
	logger *slog.Logger
}

// NewHTTP builds an HTTP transport. Without options it uses a fresh
// http.Client over http.DefaultTransport.
func NewHTTP(optFns ...Option) (*HTTP, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying transport option: %w", err)
		}
	}

	t := &HTTP{
		c:      &http.Client{},
		logger: slog.Default(),
	}
	if opts.client != nil {
		t.c = opts.client
	}
	if opts.logger != nil {
		t.logger = opts.logger
	}
	if opts.timeout != nil {
		t.c.Timeout = *opts.timeout
	}
	if opts.noFollowRedirects {
		t.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		rt = opts.client.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	if opts.throttle != nil {
		th, err := throttle.New(*opts.throttle, rt, func() *slog.Logger { return t.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = th
	}
	t.c.Transport = rt

	return t, nil
}

// Send performs w and reads the whole response body.
func (t *HTTP) Send(ctx context.Context, w *request.Wire) Outcome {
	req, err := w.HTTPRequest(ctx)
	if err != nil {
		return Failed(w.URL, err)
	}

	resp, err := t.c.Do(req)
	if err != nil {
		return Failed(w.URL, fmt.Errorf("exec http do: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.logger.Error("failed to close response body", "error", err)
		}
	}()

	out := Outcome{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		URL:        w.URL,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		out.URL = resp.Request.URL
	}

	out.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		out.Err = fmt.Errorf("reading body: %w", err)
		return out
	}

	out.Err = statusError(resp.StatusCode, out.Body)

	return out
}
