package transport

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/adamwoolhether/reqmaker/request"
)

// Resty sends wire requests through a resty client.
type Resty struct {
	client *resty.Client
}

// NewResty adapts rc, or a new resty client when rc is nil. The client's
// cookie jar is removed so cookies flow only through the caller's store.
func NewResty(rc *resty.Client) *Resty {
	if rc == nil {
		rc = resty.New()
	}
	rc.SetCookieJar(nil)

	return &Resty{client: rc}
}

// Send performs w.
func (t *Resty) Send(ctx context.Context, w *request.Wire) Outcome {
	req := t.client.R().SetContext(ctx)
	if len(w.Header) > 0 {
		req.SetHeaderMultiValues(w.Header)
	}
	if len(w.Body) > 0 {
		req.SetBody(w.Body)
	}

	resp, err := req.Execute(w.Method, w.URL.String())
	if err != nil {
		out := Failed(w.URL, fmt.Errorf("exec resty: %w", err))
		if resp != nil && resp.RawResponse != nil {
			out.StatusCode = resp.StatusCode()
			out.Header = resp.Header()
			out.Body = resp.Body()
		}
		return out
	}

	out := Outcome{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		URL:        w.URL,
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		out.URL = raw.Request.URL
	}
	out.Err = statusError(out.StatusCode, out.Body)

	return out
}
