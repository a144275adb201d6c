package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/header"
)

// Wire is a fully resolved request, ready for a transport.
type Wire struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// HTTPRequest converts w into an *http.Request bound to ctx.
func (w *Wire) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, w.Method, w.URL.String(), bytes.NewReader(w.Body))
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	req.Header = w.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	return req, nil
}

// Builder turns descriptors into wire requests. The zero value logs to
// slog.Default.
type Builder struct {
	Logger *slog.Logger
}

// Build resolves d with a zero Builder.
func Build(d *Descriptor) (*Wire, error) {
	return Builder{}.Build(d)
}

// Build resolves the URL, checks credentials, applies headers and encodes
// the body. It never performs I/O.
//
// Query values are layered: the query already on the URL, then
// Config.DefaultQuery, then Parameters for query-carrying methods. A later
// layer replaces an earlier one on the same key.
func (b Builder) Build(d *Descriptor) (*Wire, error) {
	if d == nil {
		return nil, errs.BadRequest("nil descriptor")
	}
	if d.Config == nil {
		return nil, errs.BadRequest("descriptor has no config")
	}
	if d.Path == nil {
		return nil, errs.BadRequest("descriptor has no path")
	}
	method := strings.ToUpper(strings.TrimSpace(d.Method))
	if method == "" {
		return nil, errs.BadRequest("descriptor has no method")
	}

	u, err := d.Config.URL(d.Path.String())
	if err != nil {
		return nil, errs.New(errs.ErrBadRequest, err)
	}

	authn := d.authentication()
	if auth.IsNone(authn) && d.Path.RequiresAuthentication() {
		e := errs.Unauthorized(0, nil)
		e.Message = fmt.Sprintf("path[%s] requires authentication", d.Path)
		return nil, e
	}

	u.RawQuery = b.query(u, d, method).Encode()

	var hs header.Set
	authn.Apply(&hs)
	hs.Merge(d.Header)

	var body []byte
	if CarriesBody(method) && d.Parameters != nil {
		ct := hs.ContentType()
		switch ct {
		case header.Form:
			body = []byte(d.Parameters.Encode())
		default:
			body, err = json.Marshal(d.Parameters)
			if err != nil {
				return nil, errs.New(errs.ErrBadRequest, fmt.Errorf("encoding json body: %w", err))
			}
		}

		if _, ok := hs.Get("Content-Type"); !ok {
			hs.Set("Content-Type", ct.MIME())
		}
	}

	return &Wire{
		Method: method,
		URL:    u,
		Header: hs.HTTP(),
		Body:   body,
	}, nil
}

func (b Builder) query(u *url.URL, d *Descriptor, method string) url.Values {
	q := u.Query()
	for k, v := range d.Config.DefaultQuery {
		q.Set(k, v)
	}

	if !CarriesQuery(method) {
		return q
	}

	for k, vs := range d.Parameters.Values() {
		if q.Has(k) {
			b.logger().Debug("request parameter overrides query value", "key", k, "path", u.Path)
		}
		q[k] = vs
	}

	return q
}

func (b Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
