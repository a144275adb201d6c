package client

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/transport"
)

// Classify maps a transport outcome onto a Response or an errs.Error.
// Rules apply in order: cancellation, 401/403, a warning header (even on
// a 2xx), any other transport failure, success. An empty warningHeader
// disables the warning rule.
func Classify(o transport.Outcome, warningHeader string) (*Response, error) {
	if o.Err != nil && (errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, transport.ErrCancelled)) {
		return nil, errs.Cancelled(o.Err)
	}

	if o.StatusCode == http.StatusUnauthorized || o.StatusCode == http.StatusForbidden {
		return nil, errs.Unauthorized(o.StatusCode, o.Body)
	}

	if msg, ok := warning(o.Header, warningHeader); ok {
		return nil, errs.Warning(msg, o.StatusCode, o.Body)
	}

	if o.Err != nil {
		return nil, errs.Transport(o.Err, o.StatusCode, o.Body)
	}

	h := o.Header
	if h == nil {
		h = make(http.Header)
	}

	return &Response{
		StatusCode: o.StatusCode,
		Header:     h,
		Body:       o.Body,
		URL:        o.URL,
	}, nil
}

// warning extracts the message of a warning header. The RFC 7234 form
// `199 agent "text" [date]` yields text; other values are used verbatim.
func warning(h http.Header, name string) (string, bool) {
	if name == "" || h == nil {
		return "", false
	}

	v := strings.TrimSpace(h.Get(name))
	if v == "" {
		return "", false
	}

	start := strings.IndexByte(v, '"')
	if start < 0 {
		return v, true
	}

	end := start + 1
	for end < len(v) {
		if v[end] == '\\' {
			end += 2
			continue
		}
		if v[end] == '"' {
			break
		}
		end++
	}
	if end >= len(v) {
		return v, true
	}

	text, err := strconv.Unquote(v[start : end+1])
	if err != nil {
		return v[start+1 : end], true
	}

	return text, true
}
