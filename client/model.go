package client

import (
	"net/http"
	"net/url"
)

// Response is a successful exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
}

// Void is returned by PerformAs when no content is expected.
type Void struct{}

type expectKind int

const (
	expectVoid expectKind = iota + 1
	expectRaw
	expectJSON
)

// Expectation tells PerformAs what to make of the response body.
// Obtain one from ExpectVoid, ExpectRaw or ExpectJSON.
type Expectation[T any] struct {
	kind expectKind
}

// ExpectVoid ignores the body entirely.
func ExpectVoid() Expectation[Void] { return Expectation[Void]{kind: expectVoid} }

// ExpectRaw returns the body bytes unconverted.
func ExpectRaw() Expectation[[]byte] { return Expectation[[]byte]{kind: expectRaw} }

// ExpectJSON decodes the body into T with the descriptor's Config.Decoder.
func ExpectJSON[T any]() Expectation[T] { return Expectation[T]{kind: expectJSON} }
