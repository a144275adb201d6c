// Package auth describes how a request authenticates itself.
package auth

import (
	"github.com/adamwoolhether/reqmaker/header"
)

// Authentication is a closed set: None, Bearer or Custom.
type Authentication interface {
	// Apply writes the authentication headers into h.
	Apply(h *header.Set)
	// IsNone reports whether the request carries no credentials.
	IsNone() bool

	sealed()
}

type none struct{}

// None returns the empty authentication.
func None() Authentication { return none{} }

func (none) Apply(*header.Set) {}
func (none) IsNone() bool      { return true }
func (none) sealed()           {}

type bearer struct {
	token string
}

// Bearer authenticates with "Authorization: Bearer <token>".
func Bearer(token string) Authentication {
	return bearer{token: token}
}

func (b bearer) Apply(h *header.Set) {
	h.Set("Authorization", "Bearer "+b.token)
}
func (bearer) IsNone() bool { return false }
func (bearer) sealed()      {}

// Token returns the bearer token.
func (b bearer) Token() string { return b.token }

type custom struct {
	headers header.Set
}

// Custom authenticates with an arbitrary set of headers, e.g. an API key.
func Custom(headers header.Set) Authentication {
	return custom{headers: headers.Clone()}
}

func (c custom) Apply(h *header.Set) {
	h.Merge(c.headers)
}
func (custom) IsNone() bool { return false }
func (custom) sealed()      {}

// IsNone reports whether a is nil or None.
func IsNone(a Authentication) bool {
	return a == nil || a.IsNone()
}
