// Package request describes one HTTP call and turns that description into
// a wire-level request.
package request

import (
	"net/http"
	"sync/atomic"

	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/header"
)

// Path is an endpoint relative to the configured base URL.
type Path interface {
	String() string
	RequiresAuthentication() bool
}

// Endpoint is the stock Path implementation.
type Endpoint struct {
	Path string
	Auth bool
}

func (e Endpoint) String() string               { return e.Path }
func (e Endpoint) RequiresAuthentication() bool { return e.Auth }

// Public returns a Path callable without credentials.
func Public(path string) Endpoint { return Endpoint{Path: path} }

// Private returns a Path that refuses to be built without credentials.
func Private(path string) Endpoint { return Endpoint{Path: path, Auth: true} }

// Descriptor is the caller's description of one HTTP call. It is built
// right before use and must not be performed from two goroutines at once.
type Descriptor struct {
	Path       Path
	Method     string
	Parameters Parameters
	Header     header.Set
	Auth       auth.Authentication
	Config     *config.Config

	// LogOutIfUnauthorized runs Config.OnUnauthorized when the server
	// rejects the request as unauthorized.
	LogOutIfUnauthorized bool

	running atomic.Bool
}

// New returns a GET descriptor for path without authentication.
func New(cfg *config.Config, path Path) *Descriptor {
	return &Descriptor{
		Path:   path,
		Method: http.MethodGet,
		Auth:   auth.None(),
		Config: cfg,
	}
}

// IsRunning reports whether the descriptor is currently on the wire.
func (d *Descriptor) IsRunning() bool {
	return d.running.Load()
}

// Acquire marks the descriptor running and returns the func that clears
// the mark. Callers defer the release so every exit path resets it.
func (d *Descriptor) Acquire() (release func()) {
	d.running.Store(true)
	return func() { d.running.Store(false) }
}

func (d *Descriptor) authentication() auth.Authentication {
	if d.Auth == nil {
		return auth.None()
	}
	return d.Auth
}
