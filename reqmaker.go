// Package reqmaker exposes the Maker builder and a descriptor shortcut.
//
// The work happens in the subpackages: [request] describes and builds a
// call, [transport] sends it, [client] classifies and decodes the answer
// and [cookie] keeps the session between calls.
package reqmaker

import (
	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/client"
	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/request"
)

// New instantiates a new *client.Maker with the provided options.
// If not specified, a net/http transport and an in-memory cookie jar are used.
func New(opts ...client.Option) (*client.Maker, error) {
	return client.Build(opts...)
}

// Describe returns a descriptor for method and path, authenticated with a
// when a is not nil.
func Describe(cfg *config.Config, method string, path request.Path, a auth.Authentication) *request.Descriptor {
	d := request.New(cfg, path)
	d.Method = method
	if a != nil {
		d.Auth = a
	}

	return d
}
