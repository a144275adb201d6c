// Package config holds the shared configuration every request descriptor
// points at: where requests go, how bodies are decoded and what happens
// when the server rejects the credentials.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultWarningHeader is the response header inspected for soft warnings
// when Config.WarningHeader is empty.
const DefaultWarningHeader = "Warning"

// Decoder turns a response body into v, which must be a pointer.
type Decoder interface {
	Decode(data []byte, v any) error
}

// JSONDecoder decodes with encoding/json.
// UseNumber preserves numbers as json.Number instead of float64.
type JSONDecoder struct {
	UseNumber bool
}

func (d JSONDecoder) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.UseNumber {
		dec.UseNumber()
	}

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc func(data []byte, v any) error

func (f DecoderFunc) Decode(data []byte, v any) error { return f(data, v) }

// Config is owned by the application and shared by reference.
type Config struct {
	BaseURL      string            `mapstructure:"base_url" validate:"required,url"`
	DefaultQuery map[string]string `mapstructure:"default_query"`

	// Decoder defaults to JSONDecoder when nil.
	Decoder Decoder `mapstructure:"-"`

	// OnUnauthorized runs when a descriptor with LogOutIfUnauthorized
	// receives an unauthorized response.
	OnUnauthorized func() `mapstructure:"-"`

	// WarningHeader names the response header carrying soft warnings.
	WarningHeader string `mapstructure:"warning_header"`
}

// URL joins the base URL with path. A query on the base is kept and a
// query carried by path is merged into it, path values winning.
func (c *Config) URL(path string) (*url.URL, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url[%s] must be absolute", c.BaseURL)
	}
	u.Fragment, u.RawFragment = "", ""

	if path == "" {
		return u, nil
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing path[%s]: %w", path, err)
	}
	if ref.Scheme != "" || ref.Host != "" {
		return nil, fmt.Errorf("path[%s] must be relative", path)
	}

	if p := strings.TrimLeft(ref.Path, "/"); p != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + p
		u.RawPath = ""
	}

	if ref.RawQuery != "" {
		q := u.Query()
		for k, vs := range ref.Query() {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	return u, nil
}

// ResponseDecoder returns the configured decoder or the JSON default.
func (c *Config) ResponseDecoder() Decoder {
	if c.Decoder == nil {
		return JSONDecoder{}
	}

	return c.Decoder
}

// WarningHeaderName returns the configured warning header or DefaultWarningHeader.
func (c *Config) WarningHeaderName() string {
	if c.WarningHeader == "" {
		return DefaultWarningHeader
	}

	return c.WarningHeader
}

// Unauthorized invokes OnUnauthorized when set.
func (c *Config) Unauthorized() {
	if c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}
}
