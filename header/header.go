// Package header holds the header set carried by a request descriptor.
package header

import (
	"maps"
	"mime"
	"net/http"
	"slices"
	"strings"
)

// ContentType selects how a request body is serialized.
type ContentType int

const (
	JSON ContentType = iota
	Form
)

// MIME returns the media type written to the Content-Type header.
func (ct ContentType) MIME() string {
	if ct == Form {
		return "application/x-www-form-urlencoded"
	}

	return "application/json"
}

func (ct ContentType) String() string {
	if ct == Form {
		return "form"
	}

	return "json"
}

// Set maps header names to a single value each. Names are case-insensitive,
// a later Set for the same name replaces the value but keeps its position.
// The zero value is ready to use. Copies are independent: writes never
// touch storage shared with another copy.
type Set struct {
	values map[string]string
	order  []string
}

// Pair is one header name/value.
type Pair struct {
	Name  string
	Value string
}

// New builds a Set from name/value pairs, e.g. New("Accept", "application/json").
// A trailing name without value is ignored.
func New(kv ...string) Set {
	var s Set
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], kv[i+1])
	}

	return s
}

// Set stores value under name.
func (s *Set) Set(name, value string) {
	key := http.CanonicalHeaderKey(name)

	values := make(map[string]string, len(s.values)+1)
	maps.Copy(values, s.values)
	if _, ok := values[key]; !ok {
		s.order = append(slices.Clip(s.order), key)
	}
	values[key] = value
	s.values = values
}

// Get returns the value for name and whether it exists.
func (s Set) Get(name string) (string, bool) {
	v, ok := s.values[http.CanonicalHeaderKey(name)]
	return v, ok
}

// Del removes name from the set.
func (s *Set) Del(name string) {
	key := http.CanonicalHeaderKey(name)
	if _, ok := s.values[key]; !ok {
		return
	}

	values := maps.Clone(s.values)
	delete(values, key)
	order := make([]string, 0, len(s.order)-1)
	for _, k := range s.order {
		if k != key {
			order = append(order, k)
		}
	}
	s.values, s.order = values, order
}

// Len reports the number of headers.
func (s Set) Len() int {
	return len(s.order)
}

// Merge copies every header of other into s, other wins on conflict.
func (s *Set) Merge(other Set) {
	for _, p := range other.All() {
		s.Set(p.Name, p.Value)
	}
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	var c Set
	c.Merge(s)
	return c
}

// All returns the headers in insertion order.
func (s Set) All() []Pair {
	pairs := make([]Pair, 0, len(s.order))
	for _, k := range s.order {
		pairs = append(pairs, Pair{Name: k, Value: s.values[k]})
	}

	return pairs
}

// HTTP converts the set into an http.Header.
func (s Set) HTTP() http.Header {
	h := make(http.Header, len(s.order))
	for _, k := range s.order {
		h.Set(k, s.values[k])
	}

	return h
}

// ContentType derives the body encoding from the Content-Type header.
// Anything other than a form media type is treated as JSON.
func (s Set) ContentType() ContentType {
	v, ok := s.Get("Content-Type")
	if !ok {
		return JSON
	}

	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(v))
	}
	if mt == Form.MIME() {
		return Form
	}

	return JSON
}
