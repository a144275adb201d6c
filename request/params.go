package request

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/google/go-querystring/query"
)

// Parameters are the request arguments: query values for GET-style methods,
// the body for POST-style methods.
type Parameters map[string]any

// ParamsFrom converts a struct tagged with `url:"..."` into Parameters.
// Multi-valued fields keep all their values.
func ParamsFrom(v any) (Parameters, error) {
	vals, err := query.Values(v)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}

	p := make(Parameters, len(vals))
	for k, vs := range vals {
		if len(vs) == 1 {
			p[k] = vs[0]
			continue
		}
		p[k] = vs
	}

	return p, nil
}

// Values flattens the parameters into url.Values. Slices become repeated
// keys, everything else is formatted with fmt.
func (p Parameters) Values() url.Values {
	vals := make(url.Values, len(p))
	for _, k := range p.keys() {
		vals[k] = stringsOf(p[k])
	}

	return vals
}

// Encode percent-encodes the parameters, keys sorted.
func (p Parameters) Encode() string {
	return p.Values().Encode()
}

func (p Parameters) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = fmt.Sprint(e)
		}
		return out
	case fmt.Stringer:
		return []string{t.String()}
	default:
		return []string{fmt.Sprint(t)}
	}
}
