package main

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// applyJMESPath filters a JSON body with expression and re-encodes the result.
func applyJMESPath(body []byte, expression string) ([]byte, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression[%s]: %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	return out, nil
}
