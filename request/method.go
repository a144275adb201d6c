package request

import (
	"net/http"
	"strings"
)

// CarriesQuery reports whether parameters for method belong in the query string.
func CarriesQuery(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// CarriesBody reports whether parameters for method belong in the body.
func CarriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
