// Package cookie stores cookies received from servers and hands them back
// for later requests to the same site.
package cookie

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// Store follows the standard cookie-jar rules for domain and path matching.
// Implementations are safe for concurrent use.
type Store interface {
	SetCookies(u *url.URL, cookies []*http.Cookie)
	Cookies(u *url.URL) []*http.Cookie
}

// Jar is an in-memory Store using the public suffix list, so a server
// cannot set cookies for an entire TLD.
type Jar struct {
	*cookiejar.Jar
}

// NewJar returns an empty Jar.
func NewJar() (*Jar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Jar{Jar: j}, nil
}
