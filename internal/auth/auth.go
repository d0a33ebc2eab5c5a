package auth

import (
	"fmt"
	"net/http"

	"zenrin-geocode/internal/config"
)

// Scheme is one of the three mutually exclusive authorization schemes the
// ZENRIN Maps API accepts. Each variant carries only the fields its mode
// needs, so an inconsistent combination cannot be constructed.
type Scheme interface {
	apply(h http.Header)
}

// IP authorizes by source-address allow-listing.
type IP struct{}

func (IP) apply(h http.Header) {
	h.Set("Authorization", "ip")
}

// Referer authorizes by referer allow-listing.
type Referer struct {
	URL string
}

func (r Referer) apply(h http.Header) {
	h.Set("Authorization", "referer")
	if r.URL != "" {
		h.Set("Referer", r.URL)
	}
}

// Bearer authorizes with an OAuth 2.0 access token. With an empty token no
// Authorization header is sent at all; callers are expected to validate the
// token before constructing the scheme.
type Bearer struct {
	Token string
}

func (b Bearer) apply(h http.Header) {
	if b.Token != "" {
		h.Set("Authorization", "Bearer "+b.Token)
	}
}

// ParseScheme maps a configured auth method name to its scheme variant.
func ParseScheme(method, referer, token string) (Scheme, error) {
	switch method {
	case config.AuthIP:
		return IP{}, nil
	case config.AuthReferer:
		return Referer{URL: referer}, nil
	case config.AuthBearer:
		return Bearer{Token: token}, nil
	default:
		return nil, fmt.Errorf("unsupported authentication method: %s", method)
	}
}

// BuildHeaders produces the request headers for a scheme. The API key is
// sent via x-api-key whenever present, independent of the scheme.
func BuildHeaders(apiKey string, scheme Scheme) http.Header {
	h := make(http.Header)
	if apiKey != "" {
		h.Set("x-api-key", apiKey)
	}
	if scheme != nil {
		scheme.apply(h)
	}
	return h
}
