package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"zenrin-geocode/internal/logging"
)

// ProxyConfig carries the proxy URLs for each scheme. It is resolved once,
// at construction time, instead of reading the process environment on every
// request.
type ProxyConfig struct {
	HTTP  *url.URL
	HTTPS *url.URL
}

// ProxyFromEnv captures http_proxy/https_proxy through the given lookup
// function. getenv abstracts the environment so tests stay deterministic.
func ProxyFromEnv(getenv func(string) string) (ProxyConfig, error) {
	var cfg ProxyConfig
	if v := getenv("http_proxy"); v != "" {
		u, err := url.Parse(v)
		if err != nil {
			return ProxyConfig{}, fmt.Errorf("invalid http_proxy '%s': %w", v, err)
		}
		cfg.HTTP = u
	}
	if v := getenv("https_proxy"); v != "" {
		u, err := url.Parse(v)
		if err != nil {
			return ProxyConfig{}, fmt.Errorf("invalid https_proxy '%s': %w", v, err)
		}
		cfg.HTTPS = u
	}
	return cfg, nil
}

// forRequest selects the proxy for a request by its URL scheme.
func (p ProxyConfig) forRequest(req *http.Request) (*url.URL, error) {
	switch req.URL.Scheme {
	case "https":
		return p.HTTPS, nil
	case "http":
		return p.HTTP, nil
	default:
		return nil, nil
	}
}

// NewClient creates an *http.Client with the proxy and TLS settings applied
// uniformly to every call. Timeouts are per call (context deadlines set by
// the geocoder), so no client-wide timeout is configured here.
func NewClient(verifySSL bool, proxy ProxyConfig) *http.Client {
	transport := &http.Transport{
		Proxy: proxy.forRequest,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !verifySSL,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if !verifySSL {
		logging.Logf(logging.Info, "TLS certificate verification is DISABLED")
	}
	if proxy.HTTP != nil {
		logging.Logf(logging.Debug, "Using http proxy %s", proxy.HTTP)
	}
	if proxy.HTTPS != nil {
		logging.Logf(logging.Debug, "Using https proxy %s", proxy.HTTPS)
	}

	return &http.Client{Transport: transport}
}
