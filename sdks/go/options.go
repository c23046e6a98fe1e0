package authzgate

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the authz-gate server address.
// If not set, defaults to the AUTHZGATE_SERVER_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) {
		c.serverAddr = addr
	}
}

// WithAPIKey sets the bearer credential used to authenticate with the
// authz-gate server. If not set, defaults to the AUTHZGATE_API_KEY
// environment variable.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithFailMode sets the fail mode when the server is unreachable.
// Valid values are "open" (allow on failure) and "closed" (deny on failure).
// If not set, defaults to the AUTHZGATE_FAIL_MODE environment variable or "open".
func WithFailMode(mode string) Option {
	return func(c *Client) {
		c.failMode = mode
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to the AUTHZGATE_TIMEOUT environment variable or 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCacheTTL sets the cache entry time-to-live.
// If not set, defaults to the AUTHZGATE_CACHE_TTL environment variable or 5 seconds.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = d
	}
}

// WithCacheMaxSize sets the maximum number of entries in the cache.
// If not set, defaults to the AUTHZGATE_CACHE_MAX_SIZE environment variable or 1000.
func WithCacheMaxSize(n int) Option {
	return func(c *Client) {
		c.cacheMaxSize = n
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSubject sets the default subject used when a Request does not
// specify one.
func WithSubject(subject map[string]any) Option {
	return func(c *Client) {
		c.subject = subject
	}
}
