package authzgate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is the authz-gate SDK client. It communicates with the decision
// service's /authorize endpoint to evaluate actions against the active
// policy.
type Client struct {
	serverAddr string
	apiKey     string
	failMode   string
	timeout    time.Duration
	httpClient *http.Client
	subject    map[string]any

	// Cache fields.
	cache        sync.Map
	cacheTTL     time.Duration
	cacheMaxSize int
	cacheCount   int64
	cacheMu      sync.Mutex

	logger *slog.Logger
}

// cacheEntry is a cached authorize response with expiry.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
	createdAt time.Time
}

// NewClient creates a new authz-gate SDK client. It reads configuration
// from AUTHZGATE_* environment variables by default; options override.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr:   os.Getenv("AUTHZGATE_SERVER_ADDR"),
		apiKey:       os.Getenv("AUTHZGATE_API_KEY"),
		failMode:     envOrDefault("AUTHZGATE_FAIL_MODE", "open"),
		timeout:      parseDurationEnv("AUTHZGATE_TIMEOUT", 5*time.Second),
		cacheTTL:     parseDurationEnv("AUTHZGATE_CACHE_TTL", 5*time.Second),
		cacheMaxSize: parseIntEnv("AUTHZGATE_CACHE_MAX_SIZE", 1000),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// Authorize sends an authorization request to the server and returns the
// decision. On deny, it returns a *DeniedError. On server unreachable with
// fail_mode=open (the default), it returns an allow response instead of an
// error; fail_mode=closed returns a *ServerUnreachableError.
func (c *Client) Authorize(ctx context.Context, req Request) (*Response, error) {
	if req.Subject == nil {
		req.Subject = c.subject
	}

	cacheKey := c.buildCacheKey(req)
	if resp, ok := c.getFromCache(cacheKey); ok {
		return resp, nil
	}

	resp, err := c.doAuthorize(ctx, req)
	if err != nil {
		if isConnectionError(err) {
			if c.failMode == "closed" {
				return nil, &ServerUnreachableError{Cause: err}
			}
			c.logger.Warn("authz-gate server unreachable, failing open",
				"server_addr", c.serverAddr,
				"error", err,
			)
			return &Response{
				Decision: true,
				Reason:   "server unreachable, fail-open",
			}, nil
		}
		return nil, err
	}

	if !resp.Decision {
		return nil, &DeniedError{Reason: resp.Reason, TraceID: resp.TraceID}
	}

	if !req.DryRun {
		c.putInCache(cacheKey, resp)
	}
	return resp, nil
}

// Check is a convenience method that evaluates a request and returns a
// boolean. Unlike Authorize, it does not return an error on denial.
func (c *Client) Check(ctx context.Context, req Request) (bool, error) {
	resp, err := c.Authorize(ctx, req)
	if err != nil {
		var denied *DeniedError
		if errors.As(err, &denied) {
			return false, nil
		}
		return false, err
	}
	return resp.Decision, nil
}

// doAuthorize sends the HTTP request to the decision endpoint.
func (c *Client) doAuthorize(ctx context.Context, req Request) (*Response, error) {
	var resp Response
	if err := c.doRequest(ctx, http.MethodPost, "/authorize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest performs an HTTP request to the authz-gate server.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	url := strings.TrimRight(c.serverAddr, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &AuthzGateError{
			Code: fmt.Sprintf("HTTP_%d", httpResp.StatusCode),
			Err:  fmt.Errorf("server returned %d: %s", httpResp.StatusCode, string(respBody)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// buildCacheKey creates a cache key from the authorize request. Key is
// based on action and a hash of subject+resource so two identical requests
// from the same subject against the same resource share one cache entry.
func (c *Client) buildCacheKey(req Request) string {
	h := sha256.New()
	if req.Subject != nil {
		b, _ := json.Marshal(req.Subject)
		h.Write(b)
	}
	if req.Resource != nil {
		b, _ := json.Marshal(req.Resource)
		h.Write(b)
	}
	hash := hex.EncodeToString(h.Sum(nil))[:16]
	return fmt.Sprintf("%s:%s", req.Action, hash)
}

// getFromCache retrieves a cached response if it exists and hasn't expired.
func (c *Client) getFromCache(key string) (*Response, bool) {
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(key)
		c.cacheMu.Lock()
		c.cacheCount--
		c.cacheMu.Unlock()
		return nil, false
	}
	return entry.response, true
}

// putInCache stores a response in the cache.
func (c *Client) putInCache(key string, resp *Response) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Best-effort eviction: if over max size, delete some expired entries.
	if c.cacheCount >= int64(c.cacheMaxSize) {
		now := time.Now()
		evicted := 0
		c.cache.Range(func(k, v any) bool {
			entry := v.(*cacheEntry)
			if now.After(entry.expiresAt) {
				c.cache.Delete(k)
				evicted++
			}
			return evicted < 100
		})
		c.cacheCount -= int64(evicted)

		if c.cacheCount >= int64(c.cacheMaxSize) {
			var oldest time.Time
			var oldestKey any
			c.cache.Range(func(k, v any) bool {
				entry := v.(*cacheEntry)
				if oldest.IsZero() || entry.createdAt.Before(oldest) {
					oldest = entry.createdAt
					oldestKey = k
				}
				return true
			})
			if oldestKey != nil {
				c.cache.Delete(oldestKey)
				c.cacheCount--
			}
		}
	}

	c.cache.Store(key, &cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(c.cacheTTL),
		createdAt: time.Now(),
	})
	c.cacheCount++
}

// isConnectionError determines if an error is a connection-level error
// (server unreachable, connection refused, timeout, etc.).
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var agErr *AuthzGateError
	if errors.As(err, &agErr) {
		return false
	}

	// All other errors from http.Client.Do are connection errors
	// (DNS resolution, connection refused, TLS handshake, timeouts).
	return true
}

// Helper functions for env var parsing.

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultVal
}
