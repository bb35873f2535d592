// Package api provides the low-level HTTP client for the Shopie backend.
//
// The client is a thin request builder: it composes URLs against a fixed
// base, attaches JSON and bearer-token headers, and normalizes non-2xx
// responses into *HTTPError values. Business semantics live in the domain
// packages on top of it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopie/shopie-cli/internal/metrics"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 10 * time.Second

// Client talks to the Shopie backend REST API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new backend API client for the given base URL.
// Options can be used to override the defaults.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
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

// requestOptions holds per-request overrides collected from RequestOption values.
type requestOptions struct {
	headers http.Header
	query   url.Values
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithHeader sets a header on the request. Caller-supplied headers override
// the client defaults.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithBearerToken attaches an Authorization: Bearer header to the request.
func WithBearerToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithQuery adds a query string parameter to the request URL.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Set(key, value)
	}
}

// Do performs an HTTP request against the backend.
//
// body, when non-nil, is marshaled as JSON. out, when non-nil, receives the
// JSON-decoded response body. A non-2xx response yields *HTTPError carrying
// the response body as message; a network-level failure yields
// *TransportError. There are no retries.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}

	fullURL := c.baseURL + path
	if len(ro.query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		fullURL += sep + ro.query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for key, values := range ro.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	c.logger.Debug("api request",
		"method", method,
		"url", fullURL,
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, "transport_error", time.Since(start))
		c.logger.Debug("api transport failure",
			"method", method,
			"url", fullURL,
			"request_id", requestID,
			"error", err,
		)
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordRequest(method, "http_error", time.Since(start))
		message := ""
		if readErr == nil {
			message = strings.TrimSpace(string(respBody))
		}
		if message == "" {
			message = fmt.Sprintf("HTTP error, status=%d", resp.StatusCode)
		}
		c.logger.Debug("api error response",
			"method", method,
			"url", fullURL,
			"request_id", requestID,
			"status", resp.StatusCode,
		)
		return &HTTPError{Status: resp.StatusCode, Message: message}
	}

	c.metrics.RecordRequest(method, "ok", time.Since(start))

	if readErr != nil {
		return fmt.Errorf("read response body: %w", readErr)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
