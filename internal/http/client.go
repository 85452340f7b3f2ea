package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// KeyProvider supplies the API key attached to authenticated requests.
type KeyProvider interface {
	APIKey() string
}

// Logger interface for the HTTP layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is the HTTP client used to talk to the ERP.
type Client struct {
	baseURL     string
	keys        KeyProvider
	retryClient *retryablehttp.Client
	logger      Logger
	debug       bool
	userAgent   string
	metrics     *Metrics
}

// Request describes an outgoing request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	// Unauthenticated requests never carry the API key header.
	Unauthenticated bool
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries on 5xx, 429 and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = retryMax
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.retryClient.HTTPClient = httpClient
		}
	}
}

// WithTimeout bounds each request attempt. The timeout is set on a copy so a
// client passed to WithHTTPClient is left as it was.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			clone := *c.retryClient.HTTPClient
			clone.Timeout = timeout
			c.retryClient.HTTPClient = &clone
		}
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a new HTTP client. Retries are disabled until WithRetryConfig is applied.
func NewClient(baseURL string, keys KeyProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		keys:        keys,
		retryClient: retryClient,
		userAgent:   constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request. A non-2xx status returns the response together with a *doli.TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body interface{}

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = payload
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(httpReq, req)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     method,
			"url":        fullURL,
			"request_id": httpReq.Header.Get(constants.RequestIDHeader),
		})
	}

	start := time.Now()
	httpResp, err := c.retryClient.Do(httpReq)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.observe(method, endpointLabel(req.Path), "error", elapsed)

		return nil, &doli.TransportError{Method: method, URL: fullURL, Cause: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	c.metrics.observe(method, endpointLabel(req.Path), strconv.Itoa(httpResp.StatusCode), elapsed)

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &doli.TransportError{Method: method, URL: fullURL, StatusCode: httpResp.StatusCode, Cause: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": elapsed.String(),
			"bytes":    len(respBody),
		})
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Warn("request failed", map[string]interface{}{
				"method": method,
				"path":   req.Path,
				"status": httpResp.StatusCode,
			})
		}

		return resp, &doli.TransportError{Method: method, URL: fullURL, StatusCode: httpResp.StatusCode}
	}

	return resp, nil
}

func (c *Client) setHeaders(httpReq *retryablehttp.Request, req *Request) {
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.RequestIDHeader, uuid.NewString())

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.Unauthenticated && c.keys != nil {
		key := c.keys.APIKey()
		if key != "" {
			httpReq.Header.Set(constants.APIKeyHeader, key)
		}
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// endpointLabel reduces a request path to its first segment below the API
// prefix, so ids in the path do not become metric labels.
func endpointLabel(path string) string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(path, constants.APIPrefix), "/")

	segment, _, _ := strings.Cut(endpoint, "/")

	return segment
}
