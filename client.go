package requesty

import (
	"context"
	"net/http"
	"sync"

	"github.com/Limbus-Foundation/requesty/internal/backoff"
)

// Client is an HTTP convenience client bound to one base URL. It composes
// paths from route segments and query parameters, runs interceptors, bounds
// every attempt with a timeout, retries transient failures and reports every
// outcome as a *Result. It is safe for concurrent use.
type Client struct {
	mu     sync.RWMutex
	config ClientConfig

	requestInterceptor  RequestInterceptor
	responseInterceptor ResponseInterceptor

	transport Transport
	backoff   *backoff.Policy
	cache     *ResponseCache
	metrics   *MetricsCollector
	debug     *DebugConfig
	logger    Logger

	validationError error
}

// New constructs a Client for baseURL with the default configuration and the
// given options.
func New(baseURL string, options ...Option) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewFromConfig(cfg, options...)
}

// NewFromConfig constructs a Client from cfg. Zero AppName, ResponseFormat
// and Timeout take their defaults. A best effort validation is performed;
// call IsValid / ValidationError for problems.
func NewFromConfig(cfg ClientConfig, options ...Option) *Client {
	cfg = cfg.clone()
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.ResponseFormat == "" {
		cfg.ResponseFormat = FormatJSON
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	client := &Client{
		config:    cfg,
		transport: NewHTTPTransport(nil),
		cache:     newResponseCache(),
		debug:     DefaultDebugConfig(),
	}
	client.debug.Enabled = cfg.Debug

	for _, option := range options {
		option(client)
	}

	if client.debug.Enabled && client.logger == nil {
		client.logger = NewSimpleLogger()
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the construction-time validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Config returns a copy of the current configuration.
func (c *Client) Config() ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.clone()
}

// BaseURL returns the base URL used by new calls.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.BaseURL
}

// SetBaseURL replaces the base URL for subsequent calls. Calls already in
// flight keep the URL they started with.
func (c *Client) SetBaseURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.BaseURL = url
}

// SetRequestInterceptor replaces the request interceptor; nil removes it.
func (c *Client) SetRequestInterceptor(fn RequestInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestInterceptor = fn
}

// SetResponseInterceptor replaces the response interceptor; nil removes it.
func (c *Client) SetResponseInterceptor(fn ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responseInterceptor = fn
}

// CancelRequest aborts the call bound to handle. A nil handle is ignored.
func (c *Client) CancelRequest(handle *CancelHandle) {
	handle.Cancel()
}

// CacheSize returns the number of URLs recorded by successful calls.
func (c *Client) CacheSize() int {
	return c.cache.Len()
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, cfg *CallConfig) *Result {
	return c.Do(ctx, http.MethodGet, path, cfg)
}

// Post sends a POST request with cfg.Body.
func (c *Client) Post(ctx context.Context, path string, cfg *CallConfig) *Result {
	return c.Do(ctx, http.MethodPost, path, cfg)
}

// Put sends a PUT request with cfg.Body.
func (c *Client) Put(ctx context.Context, path string, cfg *CallConfig) *Result {
	return c.Do(ctx, http.MethodPut, path, cfg)
}

// Patch sends a PATCH request with cfg.Body.
func (c *Client) Patch(ctx context.Context, path string, cfg *CallConfig) *Result {
	return c.Do(ctx, http.MethodPatch, path, cfg)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, cfg *CallConfig) *Result {
	return c.Do(ctx, http.MethodDelete, path, cfg)
}

// Do sends method to path with route and query from cfg appended. Only
// GET, POST, PUT, PATCH and DELETE are accepted. The result is delivered to
// cfg.Callback, when set, before it is returned.
func (c *Client) Do(ctx context.Context, method, path string, cfg *CallConfig) *Result {
	if cfg == nil {
		cfg = &CallConfig{}
	}

	var res *Result
	switch method {
	case http.MethodGet, http.MethodDelete:
		res = c.execute(ctx, method, c.target(path, cfg), cfg.Headers, nil, cfg.Handle)
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		res = c.execute(ctx, method, c.target(path, cfg), cfg.Headers, cfg.Body, cfg.Handle)
	default:
		res = c.unsupportedMethod(method, cfg.Handle)
	}

	if cfg.Callback != nil {
		cfg.Callback(res)
	}
	return res
}

func (c *Client) target(path string, cfg *CallConfig) string {
	return path + EncodeRoute(cfg.Route) + EncodeQuery(cfg.Query)
}

// Data returns r.Data, or nil for a nil result.
func (c *Client) Data(r *Result) any {
	if r == nil {
		return nil
	}
	return r.Data
}

// Success returns r.Success, or false for a nil result.
func (c *Client) Success(r *Result) bool {
	if r == nil {
		return false
	}
	return r.Success
}

// Status returns r.Status, or 0 for a nil result.
func (c *Client) Status(r *Result) int {
	if r == nil {
		return 0
	}
	return r.Status
}

// Error returns r.Error, or false for a nil result.
func (c *Client) Error(r *Result) bool {
	if r == nil {
		return false
	}
	return r.Error
}
