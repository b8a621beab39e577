package requesty

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Limbus-Foundation/requesty/internal/backoff"
)

// WithAppName sets the name attached to every log line.
func WithAppName(name string) Option {
	return func(c *Client) {
		c.config.AppName = name
	}
}

// WithResponseFormat selects how response bodies are decoded.
func WithResponseFormat(format ResponseFormat) Option {
	return func(c *Client) {
		c.config.ResponseFormat = format
	}
}

// WithHeaders adds default headers sent with every call.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.config.Headers[key] = value
		}
	}
}

// WithHeader adds one default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.config.Headers[key] = value
	}
}

// WithTimeout bounds each attempt; zero disables the timer.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = d
	}
}

// WithRetry sets how many extra attempts follow a 5xx response or a network
// error.
func WithRetry(n int) Option {
	return func(c *Client) {
		c.config.Retry = n
	}
}

// WithRetryBackoff waits between attempts using exponential backoff with 10%
// jitter. Without it retries are immediate.
func WithRetryBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoff.NewPolicy(backoff.Exponential{}, backoff.Params{
			Initial:    initial,
			Max:        max,
			Multiplier: 2.0,
			Jitter:     0.1,
		})
	}
}

// WithDecorrelatedBackoff waits between attempts using decorrelated jitter.
func WithDecorrelatedBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoff.NewPolicy(backoff.Decorrelated{}, backoff.Params{
			Initial: initial,
			Max:     max,
		})
	}
}

// WithDebug enables debug narration. A logrus logger on stderr is installed
// unless another logger is set.
func WithDebug() Option {
	return func(c *Client) {
		c.config.Debug = true
		c.debug.Enabled = true
	}
}

// WithDebugConfig replaces the debug configuration with a copy of config.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		if config == nil {
			return
		}
		copied := *config
		c.debug = &copied
		c.config.Debug = copied.Enabled
	}
}

// WithLogger sets the logger used for debug narration.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLogrus narrates through an existing logrus logger.
func WithLogrus(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = NewLogrusLogger(logger)
	}
}

// WithRequestIDGenerator sets the function producing request IDs for logs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.debug.RequestIDGen = gen
	}
}

// WithTransport replaces the network primitive.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithHTTPClient sends through client instead of a default *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(client)
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsRegistry enables Prometheus metrics on registry.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(registry)
	}
}

// WithMetricsCollector shares an existing collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithRequestInterceptor installs the request interceptor.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptor = fn
	}
}

// WithResponseInterceptor installs the response interceptor.
func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptor = fn
	}
}

// ValidateConfiguration returns every configuration problem as a single
// Validation error.
func (c *Client) ValidateConfiguration() error {
	c.mu.RLock()
	problems := c.config.Validate()
	c.mu.RUnlock()

	problems = append(problems, c.validateTransportConfig()...)
	problems = append(problems, c.validateDebugConfig()...)
	problems = append(problems, c.validateBackoffConfig()...)

	if len(problems) > 0 {
		return &RequestError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}
	return nil
}

func (c *Client) validateTransportConfig() []string {
	if c.transport == nil {
		return []string{"transport cannot be nil"}
	}
	return nil
}

func (c *Client) validateDebugConfig() []string {
	var problems []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			problems = append(problems, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			problems = append(problems, "logger must be set when debug is enabled")
		}
	}
	return problems
}

func (c *Client) validateBackoffConfig() []string {
	if c.backoff == nil {
		return nil
	}

	var problems []string
	params := c.backoff.Params()
	if params.Initial <= 0 {
		problems = append(problems, "backoff initial must be positive")
	}
	if params.Max < params.Initial {
		problems = append(problems, "backoff max must be greater than or equal to initial")
	}
	return problems
}
