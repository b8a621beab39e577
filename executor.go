package requesty

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// call is the per-call state threaded through one execution.
type call struct {
	ctx       context.Context
	desc      *RequestDescriptor
	handle    *CancelHandle
	requestID string
	endpoint  string
	start     time.Time
}

// callState is what a call reads from the mutable part of the client when it
// starts; later changes do not reach calls already in flight.
type callState struct {
	baseURL             string
	requestInterceptor  RequestInterceptor
	responseInterceptor ResponseInterceptor
}

func (c *Client) snapshot() callState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return callState{
		baseURL:             c.config.BaseURL,
		requestInterceptor:  c.requestInterceptor,
		responseInterceptor: c.responseInterceptor,
	}
}

// execute performs one logical call with its retries. It never returns nil
// and never panics because of transport or interceptor failures.
func (c *Client) execute(ctx context.Context, method, path string, headers map[string]string, body Body, handle *CancelHandle) *Result {
	if handle == nil {
		handle = NewCancelHandle()
	}
	state := c.snapshot()

	desc, err := c.compose(state.baseURL, method, path, headers, body)
	cl := &call{
		ctx:       ctx,
		desc:      desc,
		handle:    handle,
		requestID: c.newRequestID(),
		endpoint:  endpointOf(desc.URL),
		start:     time.Now(),
	}
	if err != nil {
		if c.logEnabled(c.debug.LogRequests) {
			c.logger.Error("Request body encoding failed", c.fields(cl.requestID, "error", err.Error())...)
		}
		return c.failure(cl, ErrorTypeEncode, err.Error(), err, 0)
	}

	c.interceptRequest(cl, state.requestInterceptor)
	cl.endpoint = endpointOf(cl.desc.URL)

	if c.logEnabled(c.debug.LogRequests) {
		c.logger.Debug("Starting request", c.fields(cl.requestID, "method", cl.desc.Method, "url", cl.desc.URL)...)
	}
	c.metrics.RecordRequestStart(cl.desc.Method, cl.endpoint)

	res := c.run(cl, state.responseInterceptor)

	c.metrics.RecordRequestEnd(cl.desc.Method, cl.endpoint)
	c.metrics.RecordRequest(cl.desc.Method, cl.endpoint, res.Status, time.Since(cl.start))
	return res
}

// compose builds the descriptor: base URL with one trailing slash removed,
// "/" and path; default headers overridden by call headers; encoded body.
// The descriptor is returned even when the body fails to encode.
func (c *Client) compose(baseURL, method, path string, headers map[string]string, body Body) (*RequestDescriptor, error) {
	desc := &RequestDescriptor{
		URL:    strings.TrimSuffix(baseURL, "/") + "/" + path,
		Method: method,
		Header: make(http.Header, len(c.config.Headers)+len(headers)),
	}
	for key, value := range c.config.Headers {
		desc.Header.Set(key, value)
	}
	for key, value := range headers {
		desc.Header.Set(key, value)
	}

	if body == nil {
		return desc, nil
	}

	data, contentType, err := body.encode()
	if err != nil {
		return desc, err
	}
	desc.Body = data
	desc.Header.Del(headerContentType)
	if contentType != "" {
		desc.Header.Set(headerContentType, contentType)
	}
	return desc, nil
}

// run drives the attempts: Retry+1 sends at most, retrying 5xx responses and
// network errors while attempts remain. Timeouts and cancellations end the
// call immediately.
func (c *Client) run(cl *call, onResponse ResponseInterceptor) *Result {
	attempts := c.config.Retry + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		remaining := attempt < attempts

		if attempt > 1 {
			c.metrics.RecordRetry(cl.desc.Method, cl.endpoint, attempt-1)
			if err := c.wait(cl, attempt-1); err != nil {
				return c.interrupted(cl, err, attempt-1)
			}
		}
		if cl.handle.Canceled() {
			return c.interrupted(cl, ErrCanceled, attempt-1)
		}

		resp, err := c.send(cl)
		if err != nil {
			switch {
			case errors.Is(err, ErrTimeout), errors.Is(err, ErrCanceled):
				return c.interrupted(cl, err, attempt)
			case remaining:
				c.metrics.RecordError(ErrorTypeNetwork, cl.desc.Method, cl.endpoint)
				if c.logEnabled(c.debug.LogRetries) {
					c.logger.Warn("Retrying after request error", c.fields(cl.requestID, "attempt", attempt, "retry", c.config.Retry, "error", err.Error())...)
				}
				continue
			default:
				if c.logEnabled(c.debug.LogRequests) {
					c.logger.Error("Request error", c.fields(cl.requestID, "attempt", attempt, "error", err.Error())...)
				}
				return c.failure(cl, ErrorTypeNetwork, err.Error(), err, attempt)
			}
		}

		c.interceptResponse(cl, onResponse, resp.Clone())
		data := c.decode(cl, resp)

		if !resp.OK() {
			if remaining && resp.Status >= 500 {
				c.metrics.RecordError(ErrorTypeServer, cl.desc.Method, cl.endpoint)
				if c.logEnabled(c.debug.LogRetries) {
					c.logger.Warn("Retrying after server error", c.fields(cl.requestID, "attempt", attempt, "retry", c.config.Retry, "status", resp.Status)...)
				}
				continue
			}
			if c.logEnabled(c.debug.LogRequests) {
				c.logger.Error("Fetch error", c.fields(cl.requestID, "status", resp.Status, "attempt", attempt)...)
			}
			return c.statusFailure(cl, resp, data, attempt)
		}

		c.cache.store(cl.desc.URL, data)
		c.metrics.RecordCacheSize(c.cache.Len())
		if c.logEnabled(c.debug.LogCache) {
			c.logger.Debug("Response cached", c.fields(cl.requestID, "url", cl.desc.URL)...)
		}
		if c.logEnabled(c.debug.LogRequests) {
			c.logger.Info("Request completed", c.fields(cl.requestID, "method", cl.desc.Method, "url", cl.desc.URL, "status", resp.Status, "attempts", attempt)...)
		}

		return &Result{
			Success:  true,
			Status:   resp.Status,
			Data:     data,
			Handle:   cl.handle,
			Header:   resp.Header,
			Raw:      resp.Body,
			Attempts: attempt,
		}
	}

	return c.failure(cl, ErrorTypeNetwork, ErrAttemptsExhausted.Error(), ErrAttemptsExhausted, attempts)
}

// send performs one attempt bounded by the timeout, the call context and the
// cancel handle. Interruptions come back wrapping ErrTimeout or ErrCanceled.
func (c *Client) send(cl *call) (*Response, error) {
	attemptCtx, cancel := context.WithCancelCause(cl.ctx)
	defer cancel(nil)

	detach := cl.handle.bind(cancel)
	defer detach()

	if c.config.Timeout > 0 {
		timer := time.AfterFunc(c.config.Timeout, func() {
			cancel(ErrTimeout)
		})
		defer timer.Stop()
	}

	resp, err := c.transport.Send(attemptCtx, cl.desc)
	if err == nil {
		// A transport may ignore ctx and answer after the attempt ended.
		if interrupt := interruption(attemptCtx, "response arrived after attempt ended"); interrupt != nil {
			return nil, interrupt
		}
		if resp == nil {
			return nil, errors.New("transport returned no response")
		}
		return resp, nil
	}

	if interrupt := interruption(attemptCtx, err.Error()); interrupt != nil {
		return nil, interrupt
	}
	return nil, err
}

// interruption maps an ended attempt context to ErrTimeout or ErrCanceled.
func interruption(attemptCtx context.Context, msg string) error {
	if attemptCtx.Err() == nil {
		return nil
	}
	cause := context.Cause(attemptCtx)
	if errors.Is(cause, ErrTimeout) || errors.Is(cause, context.DeadlineExceeded) {
		return errors.Wrap(ErrTimeout, msg)
	}
	return errors.Wrap(ErrCanceled, msg)
}

// wait sleeps the backoff delay before retry number retry.
func (c *Client) wait(cl *call, retry int) error {
	delay := c.backoff.Delay(retry)
	if delay <= 0 {
		return nil
	}

	if c.logEnabled(c.debug.LogRetries) {
		c.logger.Info("Scheduling retry", c.fields(cl.requestID, "retry", retry, "backoff", delay)...)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-cl.ctx.Done():
		if errors.Is(cl.ctx.Err(), context.DeadlineExceeded) {
			return errors.Wrap(ErrTimeout, "waiting for retry")
		}
		return errors.Wrap(ErrCanceled, "waiting for retry")
	case <-cl.handle.Done():
		return ErrCanceled
	}
}

func (c *Client) interceptRequest(cl *call, fn RequestInterceptor) {
	if fn == nil {
		return
	}

	candidate := cl.desc.Clone()
	var replacement *RequestDescriptor
	err := protect(func() error {
		var err error
		replacement, err = fn(cl.ctx, candidate)
		return err
	})
	if err != nil {
		c.metrics.RecordInterceptorError("request")
		if c.logEnabled(c.debug.LogInterceptors) {
			c.logger.Error("Request interceptor error", c.fields(cl.requestID, "error", err.Error())...)
		}
		return
	}

	if replacement != nil {
		cl.desc = replacement
		return
	}
	cl.desc = candidate
}

func (c *Client) interceptResponse(cl *call, fn ResponseInterceptor, resp *Response) {
	if fn == nil {
		return
	}

	err := protect(func() error {
		return fn(cl.ctx, resp)
	})
	if err != nil {
		c.metrics.RecordInterceptorError("response")
		if c.logEnabled(c.debug.LogInterceptors) {
			c.logger.Error("Response interceptor error", c.fields(cl.requestID, "error", err.Error())...)
		}
	}
}

// protect turns a panic in user code into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("interceptor panic: %v", r)
		}
	}()
	return fn()
}

// decode parses the body in the configured format. Undecodable JSON yields
// nil data without failing the call.
func (c *Client) decode(cl *call, resp *Response) any {
	if c.config.ResponseFormat == FormatText {
		return resp.Text()
	}

	var data any
	if err := resp.JSON(&data); err != nil {
		if errors.Is(err, errEmptyBody) {
			return nil
		}
		c.metrics.RecordError(ErrorTypeParse, cl.desc.Method, cl.endpoint)
		if c.logEnabled(c.debug.LogRequests) {
			c.logger.Debug("Response body is not valid JSON", c.fields(cl.requestID, "status", resp.Status, "error", err.Error())...)
		}
		return nil
	}
	return data
}

// interrupted reports a timeout or cancellation.
func (c *Client) interrupted(cl *call, err error, attempt int) *Result {
	if errors.Is(err, ErrTimeout) {
		if c.logEnabled(c.debug.LogRequests) {
			c.logger.Warn("Request timeout", c.fields(cl.requestID, "timeout", c.config.Timeout, "attempt", attempt)...)
		}
		return c.failure(cl, ErrorTypeTimeout, "Timeout", err, attempt)
	}

	if c.logEnabled(c.debug.LogRequests) {
		c.logger.Warn("Request canceled", c.fields(cl.requestID, "attempt", attempt)...)
	}
	return c.failure(cl, ErrorTypeCanceled, "Canceled", err, attempt)
}

func (c *Client) requestError(cl *call, errorType, message string, cause error, attempt int) *RequestError {
	return &RequestError{
		Type:       errorType,
		Message:    message,
		Cause:      cause,
		RequestID:  cl.requestID,
		Method:     cl.desc.Method,
		URL:        cl.desc.URL,
		Attempt:    attempt,
		MaxRetries: c.config.Retry,
		Timestamp:  time.Now(),
		Duration:   time.Since(cl.start),
	}
}

// failure builds a result for a call that ended without a usable response.
func (c *Client) failure(cl *call, errorType, message string, cause error, attempt int) *Result {
	c.metrics.RecordError(errorType, cl.desc.Method, cl.endpoint)
	return &Result{
		Error:    true,
		Message:  message,
		Handle:   cl.handle,
		Err:      c.requestError(cl, errorType, message, cause, attempt),
		Attempts: attempt,
	}
}

// statusFailure builds a result for a terminal non-2xx response.
func (c *Client) statusFailure(cl *call, resp *Response, data any, attempt int) *Result {
	errorType := ErrorTypeClient
	if resp.Status >= 500 {
		errorType = ErrorTypeServer
	}
	c.metrics.RecordError(errorType, cl.desc.Method, cl.endpoint)

	reqErr := c.requestError(cl, errorType, fmt.Sprintf("unexpected status %d", resp.Status), nil, attempt)
	reqErr.Status = resp.Status

	return &Result{
		Status:   resp.Status,
		Data:     data,
		Error:    true,
		Handle:   cl.handle,
		Err:      reqErr,
		Header:   resp.Header,
		Raw:      resp.Body,
		Attempts: attempt,
	}
}

func (c *Client) unsupportedMethod(method string, handle *CancelHandle) *Result {
	if handle == nil {
		handle = NewCancelHandle()
	}
	message := fmt.Sprintf("unsupported method %q", method)
	return &Result{
		Error:   true,
		Message: message,
		Handle:  handle,
		Err: &RequestError{
			Type:      ErrorTypeValidation,
			Message:   message,
			Method:    method,
			Timestamp: time.Now(),
		},
	}
}
