package requesty

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// ResponseFormat selects how a response body is turned into Result.Data.
type ResponseFormat string

const (
	// FormatJSON decodes the body as JSON into generic Go values.
	FormatJSON ResponseFormat = "json"
	// FormatText keeps the body as a string.
	FormatText ResponseFormat = "text"
)

// Params holds query parameters. Values are scalars; nil and "" are skipped.
type Params map[string]any

// RequestDescriptor is the fully composed request handed to the Transport.
// A fresh descriptor is built per call and may be changed by the request
// interceptor before the first attempt.
type RequestDescriptor struct {
	URL    string
	Method string
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy of the descriptor.
func (d *RequestDescriptor) Clone() *RequestDescriptor {
	if d == nil {
		return nil
	}
	clone := &RequestDescriptor{
		URL:    d.URL,
		Method: d.Method,
		Header: d.Header.Clone(),
	}
	if d.Body != nil {
		clone.Body = append([]byte(nil), d.Body...)
	}
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	return clone
}

// RequestInterceptor observes or rewrites the outgoing request. Returning a
// non-nil descriptor replaces the one being sent. Errors and panics are
// logged and otherwise ignored.
type RequestInterceptor func(ctx context.Context, req *RequestDescriptor) (*RequestDescriptor, error)

// ResponseInterceptor observes a copy of every response received. Errors and
// panics are logged and otherwise ignored.
type ResponseInterceptor func(ctx context.Context, resp *Response) error

// CallConfig carries the per-call settings of a verb method.
type CallConfig struct {
	// Route is appended to the path as escaped segments; nil and "" are dropped.
	Route []any
	// Query is appended as the query string.
	Query Params
	// Headers override the client defaults for this call.
	Headers map[string]string
	// Body is sent by POST, PUT and PATCH. GET and DELETE ignore it.
	Body Body
	// Handle lets the caller abort the call while it is in flight. One is
	// created when nil.
	Handle *CancelHandle
	// Callback receives the same Result the verb method returns.
	Callback func(*Result)
}

// Result is the normalized outcome of a call. Failures never surface as Go
// errors from the verb methods; they are described by Success, Error,
// Message and Err.
type Result struct {
	Success bool
	Status  int
	Data    any
	Error   bool
	Message string
	Handle  *CancelHandle

	// Err describes the failure as a *RequestError; nil on success.
	Err error
	// Header is the header of the last response received, if any.
	Header http.Header
	// Raw is the undecoded body of the last response received.
	Raw []byte
	// Attempts is the number of network sends performed.
	Attempts int
}

// Decode unmarshals the raw response body into out.
func (r *Result) Decode(out any) error {
	if r == nil || len(r.Raw) == 0 {
		return errors.Wrap(errEmptyBody, "decode result")
	}
	if err := json.Unmarshal(r.Raw, out); err != nil {
		return errors.Wrap(err, "decode result")
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)
