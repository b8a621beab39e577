package requesty

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
)

var errEmptyBody = errors.New("requesty: empty response body")

// Transport performs one network exchange. It is the only I/O boundary of
// the client; tests substitute it with a TransportFunc.
type Transport interface {
	Send(ctx context.Context, req *RequestDescriptor) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *RequestDescriptor) (*Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *RequestDescriptor) (*Response, error) {
	return f(ctx, req)
}

// Response is a fully read transport response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON unmarshals the body into out. An empty body is an error.
func (r *Response) JSON(out any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(r.Body, out)
}

// Clone returns a copy that shares no memory with r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
	}
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	return clone
}

// HTTPTransport sends requests through a *http.Client and reads the whole
// body before returning, so cancelling ctx also bounds the body read.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client; nil selects a client without a global
// timeout, since the executor bounds every attempt itself.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req *RequestDescriptor) (*Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errors.Wrap(err, "build http request")
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", UserAgent())
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}
