package requesty

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{
		Type:       ErrorTypeNetwork,
		Message:    "connection refused",
		Cause:      errors.New("dial tcp"),
		RequestID:  "abc",
		Attempt:    2,
		MaxRetries: 3,
	}

	assert.Equal(t, "[abc] Network: connection refused (dial tcp) (attempt 2/4)", err.Error())
}

func TestRequestErrorIsMatchesType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RequestError{Type: ErrorTypeTimeout, Cause: ErrTimeout})

	assert.True(t, errors.Is(err, &RequestError{Type: ErrorTypeTimeout}))
	assert.False(t, errors.Is(err, &RequestError{Type: ErrorTypeServer}))
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestRequestErrorNil(t *testing.T) {
	var err *RequestError

	assert.Equal(t, "<nil>", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.False(t, err.Is(&RequestError{}))
	assert.Equal(t, "Error: <nil>", err.DebugInfo())
}

func TestRequestErrorDebugInfo(t *testing.T) {
	err := &RequestError{
		Type:       ErrorTypeServer,
		Message:    "unexpected status 502",
		Method:     "GET",
		URL:        "https://api.test/items",
		Status:     502,
		Attempt:    1,
		MaxRetries: 0,
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   15 * time.Millisecond,
	}

	info := err.DebugInfo()
	for _, line := range []string{
		"Error Type: Server",
		"URL: https://api.test/items",
		"Status Code: 502",
		"Attempt: 1/1",
		"Timestamp: 2024-01-02T03:04:05Z",
		"Duration: 15ms",
	} {
		assert.True(t, strings.Contains(info, line), "missing %q in:\n%s", line, info)
	}
	assert.NotContains(t, info, "Request ID")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("plain"), false},
		{&RequestError{Type: ErrorTypeNetwork}, true},
		{&RequestError{Type: ErrorTypeServer}, true},
		{&RequestError{Type: ErrorTypeClient}, false},
		{&RequestError{Type: ErrorTypeTimeout}, false},
		{fmt.Errorf("ctx: %w", &RequestError{Type: ErrorTypeServer}), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransient(tt.err), "%v", tt.err)
	}
}
