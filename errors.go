package requesty

import (
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// Error types carried by RequestError.Type.
const (
	ErrorTypeTimeout     = "Timeout"
	ErrorTypeNetwork     = "Network"
	ErrorTypeServer      = "Server"
	ErrorTypeClient      = "Client"
	ErrorTypeParse       = "Parse"
	ErrorTypeInterceptor = "Interceptor"
	ErrorTypeCanceled    = "Canceled"
	ErrorTypeEncode      = "Encode"
	ErrorTypeValidation  = "Validation"
)

var (
	// ErrTimeout is the cancellation cause of an attempt that outlived the
	// configured timeout.
	ErrTimeout = errors.New("requesty: timeout")

	// ErrCanceled is the cancellation cause of an attempt aborted through its
	// CancelHandle.
	ErrCanceled = errors.New("requesty: canceled")

	// ErrAttemptsExhausted backs the fallback result of a retry loop that ran
	// out of attempts without settling.
	ErrAttemptsExhausted = errors.New("requesty: retry attempts exhausted")
)

// RequestError describes why a call failed.
type RequestError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Status     int
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements error.
func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries+1)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *RequestError of the same Type.
func (e *RequestError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*RequestError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders one "Label: value" line per populated field.
func (e *RequestError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}

	var b strings.Builder
	line := func(label string, value any) {
		fmt.Fprintf(&b, "%s: %v\n", label, value)
	}

	line("Error Type", e.Type)
	line("Message", e.Message)
	for _, field := range []struct{ label, value string }{
		{"Request ID", e.RequestID},
		{"Method", e.Method},
		{"URL", e.URL},
	} {
		if field.value != "" {
			line(field.label, field.value)
		}
	}
	if e.Status > 0 {
		line("Status Code", e.Status)
	}
	if e.Attempt > 0 {
		line("Attempt", fmt.Sprintf("%d/%d", e.Attempt, e.MaxRetries+1))
	}
	if !e.Timestamp.IsZero() {
		line("Timestamp", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		line("Duration", e.Duration)
	}
	if e.Cause != nil {
		line("Cause", e.Cause)
	}
	return b.String()
}

// IsTransient reports whether err describes a failure the client would retry:
// network errors and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Type {
		case ErrorTypeNetwork, ErrorTypeServer:
			return true
		default:
			return false
		}
	}
	return false
}
