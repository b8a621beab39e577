package requesty

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogrusLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	logger := NewLogrusLogger(base)
	logger.Warn("Retrying", "attempt", 2, "status", 503)

	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "msg=Retrying")
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "status=503")
}

func TestToFieldsOddKey(t *testing.T) {
	fields := toFields([]interface{}{"a", 1, "dangling"})

	assert.Equal(t, logrus.Fields{"a": 1, "extra": "dangling"}, fields)
}

func TestClientFieldsPrefix(t *testing.T) {
	c := New(testBaseURL, WithAppName("billing"))

	fields := c.fields("req-9", "status", 200)

	assert.Equal(t, []interface{}{"app", "billing", "requestID", "req-9", "status", 200}, fields)
}

func TestWithLogrusAndRequestIDs(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.JSONFormatter{})

	c := New(testBaseURL,
		WithDebug(),
		WithLogrus(base),
		WithRequestIDGenerator(func() string { return "fixed-id" }),
		WithTransport(script(ok(`{}`))),
	)
	c.Get(context.Background(), "items", nil)

	assert.Contains(t, buf.String(), `"requestID":"fixed-id"`)
	assert.Contains(t, buf.String(), `"app":"myApp"`)
}

func TestRequestIDOnlyWhenDebugging(t *testing.T) {
	c := New(testBaseURL)
	assert.Empty(t, c.newRequestID())

	debugging := New(testBaseURL, WithDebug())
	assert.Len(t, debugging.newRequestID(), 36)
}
