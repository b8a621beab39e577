package requesty

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger receives debug narration as a message plus alternating key/value
// pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DebugConfig selects which parts of a call are narrated once debugging is
// enabled.
type DebugConfig struct {
	Enabled         bool
	LogRequests     bool
	LogRetries      bool
	LogInterceptors bool
	LogCache        bool
	RequestIDGen    func() string
}

// DefaultDebugConfig narrates everything but stays disabled until Enabled is
// set.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:         false,
		LogRequests:     true,
		LogRetries:      true,
		LogInterceptors: true,
		LogCache:        true,
		RequestIDGen:    uuid.NewString,
	}
}

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger adapts a logrus logger.
func NewLogrusLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logrusLogger{entry: logrus.NewEntry(logger)}
}

// NewSimpleLogger writes text lines at debug level to stderr.
func NewSimpleLogger() Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return NewLogrusLogger(logger)
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Info(msg)
}

func (l *logrusLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l *logrusLogger) with(keysAndValues []interface{}) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return l.entry
	}
	return l.entry.WithFields(toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			fields["extra"] = key
			break
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// logEnabled reports whether a debug category should be narrated.
func (c *Client) logEnabled(category bool) bool {
	return c.debug != nil && c.debug.Enabled && category && c.logger != nil
}

// fields prefixes every log line with the app name and request ID.
func (c *Client) fields(requestID string, keysAndValues ...interface{}) []interface{} {
	return append([]interface{}{"app", c.config.AppName, "requestID", requestID}, keysAndValues...)
}

func (c *Client) newRequestID() string {
	if c.debug == nil || !c.debug.Enabled || c.debug.RequestIDGen == nil {
		return ""
	}
	return c.debug.RequestIDGen()
}
