package requesty

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

const (
	testBaseURL      = "https://api.test"
	contentTypePlain = "text/plain"
)

// step is one scripted transport outcome.
type step struct {
	status int
	body   string
	err    error
}

func ok(body string) step { return step{status: http.StatusOK, body: body} }
func status(code int) step { return step{status: code, body: fmt.Sprintf(`{"code":%d}`, code)} }
func networkError(msg string) step { return step{err: fmt.Errorf("%s", msg)} }

// scriptedTransport replays steps in order, repeating the last one, and
// records every request it receives.
type scriptedTransport struct {
	mu       sync.Mutex
	steps    []step
	requests []*RequestDescriptor
}

func script(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) Send(ctx context.Context, req *RequestDescriptor) (*Response, error) {
	s.mu.Lock()
	index := len(s.requests)
	s.requests = append(s.requests, req.Clone())
	current := s.steps[len(s.steps)-1]
	if index < len(s.steps) {
		current = s.steps[index]
	}
	s.mu.Unlock()

	if current.err != nil {
		return nil, current.err
	}
	return &Response{
		Status: current.status,
		Header: http.Header{headerContentType: []string{contentTypeJSON}},
		Body:   []byte(current.body),
	}, nil
}

func (s *scriptedTransport) sends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scriptedTransport) last() *RequestDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// blockingTransport waits for the attempt context to end and reports every
// send on started.
type blockingTransport struct {
	mu      sync.Mutex
	count   int
	started chan struct{}
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{started: make(chan struct{}, 16)}
}

func (b *blockingTransport) Send(ctx context.Context, req *RequestDescriptor) (*Response, error) {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	b.started <- struct{}{}

	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingTransport) sends() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

type logEntry struct {
	level string
	msg   string
}

// recordingLogger keeps every message it receives.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg})
}

func (r *recordingLogger) Debug(msg string, _ ...interface{}) { r.add("debug", msg) }
func (r *recordingLogger) Info(msg string, _ ...interface{}) { r.add("info", msg) }
func (r *recordingLogger) Warn(msg string, _ ...interface{}) { r.add("warn", msg) }
func (r *recordingLogger) Error(msg string, _ ...interface{}) { r.add("error", msg) }

func (r *recordingLogger) has(msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.msg == msg {
			return true
		}
	}
	return false
}
