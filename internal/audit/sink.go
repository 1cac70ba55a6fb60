// Package audit ships structured {timestamp, level, message} events to
// an external index (ELK-style bulk endpoint). Delivery is strictly
// best-effort: events are buffered, retried a bounded number of times,
// and dropped when the index stays unreachable. Nothing here may ever
// block or fail a caller.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

const (
	bufferSize   = 1024
	sendAttempts = 3
	retryDelay   = 500 * time.Millisecond
	sendTimeout  = 5 * time.Second
)

// internalLog writes straight to stderr. The default logger mirrors
// records into the sink, so using it here would feed the sink's own
// failures back into itself.
var internalLog = slog.New(slog.NewTextHandler(os.Stderr, nil))

type Sink struct {
	endpoint   string
	httpClient *http.Client
	events     chan Event
}

// NewSink returns a sink posting to endpoint. An empty endpoint yields
// a disabled sink whose Emit is a no-op.
func NewSink(endpoint string) *Sink {
	return &Sink{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: sendTimeout},
		events:     make(chan Event, bufferSize),
	}
}

// Emit queues an event. If the buffer is full the event is dropped;
// the audit stream must never apply backpressure to the core path.
func (s *Sink) Emit(level, message string) {
	if s == nil || s.endpoint == "" {
		return
	}
	select {
	case s.events <- Event{Timestamp: time.Now().UTC(), Level: level, Message: message}:
	default:
	}
}

func (s *Sink) Start(ctx context.Context) {
	if s.endpoint == "" {
		return
	}
	internalLog.Info("audit sink started", "endpoint", s.endpoint)

	for {
		select {
		case <-ctx.Done():
			internalLog.Info("audit sink stopped")
			return
		case ev := <-s.events:
			s.send(ctx, ev)
		}
	}
}

func (s *Sink) send(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}

	var lastErr error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
	internalLog.Warn("audit event dropped", "error", lastErr, "level", ev.Level)
}

func (s *Sink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post: unexpected status %d", resp.StatusCode)
	}
	return nil
}
