package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// EventName is the SSE event name every payload is sent under.
	EventName = "notification"

	// DefaultTimeout is how long an idle connection is kept before the
	// server closes it; clients are expected to reconnect.
	DefaultTimeout = time.Hour

	// writeTimeout bounds a single push so one unresponsive client
	// cannot stall a dispatch worker.
	writeTimeout = 5 * time.Second
)

// Emitter is one live server-sent-events connection. Writes are
// serialized because pushes arrive from dispatch workers while the
// subscribing handler owns the response.
type Emitter struct {
	userID string
	w      http.ResponseWriter
	rc     *http.ResponseController

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewEmitter wraps a streaming response. The caller must have set the
// text/event-stream headers before the first Send.
func NewEmitter(userID string, w http.ResponseWriter) *Emitter {
	return &Emitter{
		userID: userID,
		w:      w,
		rc:     http.NewResponseController(w),
		done:   make(chan struct{}),
	}
}

func (e *Emitter) UserID() string { return e.userID }

// Send writes one event frame and flushes it. Any error means the
// client is gone; callers tear the connection down on failure.
func (e *Emitter) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal sse payload: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-e.done:
		return fmt.Errorf("connection closed")
	default:
	}

	// Writers that cannot take a deadline still get the frame.
	if err := e.rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := e.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	return nil
}

// Close releases the subscribing handler. Safe to call more than once.
// It returns only after any write already in flight has finished, so
// the response writer is not touched once the handler has moved on.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() { close(e.done) })
	e.mu.Lock()
	e.mu.Unlock()
}

// Done is closed when the connection has been torn down.
func (e *Emitter) Done() <-chan struct{} {
	return e.done
}
