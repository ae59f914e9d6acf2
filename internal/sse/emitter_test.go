package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterSendWritesFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	e := NewEmitter("user_1", rec)

	err := e.Send(EventName, "Connection completed")
	require.NoError(t, err)

	assert.Equal(t, "event: notification\ndata: \"Connection completed\"\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestEmitterSendStructPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	e := NewEmitter("user_1", rec)

	payload := struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}{"BADGE", "Reached the Lv.2 badge."}

	err := e.Send(EventName, payload)
	require.NoError(t, err)

	assert.Contains(t, rec.Body.String(), `"type":"BADGE"`)
	assert.Contains(t, rec.Body.String(), `"content":"Reached the Lv.2 badge."`)
}

func TestEmitterSendAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	e := NewEmitter("user_1", rec)

	e.Close()

	err := e.Send(EventName, "late")
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

// blockingWriter parks inside Write until released, modelling a slow
// client mid-frame.
type blockingWriter struct {
	entered chan struct{}
	release chan struct{}
}

func (w *blockingWriter) Header() http.Header { return http.Header{} }
func (w *blockingWriter) WriteHeader(int)     {}

func (w *blockingWriter) Write(p []byte) (int, error) {
	close(w.entered)
	<-w.release
	return len(p), nil
}

func TestEmitterCloseWaitsForInFlightSend(t *testing.T) {
	w := &blockingWriter{entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEmitter("user_1", w)

	sendDone := make(chan struct{})
	go func() {
		_ = e.Send(EventName, "payload")
		close(sendDone)
	}()

	select {
	case <-w.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Send never reached the writer")
	}

	closed := make(chan struct{})
	go func() {
		e.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a write was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(w.release)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close never returned")
	}
	<-sendDone
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	e := NewEmitter("user_1", httptest.NewRecorder())

	e.Close()
	e.Close()

	select {
	case <-e.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}
