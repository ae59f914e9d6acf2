package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyLogAPI/internal/sse"
	"studyLogAPI/internal/types/notification"
)

// brokenWriter fails every write, standing in for a client that went
// away without closing the stream.
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *brokenWriter) WriteHeader(int) {}

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestPushLiveFailureDropsConnection(t *testing.T) {
	registry := sse.NewRegistry()
	svc := NewNotificationService(nil, registry)

	emitter := sse.NewEmitter("user_1", &brokenWriter{})
	registry.Save("user_1", emitter)

	svc.pushLive("user_1", notification.TypeBadge, "Reached the Lv.1 badge.")

	_, ok := registry.Get("user_1")
	assert.False(t, ok, "failed delivery must deregister the connection")

	select {
	case <-emitter.Done():
	default:
		t.Fatal("failed delivery must close the emitter")
	}
}

func TestPushLiveNoConnectionIsNoop(t *testing.T) {
	registry := sse.NewRegistry()
	svc := NewNotificationService(nil, registry)

	svc.pushLive("user_absent", notification.TypeStreak, "streak content")

	_, ok := registry.Get("user_absent")
	assert.False(t, ok)
}

// Durable storage must not depend on live delivery: a dead connection
// still leaves the notification row behind.
func TestSendPersistsWhenLiveDeliveryFails(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := uuid.New()
	clerkID := "test_" + userID.String()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, clerk_id, nickname, intro, code, level, record_count, created_at, updated_at)
		VALUES ($1, $2, 'durability test', '', $3, 0, 0, NOW(), NOW())
	`, userID, clerkID, userID.String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
		pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})

	registry := sse.NewRegistry()
	svc := NewNotificationService(pool, registry)

	registry.Save(clerkID, sse.NewEmitter(clerkID, &brokenWriter{}))

	err = svc.Send(ctx, clerkID, notification.TypeBadge, "Reached the Lv.2 badge.")
	require.NoError(t, err, "delivery failure must not surface")

	var count int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND type = $2
	`, userID, notification.TypeBadge).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "notification must be stored despite the dead connection")

	_, ok := registry.Get(clerkID)
	assert.False(t, ok, "dead connection must be deregistered")
}
