package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"studyLogAPI/internal/events"
	"studyLogAPI/internal/types/record"
)

// Two simultaneous creates that together carry a user over a level
// threshold must produce exactly one LevelChanged event: the second
// transaction reads the level the first one committed, not the stale
// pre-transaction value.
func TestCreateRecordConcurrentLevelTransition(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := uuid.New()
	clerkID := "test_" + userID.String()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, clerk_id, nickname, intro, code, level, record_count, created_at, updated_at)
		VALUES ($1, $2, 'level race test', '', $3, 0, 8, NOW(), NOW())
	`, userID, clerkID, userID.String()[:8])
	require.NoError(t, err)

	// Seed the streak row so both requests take the row lock instead of
	// racing the lazy first-record insert.
	_, err = pool.Exec(ctx, `
		INSERT INTO streaks (user_id, current_streak, max_streak, last_record_date, created_at, updated_at)
		VALUES ($1, 1, 1, NOW() - INTERVAL '1 day', NOW(), NOW())
	`, userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM study_records WHERE user_id = $1`, userID)
		pool.Exec(ctx, `DELETE FROM streaks WHERE user_id = $1`, userID)
		pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})

	bus := events.NewBus(2)
	var mu sync.Mutex
	levelEvents := 0
	bus.Subscribe(events.KindLevelChanged, func(ctx context.Context, ev events.Event) {
		mu.Lock()
		levelEvents++
		mu.Unlock()
	})
	bus.Start()
	defer bus.Stop()

	svc := NewRecordService(pool, NewStreakService(pool), bus)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRecord(ctx, clerkID, &record.CreateRecordRequest{
				Title: "concurrent create",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var storedLevel int
	var storedCount int64
	err = pool.QueryRow(ctx, `SELECT level, record_count FROM users WHERE id = $1`, userID).Scan(&storedLevel, &storedCount)
	require.NoError(t, err)
	require.Equal(t, int64(10), storedCount)
	require.Equal(t, 1, storedLevel)

	// The transition event rides the bus, so give the workers a moment,
	// then make sure a duplicate never arrived behind the first one.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return levelEvents >= 1
	}, 2*time.Second, 10*time.Millisecond, "level transition never arrived")

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, levelEvents, "exactly one level transition expected")
}
