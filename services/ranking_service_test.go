package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

// The monthly counter must not lose updates when several post-commit
// reactions for the same user land at once.
func TestIncrementOrCreateConcurrent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	userID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, clerk_id, nickname, intro, code, level, record_count, created_at, updated_at)
		VALUES ($1, $2, 'ranking test', '', $3, 0, 0, NOW(), NOW())
	`, userID, "test_"+userID.String(), userID.String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM user_monthly_stats WHERE user_id = $1`, userID)
		pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})

	svc := NewRankingService(pool)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.IncrementOrCreate(ctx, userID, 2026, 8)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	err = pool.QueryRow(ctx, `
		SELECT record_count FROM user_monthly_stats
		WHERE user_id = $1 AND year = 2026 AND month = 8
	`, userID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, int64(n), count)
}

func TestDecrementMissingRowIsNoop(t *testing.T) {
	pool := testPool(t)

	svc := NewRankingService(pool)
	err := svc.Decrement(context.Background(), uuid.New(), 2026, 8)
	require.NoError(t, err)
}
