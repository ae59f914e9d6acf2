package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyLogAPI/internal/types/streak"
)

type StreakService struct {
	db *pgxpool.Pool
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	return &StreakService{db: db}
}

// advanceStreak applies one day of streak logic. lastDate and today are
// calendar dates (time components ignored).
func advanceStreak(current, max int, lastDate *time.Time, today time.Time) (newCurrent, newMax int, updated bool) {
	today = truncateToDay(today)

	if lastDate != nil && truncateToDay(*lastDate).Equal(today) {
		// Already recorded today; nothing changes.
		return current, max, false
	}

	switch {
	case lastDate == nil:
		newCurrent = 1
	case truncateToDay(*lastDate).Equal(today.AddDate(0, 0, -1)):
		newCurrent = current + 1
	default:
		newCurrent = 1
	}

	newMax = max
	if newCurrent > newMax {
		newMax = newCurrent
	}
	return newCurrent, newMax, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// UpdateStreak advances the user's streak for today inside the caller's
// transaction. It runs as part of record creation because the response
// to the creating client includes the updated streak. The row is locked
// so two same-day requests cannot both read the stale date.
func (s *StreakService) UpdateStreak(ctx context.Context, tx pgx.Tx, userID uuid.UUID, today time.Time) (*streak.StreakUpdate, error) {
	var (
		current  int
		max      int
		lastDate *time.Time
	)

	err := tx.QueryRow(ctx, `
		SELECT current_streak, max_streak, last_record_date
		FROM streaks
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&current, &max, &lastDate)

	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		// Lazily created on the user's first record.
		_, err = tx.Exec(ctx, `
			INSERT INTO streaks (user_id, current_streak, max_streak, last_record_date, created_at, updated_at)
			VALUES ($1, 1, 1, $2, NOW(), NOW())
		`, userID, truncateToDay(today))
		if err != nil {
			return nil, fmt.Errorf("failed to create streak: %w", err)
		}
		return &streak.StreakUpdate{CurrentStreak: 1, IsStreakUpdated: true}, nil
	}

	newCurrent, newMax, updated := advanceStreak(current, max, lastDate, today)
	if updated {
		_, err = tx.Exec(ctx, `
			UPDATE streaks
			SET current_streak = $2, max_streak = $3, last_record_date = $4, updated_at = NOW()
			WHERE user_id = $1
		`, userID, newCurrent, newMax, truncateToDay(today))
		if err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
		log.Printf("Streak updated: user=%s current=%d max=%d", userID, newCurrent, newMax)
	}

	return &streak.StreakUpdate{CurrentStreak: newCurrent, IsStreakUpdated: updated}, nil
}

func (s *StreakService) GetStreak(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	st := &streak.Streak{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, current_streak, max_streak, last_record_date, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID).Scan(
		&st.ID,
		&st.UserID,
		&st.CurrentStreak,
		&st.MaxStreak,
		&st.LastRecordDate,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No records yet; serve a zero streak rather than a 404.
			return &streak.Streak{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return st, nil
}

// GetMonthlyStreakData returns the per-day record count for every day
// of the given month, zero-filled, keyed by YYYY-MM-DD.
func (s *StreakService) GetMonthlyStreakData(ctx context.Context, userID uuid.UUID, year, month int) (map[string]int, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.db.Query(ctx, `
		SELECT created_at::date AS day, COUNT(*)
		FROM study_records
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY day
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts[day.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily counts: %w", err)
	}

	data := make(map[string]int)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		data[key] = counts[key]
	}
	return data, nil
}
