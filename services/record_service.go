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

	"studyLogAPI/internal/events"
	"studyLogAPI/internal/level"
	"studyLogAPI/internal/types/record"
)

type RecordService struct {
	db      *pgxpool.Pool
	streaks *StreakService
	bus     *events.Bus
}

func NewRecordService(db *pgxpool.Pool, streaks *StreakService, bus *events.Bus) *RecordService {
	return &RecordService{db: db, streaks: streaks, bus: bus}
}

// CreateRecord inserts a study record and runs the synchronous half of
// the engagement pipeline (streak, level) inside the same transaction.
// Ranking aggregation and notifications react to events published only
// after the commit, so a rollback leaves no trace of them.
func (s *RecordService) CreateRecord(ctx context.Context, clerkID string, req *record.CreateRecordRequest) (*record.CreateRecordResponse, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title must not be empty")
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec := &record.StudyRecord{}
	err = tx.QueryRow(ctx, `
		INSERT INTO study_records (id, user_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, title, content, created_at
	`, uuid.New(), userID, req.Title, req.Content).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.Content,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	// The stored level is read under the same row lock that serializes
	// the counter update; a concurrent request sees the committed level,
	// so one threshold crossing yields exactly one transition.
	var (
		recordCount int64
		oldLevel    int
	)
	err = tx.QueryRow(ctx, `
		UPDATE users SET record_count = record_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING record_count, level
	`, userID).Scan(&recordCount, &oldLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to update record count: %w", err)
	}

	streakUpdate, err := s.streaks.UpdateStreak(ctx, tx, userID, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	// The new level is persisted before the notification event fires so
	// a re-evaluation never produces a duplicate notification.
	newLevel := level.ForCount(recordCount)
	change := level.DetectTransition(oldLevel, newLevel)
	if change != level.TransitionNone {
		if _, err := tx.Exec(ctx, `UPDATE users SET level = $2 WHERE id = $1`, userID, newLevel); err != nil {
			return nil, fmt.Errorf("failed to update level: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit record creation: %w", err)
	}

	s.bus.Publish(events.RecordCreated{
		UserID: userID,
		Year:   rec.CreatedAt.Year(),
		Month:  int(rec.CreatedAt.Month()),
	})
	if change != level.TransitionNone {
		log.Printf("Level changed: user=%s %d -> %d", userID, oldLevel, newLevel)
		s.bus.Publish(events.LevelChanged{
			UserID:   userID,
			ClerkID:  clerkID,
			NewLevel: newLevel,
			Change:   change,
		})
	}

	return &record.CreateRecordResponse{Record: rec, Streak: streakUpdate}, nil
}

// DeleteRecord removes an owned record. The streak is deliberately left
// untouched; the monthly counter is decremented and the level
// re-evaluated through the post-commit pipeline.
func (s *RecordService) DeleteRecord(ctx context.Context, clerkID string, recordID uuid.UUID) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		DELETE FROM study_records
		WHERE id = $1 AND user_id = $2
		RETURNING created_at
	`, recordID, userID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("record not found")
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	// Level read under the row lock, same as creation.
	var (
		recordCount int64
		oldLevel    int
	)
	err = tx.QueryRow(ctx, `
		UPDATE users SET record_count = record_count - 1, updated_at = NOW()
		WHERE id = $1
		RETURNING record_count, level
	`, userID).Scan(&recordCount, &oldLevel)
	if err != nil {
		return fmt.Errorf("failed to update record count: %w", err)
	}

	newLevel := level.ForCount(recordCount)
	change := level.DetectTransition(oldLevel, newLevel)
	if change != level.TransitionNone {
		if _, err := tx.Exec(ctx, `UPDATE users SET level = $2 WHERE id = $1`, userID, newLevel); err != nil {
			return fmt.Errorf("failed to update level: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit record deletion: %w", err)
	}

	s.bus.Publish(events.RecordDeleted{
		UserID: userID,
		Year:   createdAt.Year(),
		Month:  int(createdAt.Month()),
	})
	if change != level.TransitionNone {
		log.Printf("Level changed: user=%s %d -> %d", userID, oldLevel, newLevel)
		s.bus.Publish(events.LevelChanged{
			UserID:   userID,
			ClerkID:  clerkID,
			NewLevel: newLevel,
			Change:   change,
		})
	}

	return nil
}
