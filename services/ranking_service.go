package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyLogAPI/internal/types/ranking"
)

type RankingService struct {
	db *pgxpool.Pool
}

func NewRankingService(db *pgxpool.Pool) *RankingService {
	return &RankingService{db: db}
}

// IncrementOrCreate bumps the monthly counter as a single atomic upsert.
// Two post-commit reactions for the same (user, year, month) can run
// concurrently; a read-then-write sequence here would lose updates.
func (s *RankingService) IncrementOrCreate(ctx context.Context, userID uuid.UUID, year, month int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_monthly_stats (user_id, year, month, record_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, year, month)
		DO UPDATE SET record_count = user_monthly_stats.record_count + 1
	`, userID, year, month)
	if err != nil {
		return fmt.Errorf("failed to increment monthly stat: %w", err)
	}
	return nil
}

// Decrement lowers the counter for the month the record belonged to.
// There is no floor and a missing row is a silent no-op.
func (s *RankingService) Decrement(ctx context.Context, userID uuid.UUID, year, month int) error {
	result, err := s.db.Exec(ctx, `
		UPDATE user_monthly_stats
		SET record_count = record_count - 1
		WHERE user_id = $1 AND year = $2 AND month = $3
	`, userID, year, month)
	if err != nil {
		return fmt.Errorf("failed to decrement monthly stat: %w", err)
	}
	if result.RowsAffected() == 0 {
		log.Printf("Decrement: no monthly stat for user=%s %d-%02d", userID, year, month)
	}
	return nil
}

// GetFriendRankings returns the month's ranking restricted to the
// requesting user and their friends, ordered by record count descending
// with ties broken by user id.
func (s *RankingService) GetFriendRankings(ctx context.Context, clerkID string, year, month *int) ([]*ranking.Entry, error) {
	now := time.Now()
	targetYear := now.Year()
	targetMonth := int(now.Month())
	if year != nil {
		targetYear = *year
	}
	if month != nil {
		targetMonth = *month
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	candidateIDs, err := s.candidateSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.nickname, u.profile_image, u.code, ms.record_count
		FROM user_monthly_stats ms
		INNER JOIN users u ON u.id = ms.user_id
		WHERE ms.user_id = ANY($1) AND ms.year = $2 AND ms.month = $3
		ORDER BY ms.record_count DESC, u.id ASC
	`, candidateIDs, targetYear, targetMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	entries := []*ranking.Entry{}
	for rows.Next() {
		e := &ranking.Entry{}
		err := rows.Scan(
			&e.UserID,
			&e.Nickname,
			&e.ProfileImage,
			&e.Code,
			&e.RecordCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		e.IsMe = e.UserID == userID
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}

	return entries, nil
}

// candidateSet is the requesting user plus their friends.
func (s *RankingService) candidateSet(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT friend_id FROM friendships WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{userID}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend ids: %w", err)
	}
	return ids, nil
}
