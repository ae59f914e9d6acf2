package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyLogAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// EnsureUser provisions a row for a newly seen Clerk identity. The
// share code is what friends exchange to connect.
func (s *UserService) EnsureUser(ctx context.Context, clerkID string, nickname string) (*user.User, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err == nil {
		return u, nil
	}

	code := newShareCode()
	u = &user.User{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (id, clerk_id, nickname, intro, code, level, record_count, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, 0, 0, NOW(), NOW())
		ON CONFLICT (clerk_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, clerk_id, nickname, intro, profile_image, code, level, record_count, created_at, updated_at
	`, uuid.New(), clerkID, nickname, code).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Nickname,
		&u.Intro,
		&u.ProfileImage,
		&u.Code,
		&u.Level,
		&u.RecordCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		SELECT id, clerk_id, nickname, intro, profile_image, code, level, record_count, created_at, updated_at
		FROM users
		WHERE clerk_id = $1
	`, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Nickname,
		&u.Intro,
		&u.ProfileImage,
		&u.Code,
		&u.Level,
		&u.RecordCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserInfo(ctx context.Context, clerkID string) (*user.UserInfoResponse, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var friendCount int64
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM friendships WHERE user_id = $1`, u.ID).Scan(&friendCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}

	return &user.UserInfoResponse{
		Nickname:     u.Nickname,
		Intro:        u.Intro,
		ProfileImage: u.ProfileImage,
		FriendCount:  friendCount,
		Code:         u.Code,
		Level:        u.Level,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		UPDATE users
		SET
			nickname = COALESCE($2, nickname),
			intro = COALESCE($3, intro),
			profile_image = COALESCE($4, profile_image),
			updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING id, clerk_id, nickname, intro, profile_image, code, level, record_count, created_at, updated_at
	`, clerkID, req.Nickname, req.Intro, req.ProfileImage).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Nickname,
		&u.Intro,
		&u.ProfileImage,
		&u.Code,
		&u.Level,
		&u.RecordCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// newShareCode derives a short uppercase code from a fresh uuid.
func newShareCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
