package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyLogAPI/internal/events"
	"studyLogAPI/internal/types/user"
)

type FriendService struct {
	db  *pgxpool.Pool
	bus *events.Bus
}

func NewFriendService(db *pgxpool.Pool, bus *events.Bus) *FriendService {
	return &FriendService{db: db, bus: bus}
}

// FindUserByCode resolves a share code to a nickname so the client can
// confirm before sending the friend request.
func (s *FriendService) FindUserByCode(ctx context.Context, code string) (string, error) {
	var nickname string
	err := s.db.QueryRow(ctx, `SELECT nickname FROM users WHERE code = $1`, code).Scan(&nickname)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("no user for code")
		}
		return "", fmt.Errorf("failed to look up code: %w", err)
	}
	return nickname, nil
}

func (s *FriendService) GetFriends(ctx context.Context, clerkID string) ([]*user.Friend, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.nickname, u.profile_image, u.code
		FROM users u
		INNER JOIN friendships f ON f.friend_id = u.id
		WHERE f.user_id = (SELECT id FROM users WHERE clerk_id = $1)
		ORDER BY u.nickname
	`, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	friends := []*user.Friend{}
	for rows.Next() {
		f := &user.Friend{}
		if err := rows.Scan(&f.ID, &f.Nickname, &f.ProfileImage, &f.Code); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return friends, nil
}

// AddFriend creates the relationship as two directed rows and fires a
// FriendChanged event once the transaction has committed.
func (s *FriendService) AddFriend(ctx context.Context, clerkID string, code string) error {
	me, err := s.userByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	friend, err := s.userByCode(ctx, code)
	if err != nil {
		return err
	}

	if me.ID == friend.ID {
		return fmt.Errorf("cannot add yourself as a friend")
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)
	`, me.ID, friend.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return fmt.Errorf("friendship already exists")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, created_at)
		VALUES ($1, $2, NOW()), ($2, $1, NOW())
	`, me.ID, friend.ID)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit friendship: %w", err)
	}

	log.Printf("AddFriend: %s -> %s", me.ID, friend.ID)
	s.bus.Publish(events.FriendChanged{
		ActorID:       me.ID,
		ActorNickname: me.Nickname,
		TargetID:      friend.ID,
		TargetClerkID: friend.ClerkID,
		Added:         true,
	})
	return nil
}

func (s *FriendService) RemoveFriend(ctx context.Context, clerkID string, code string) error {
	me, err := s.userByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	friend, err := s.userByCode(ctx, code)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, me.ID, friend.ID)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship not found")
	}

	log.Printf("RemoveFriend: %s -x- %s", me.ID, friend.ID)
	s.bus.Publish(events.FriendChanged{
		ActorID:       me.ID,
		ActorNickname: me.Nickname,
		TargetID:      friend.ID,
		TargetClerkID: friend.ClerkID,
		Added:         false,
	})
	return nil
}

func (s *FriendService) userByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		SELECT id, clerk_id, nickname FROM users WHERE clerk_id = $1
	`, clerkID).Scan(&u.ID, &u.ClerkID, &u.Nickname)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return u, nil
}

func (s *FriendService) userByCode(ctx context.Context, code string) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		SELECT id, clerk_id, nickname FROM users WHERE code = $1
	`, code).Scan(&u.ID, &u.ClerkID, &u.Nickname)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no user for code")
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	return u, nil
}
