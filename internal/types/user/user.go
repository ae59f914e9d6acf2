package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ClerkID      string    `json:"clerk_id" db:"clerk_id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Intro        string    `json:"intro" db:"intro"`
	ProfileImage *string   `json:"profile_image" db:"profile_image"`
	Code         string    `json:"code" db:"code"`
	Level        int       `json:"level" db:"level"`
	RecordCount  int64     `json:"record_count" db:"record_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type UserInfoResponse struct {
	Nickname     string  `json:"nickname"`
	Intro        string  `json:"intro"`
	ProfileImage *string `json:"profile_image"`
	FriendCount  int64   `json:"friend_count"`
	Code         string  `json:"code"`
	Level        int     `json:"level"`
}

type UpdateProfileRequest struct {
	Nickname     *string `json:"nickname"`
	Intro        *string `json:"intro"`
	ProfileImage *string `json:"profile_image"`
}

// Friend is a trimmed user view for friend lists.
type Friend struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	ProfileImage *string   `json:"profile_image" db:"profile_image"`
	Code         string    `json:"code" db:"code"`
}
