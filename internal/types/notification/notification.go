package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFriendAdded   Type = "ADD_FRIEND"
	TypeFriendRemoved Type = "DELETE_FRIEND"
	TypeStreak        Type = "STREAK"
	TypeBadge         Type = "BADGE"
)

// Label is the human-facing type string used on the wire and in history.
func (t Type) Label() string {
	switch t {
	case TypeFriendAdded:
		return "friend-added"
	case TypeFriendRemoved:
		return "friend-removed"
	case TypeStreak:
		return "streak"
	case TypeBadge:
		return "badge"
	default:
		return string(t)
	}
}

// Notification rows are append-only; is_read exists for future read-state
// tracking and is not consulted by business logic yet.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      Type      `json:"type" db:"type"`
	Content   string    `json:"content" db:"content"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ListItem is a history row as served to clients.
type ListItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	TimeAgo string `json:"time_ago"`
}

// Event is the live push payload.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type DeviceToken struct {
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
