package streak

import (
	"time"

	"github.com/google/uuid"
)

type Streak struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak  int        `json:"current_streak" db:"current_streak"`
	MaxStreak      int        `json:"max_streak" db:"max_streak"`
	LastRecordDate *time.Time `json:"last_record_date" db:"last_record_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// StreakInfo is the read endpoint's view of a streak: just the two
// counters, no row bookkeeping.
type StreakInfo struct {
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`
}

// StreakUpdate is the per-request result of advancing a streak.
// IsStreakUpdated is false when the user already recorded today.
type StreakUpdate struct {
	CurrentStreak   int  `json:"current_streak"`
	IsStreakUpdated bool `json:"is_streak_updated"`
}
