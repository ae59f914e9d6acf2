package ranking

import (
	"github.com/google/uuid"
)

// MonthlyStat is the durable per-(user, year, month) record counter.
// It is maintained incrementally on record create/delete and never
// recomputed by scanning records.
type MonthlyStat struct {
	ID          int64     `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Year        int       `json:"year" db:"year"`
	Month       int       `json:"month" db:"month"`
	RecordCount int       `json:"record_count" db:"record_count"`
}

type Entry struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	ProfileImage *string   `json:"profile_image" db:"profile_image"`
	Code         string    `json:"code" db:"code"`
	RecordCount  int       `json:"record_count" db:"record_count"`
	IsMe         bool      `json:"is_me"`
}
