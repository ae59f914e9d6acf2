package record

import (
	"time"

	"github.com/google/uuid"

	"studyLogAPI/internal/types/streak"
)

type StudyRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateRecordRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateRecordResponse carries the updated streak inline because the
// client renders it immediately after saving a record.
type CreateRecordResponse struct {
	Record *StudyRecord         `json:"record"`
	Streak *streak.StreakUpdate `json:"streak"`
}
