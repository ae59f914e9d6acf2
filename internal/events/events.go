package events

import (
	"github.com/google/uuid"

	"studyLogAPI/internal/level"
)

type Kind string

const (
	KindRecordCreated Kind = "record_created"
	KindRecordDeleted Kind = "record_deleted"
	KindLevelChanged  Kind = "level_changed"
	KindFriendChanged Kind = "friend_changed"
)

// Event is an in-process pipeline event. Events are transient: they are
// published only after the originating transaction commits and are not
// retried if lost.
type Event interface {
	Kind() Kind
}

type RecordCreated struct {
	UserID uuid.UUID
	Year   int
	Month  int
}

func (RecordCreated) Kind() Kind { return KindRecordCreated }

type RecordDeleted struct {
	UserID uuid.UUID
	Year   int
	Month  int
}

func (RecordDeleted) Kind() Kind { return KindRecordDeleted }

type LevelChanged struct {
	UserID   uuid.UUID
	ClerkID  string
	NewLevel int
	Change   level.Transition
}

func (LevelChanged) Kind() Kind { return KindLevelChanged }

type FriendChanged struct {
	ActorID       uuid.UUID
	ActorNickname string
	TargetID      uuid.UUID
	TargetClerkID string
	Added         bool
}

func (FriendChanged) Kind() Kind { return KindFriendChanged }
