package services

import (
	"context"
	"fmt"
	"log"

	"studyLogAPI/internal/events"
	"studyLogAPI/internal/level"
	"studyLogAPI/internal/types/notification"
)

// Pipeline connects post-commit events to their reactions: monthly
// ranking maintenance and notification dispatch. Handlers run on bus
// workers, never on the request goroutine.
type Pipeline struct {
	rankings      *RankingService
	notifications *NotificationService
}

func NewPipeline(rankings *RankingService, notifications *NotificationService) *Pipeline {
	return &Pipeline{rankings: rankings, notifications: notifications}
}

func (p *Pipeline) Register(bus *events.Bus) {
	bus.Subscribe(events.KindRecordCreated, p.handleRecordCreated)
	bus.Subscribe(events.KindRecordDeleted, p.handleRecordDeleted)
	bus.Subscribe(events.KindLevelChanged, p.handleLevelChanged)
	bus.Subscribe(events.KindFriendChanged, p.handleFriendChanged)
}

func (p *Pipeline) handleRecordCreated(ctx context.Context, ev events.Event) {
	e := ev.(events.RecordCreated)
	if err := p.rankings.IncrementOrCreate(ctx, e.UserID, e.Year, e.Month); err != nil {
		log.Printf("Ranking increment failed: user=%s %d-%02d: %v", e.UserID, e.Year, e.Month, err)
	}
}

func (p *Pipeline) handleRecordDeleted(ctx context.Context, ev events.Event) {
	e := ev.(events.RecordDeleted)
	if err := p.rankings.Decrement(ctx, e.UserID, e.Year, e.Month); err != nil {
		log.Printf("Ranking decrement failed: user=%s %d-%02d: %v", e.UserID, e.Year, e.Month, err)
	}
}

func (p *Pipeline) handleLevelChanged(ctx context.Context, ev events.Event) {
	e := ev.(events.LevelChanged)

	var content string
	switch e.Change {
	case level.TransitionUp:
		content = fmt.Sprintf("Reached the Lv.%d badge.", e.NewLevel)
	case level.TransitionDown:
		content = fmt.Sprintf("Dropped to the Lv.%d badge.", e.NewLevel)
	default:
		return
	}

	if err := p.notifications.Send(ctx, e.ClerkID, notification.TypeBadge, content); err != nil {
		// Dispatch failure is distinct from the business action, which
		// has already committed by the time this runs.
		log.Printf("Level notification dispatch failed: user=%s: %v", e.UserID, err)
	}
}

func (p *Pipeline) handleFriendChanged(ctx context.Context, ev events.Event) {
	e := ev.(events.FriendChanged)

	typ := notification.TypeFriendAdded
	content := fmt.Sprintf("%s added you as a friend.", e.ActorNickname)
	if !e.Added {
		typ = notification.TypeFriendRemoved
		content = fmt.Sprintf("%s removed you as a friend.", e.ActorNickname)
	}

	if err := p.notifications.Send(ctx, e.TargetClerkID, typ, content); err != nil {
		log.Printf("Friend notification dispatch failed: user=%s: %v", e.TargetID, err)
	}
}
