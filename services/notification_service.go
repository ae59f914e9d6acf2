package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"studyLogAPI/internal/sse"
	"studyLogAPI/internal/types/notification"
	"studyLogAPI/utils"
)

var (
	pushesDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_pushes_delivered_total",
		Help: "Live pushes written to a connected client",
	})
	pushesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_pushes_failed_total",
		Help: "Live pushes that failed and tore the connection down",
	})
)

func init() {
	prometheus.MustRegister(pushesDelivered, pushesFailed)
}

// PushProvider mirrors notifications to mobile devices. Optional.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

type NotificationService struct {
	db       *pgxpool.Pool
	registry *sse.Registry
	push     PushProvider
}

func NewNotificationService(db *pgxpool.Pool, registry *sse.Registry) *NotificationService {
	return &NotificationService{db: db, registry: registry}
}

// SetPushProvider injects the FCM provider from main.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

// Send persists a notification for the target user and then attempts
// best-effort live delivery. The insert failing is the only error this
// returns; delivery failures are logged and recovered locally because
// the triggering business action has already completed.
func (s *NotificationService) Send(ctx context.Context, targetClerkID string, typ notification.Type, content string) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, targetClerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("notification target not found: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, false, NOW())
	`, uuid.New(), userID, typ, content)
	if err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	s.pushLive(targetClerkID, typ, content)
	s.pushDevices(ctx, userID, typ, content)
	return nil
}

// pushLive writes to the user's SSE connection if one is registered.
// A write error means the client is gone: the connection is closed and
// deregistered, and the durably stored notification is the fallback.
func (s *NotificationService) pushLive(clerkID string, typ notification.Type, content string) {
	emitter, ok := s.registry.Get(clerkID)
	if !ok {
		return
	}

	ev := notification.Event{Type: typ.Label(), Content: content}
	if err := emitter.Send(sse.EventName, ev); err != nil {
		log.Printf("Push failed for user %s, dropping connection: %v", clerkID, err)
		emitter.Close()
		s.registry.Delete(clerkID)
		pushesFailed.Inc()
		return
	}
	pushesDelivered.Inc()
}

func (s *NotificationService) pushDevices(ctx context.Context, userID uuid.UUID, typ notification.Type, content string) {
	if s.push == nil {
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("Failed to load device tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{"type": typ.Label()}
	if err := s.push.SendPush(ctx, tokens, typ.Label(), content, data); err != nil {
		log.Printf("Device push failed for user %s: %v", userID, err)
	}
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT token, platform, added_at FROM device_tokens WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// GetNotificationList returns the 30 most recent notifications with a
// read-time "time ago" string.
func (s *NotificationService) GetNotificationList(ctx context.Context, clerkID string) ([]*notification.ListItem, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT type, content, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 30
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	items := []*notification.ListItem{}
	for rows.Next() {
		var (
			typ       notification.Type
			content   string
			createdAt time.Time
		)
		if err := rows.Scan(&typ, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, &notification.ListItem{
			Type:    typ.Label(),
			Content: content,
			TimeAgo: utils.FormatTimeAgo(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return items, nil
}

// RegisterDevice stores or refreshes a device token for mobile push.
func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("token must not be empty")
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token)
		DO UPDATE SET platform = $3, added_at = NOW()
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
