package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/trackloop/issue-tracker/internal/config"
	"github.com/trackloop/issue-tracker/internal/events"
)

// NotificationStream appends notification records onto a Redis stream for
// out-of-process consumers (mailers, websocket pushers).
type NotificationStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewNotificationStream builds the sink.
func NewNotificationStream(r *Redis, cfg config.NotificationConfig) *NotificationStream {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &NotificationStream{
		client: client,
		stream: cfg.Stream,
		maxLen: cfg.MaxLength,
	}
}

// Notify appends one entry. The stream is capped so an absent consumer never
// grows it without bound.
func (s *NotificationStream) Notify(ctx context.Context, notification events.Notification) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"target_user_id": notification.TargetUserID,
			"kind":           string(notification.Kind),
			"message":        notification.Message,
			"issue_id":       notification.Issue.ID,
			"issue_key":      notification.Issue.Key,
			"project_id":     notification.Issue.ProjectID,
		},
	}).Err()
}
