package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trackloop/issue-tracker/internal/events"
	"github.com/trackloop/issue-tracker/internal/observability"
)

// NotificationSink delivers one notification to one target user. Delivery is
// best-effort: a failing sink never affects the committed mutation.
type NotificationSink interface {
	Notify(ctx context.Context, notification events.Notification) error
}

// NotificationService turns assignment and mention events into notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       NotificationSink
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink NotificationSink, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the side-effecting events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueAssigned, n.handleIssueAssigned)
	n.dispatcher.Subscribe(events.EventUserMentioned, n.handleUserMentioned)
}

func (n *NotificationService) handleIssueAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueAssignedPayload)
	if !ok || payload.AssigneeID == nil {
		return nil
	}
	// self-assignment needs no notification
	if *payload.AssigneeID == event.ActorID {
		return nil
	}
	n.deliver(ctx, events.Notification{
		TargetUserID: *payload.AssigneeID,
		Kind:         events.NotificationAssignment,
		Message:      fmt.Sprintf("%s assigned %s to you", event.ActorID, event.Issue.Key),
		Issue:        event.Issue,
	})
	return nil
}

func (n *NotificationService) handleUserMentioned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserMentionedPayload)
	if !ok {
		return nil
	}
	n.deliver(ctx, events.Notification{
		TargetUserID: payload.TargetUserID,
		Kind:         events.NotificationMention,
		Message:      fmt.Sprintf("%s mentioned you on %s: %s", event.ActorID, event.Issue.Key, payload.BodyPreview),
		Issue:        event.Issue,
	})
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, notification events.Notification) {
	if n.sink == nil {
		return
	}
	if err := n.sink.Notify(ctx, notification); err != nil {
		n.metrics.RecordNotification(string(notification.Kind), false)
		n.logger.Warn("notification delivery failed",
			zap.String("kind", string(notification.Kind)),
			zap.String("target", notification.TargetUserID),
			zap.String("issue_key", notification.Issue.Key),
			zap.Error(err),
		)
		return
	}
	n.metrics.RecordNotification(string(notification.Kind), true)
}
