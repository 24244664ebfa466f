package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/trackloop/issue-tracker/internal/config"
	"github.com/trackloop/issue-tracker/internal/events"
)

func testStream(t *testing.T) (*NotificationStream, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stream := NewNotificationStream(&Redis{Client: client}, config.NotificationConfig{
		Stream:    "notifications",
		MaxLength: 100,
	})
	return stream, client
}

func TestNotificationStreamNotify(t *testing.T) {
	stream, client := testStream(t)
	ctx := context.Background()

	err := stream.Notify(ctx, events.Notification{
		TargetUserID: "bob",
		Kind:         events.NotificationAssignment,
		Message:      "alice assigned PROJ-1 to you",
		Issue:        events.IssueRef{ID: "issue-1", Key: "PROJ-1", ProjectID: "proj-1"},
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	entries, err := client.XRange(ctx, "notifications", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stream entries = %d", len(entries))
	}
	values := entries[0].Values
	if values["target_user_id"] != "bob" {
		t.Fatalf("target = %v", values["target_user_id"])
	}
	if values["kind"] != "assignment" {
		t.Fatalf("kind = %v", values["kind"])
	}
	if values["issue_key"] != "PROJ-1" {
		t.Fatalf("issue_key = %v", values["issue_key"])
	}
}

func TestNotificationStreamOrdering(t *testing.T) {
	stream, client := testStream(t)
	ctx := context.Background()

	for _, target := range []string{"bob", "carol"} {
		err := stream.Notify(ctx, events.Notification{
			TargetUserID: target,
			Kind:         events.NotificationMention,
			Issue:        events.IssueRef{Key: "PROJ-2"},
		})
		if err != nil {
			t.Fatalf("Notify(%s): %v", target, err)
		}
	}

	entries, err := client.XRange(ctx, "notifications", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("stream entries = %d", len(entries))
	}
	if entries[0].Values["target_user_id"] != "bob" || entries[1].Values["target_user_id"] != "carol" {
		t.Fatalf("entries out of order: %v", entries)
	}
}

func TestNotificationStreamWithoutClient(t *testing.T) {
	stream := NewNotificationStream(nil, config.NotificationConfig{Stream: "notifications"})
	if err := stream.Notify(context.Background(), events.Notification{TargetUserID: "bob"}); err == nil {
		t.Fatal("expected error without a configured client")
	}
}
