package events

// NotificationKind labels what a notification is about.
type NotificationKind string

const (
	NotificationAssignment NotificationKind = "assignment"
	NotificationMention    NotificationKind = "mention"
)

// Notification is one message for one target user, handed to the
// notification sink.
type Notification struct {
	TargetUserID string           `json:"target_user_id"`
	Kind         NotificationKind `json:"kind"`
	Message      string           `json:"message"`
	Issue        IssueRef         `json:"issue"`
}
