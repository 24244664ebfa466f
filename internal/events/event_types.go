package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated   EventType = "issue_created"
	EventIssueUpdated   EventType = "issue_updated"
	EventIssueAssigned  EventType = "issue_assigned"
	EventIssueCommented EventType = "issue_commented"
	EventUserMentioned  EventType = "user_mentioned"
)

// IssueRef identifies the issue an event concerns.
type IssueRef struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	ProjectID string `json:"project_id"`
}

// Event represents a domain event emitted by the mutation engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Issue     IssueRef    `json:"issue"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title      string  `json:"title"`
	ReporterID string  `json:"reporter_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// IssueAssignedPayload payload. A nil assignee means the issue was
// unassigned.
type IssueAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// IssueCommentedPayload payload.
type IssueCommentedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

// UserMentionedPayload payload, emitted once per distinct mentioned user.
type UserMentionedPayload struct {
	TargetUserID string `json:"target_user_id"`
	CommentID    string `json:"comment_id"`
	BodyPreview  string `json:"body_preview"`
}
