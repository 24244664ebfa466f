package dto

import "time"

// IssueSummary is the listing shape. Vocabulary fields carry both the
// canonical ID and the display name resolved at read time.
type IssueSummary struct {
	ID         string     `json:"id"`
	Key        string     `json:"key"`
	ProjectID  string     `json:"project_id"`
	Title      string     `json:"title"`
	ReporterID string     `json:"reporter_id"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	StatusID   string     `json:"status_id"`
	Status     string     `json:"status"`
	TypeID     string     `json:"type_id"`
	Type       string     `json:"type"`
	PriorityID string     `json:"priority_id"`
	Priority   string     `json:"priority"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// IssueDetail is the single-issue shape with the embedded comment,
// attachment, and history lists.
type IssueDetail struct {
	IssueSummary
	Description    string  `json:"description"`
	LegacyComment  string  `json:"legacy_comment,omitempty"`
	ResolutionID   *string `json:"resolution_id,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	ComponentID    *string `json:"component_id,omitempty"`
	Component      string  `json:"component,omitempty"`
	CustomerID     *string `json:"customer_id,omitempty"`
	Customer       string  `json:"customer,omitempty"`
	AffectsVersion string  `json:"affects_version,omitempty"`
	FixVersion     string  `json:"fix_version,omitempty"`

	Comments    []CommentResponse      `json:"comments"`
	Attachments []AttachmentResponse   `json:"attachments"`
	History     []HistoryEntryResponse `json:"history"`
}

// CommentResponse is one comment entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse is one attachment entry.
type AttachmentResponse struct {
	ID              string    `json:"id"`
	StorageFilename string    `json:"storage_filename"`
	OriginalName    string    `json:"original_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// ValueChangeResponse carries the frozen display values of one field change.
type ValueChangeResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HistoryEntryResponse is one audit entry.
type HistoryEntryResponse struct {
	ID            string                         `json:"id"`
	ActorID       string                         `json:"actor_id"`
	Action        string                         `json:"action"`
	ChangedFields []string                       `json:"changed_fields,omitempty"`
	Changes       map[string]ValueChangeResponse `json:"changes,omitempty"`
	FromStatus    string                         `json:"from_status,omitempty"`
	ToStatus      string                         `json:"to_status,omitempty"`
	Comment       string                         `json:"comment,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
	// SkipHistory is the importer path: append the comment without a
	// commented history entry.
	SkipHistory bool `json:"skip_history,omitempty"`
}
