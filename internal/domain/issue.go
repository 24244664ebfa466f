package domain

import "time"

// Issue is the mutable aggregate owned by a project. Vocabulary-typed fields
// are stored as canonical IDs only; display names are computed at read time.
type Issue struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Key         string `json:"key"`
	Seq         int64  `json:"seq"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ReporterID  string `json:"reporter_id"`
	AssigneeID  *string `json:"assignee_id,omitempty"`

	// LegacyComment is the single free-text comment slot carried over from
	// old records. It is distinct from the Comments list.
	LegacyComment string `json:"legacy_comment,omitempty"`

	StatusID     string  `json:"status_id"`
	TypeID       string  `json:"type_id"`
	PriorityID   string  `json:"priority_id"`
	ResolutionID *string `json:"resolution_id,omitempty"`

	ComponentID      *string `json:"component_id,omitempty"`
	CustomerID       *string `json:"customer_id,omitempty"`
	AffectsVersionID *string `json:"affects_version_id,omitempty"`
	FixVersionID     *string `json:"fix_version_id,omitempty"`

	Comments    []Comment      `json:"comments"`
	Attachments []Attachment   `json:"attachments"`
	History     []HistoryEntry `json:"history"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Comment is one entry of the append-only comment list.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment records an uploaded file by its stored and original names.
type Attachment struct {
	ID              string    `json:"id"`
	StorageFilename string    `json:"storage_filename"`
	OriginalName    string    `json:"original_name"`
	CreatedAt       time.Time `json:"created_at"`
}
