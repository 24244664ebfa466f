package domain

import "time"

// HistoryAction captures what kind of mutation a history entry records.
type HistoryAction string

const (
	HistoryActionCreated   HistoryAction = "created"
	HistoryActionUpdated   HistoryAction = "updated"
	HistoryActionCommented HistoryAction = "commented"
)

// ValueChange holds the resolved display values of one field change.
type ValueChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HistoryEntry is an immutable audit record. Display values are frozen at
// append time; later vocabulary edits never rewrite them.
type HistoryEntry struct {
	ID            string                 `json:"id"`
	ActorID       string                 `json:"actor_id"`
	Action        HistoryAction          `json:"action"`
	ChangedFields []string               `json:"changed_fields,omitempty"`
	Changes       map[string]ValueChange `json:"changes,omitempty"`
	FromStatus    string                 `json:"from_status,omitempty"`
	ToStatus      string                 `json:"to_status,omitempty"`
	Comment       string                 `json:"comment,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}
