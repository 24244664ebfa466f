package domain

import "time"

// IssueField names a mutable field of an issue for change sets and atomic
// mutations.
type IssueField string

const (
	FieldTitle          IssueField = "title"
	FieldDescription    IssueField = "description"
	FieldAssignee       IssueField = "assignee"
	FieldStatus         IssueField = "status"
	FieldType           IssueField = "type"
	FieldPriority       IssueField = "priority"
	FieldResolution     IssueField = "resolution"
	FieldComponent      IssueField = "component"
	FieldCustomer       IssueField = "customer"
	FieldAffectsVersion IssueField = "affects_version"
	FieldFixVersion     IssueField = "fix_version"
	FieldLegacyComment  IssueField = "comment"
)

// IssueMutation is a single atomic update command against one issue document.
// Sub-operations are independently optional; the repository issues all of
// them in one statement so they can never interleave with a concurrent
// writer.
type IssueMutation struct {
	SetFields       map[IssueField]any
	SetUpdatedAt    *time.Time
	SetResolvedAt   *time.Time
	ClearResolvedAt bool
	PushHistory     *HistoryEntry
	PushComment     *Comment
	PushAttachments []Attachment
}

// Empty reports whether the mutation would write nothing.
func (m IssueMutation) Empty() bool {
	return len(m.SetFields) == 0 &&
		m.SetUpdatedAt == nil &&
		m.SetResolvedAt == nil &&
		!m.ClearResolvedAt &&
		m.PushHistory == nil &&
		m.PushComment == nil &&
		len(m.PushAttachments) == 0
}
