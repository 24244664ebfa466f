package domain

// VocabKind identifies one of the project's four configurable lists.
type VocabKind string

const (
	VocabStatus     VocabKind = "status"
	VocabType       VocabKind = "type"
	VocabPriority   VocabKind = "priority"
	VocabResolution VocabKind = "resolution"
)

// VocabItem is one entry of a vocabulary list. The ID is stable once
// assigned; name and color may be edited without changing meaning.
type VocabItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// ProjectVocabulary holds the four independent ordered lists. Index 0 of a
// list is the default for new issues.
type ProjectVocabulary struct {
	Statuses    []VocabItem `json:"statuses"`
	Types       []VocabItem `json:"types"`
	Priorities  []VocabItem `json:"priorities"`
	Resolutions []VocabItem `json:"resolutions"`
}

// List returns the vocabulary list for the given kind.
func (v ProjectVocabulary) List(kind VocabKind) []VocabItem {
	switch kind {
	case VocabStatus:
		return v.Statuses
	case VocabType:
		return v.Types
	case VocabPriority:
		return v.Priorities
	case VocabResolution:
		return v.Resolutions
	default:
		return nil
	}
}

// DefaultID returns the ID of the first entry for the kind, or empty when the
// list is empty.
func (v ProjectVocabulary) DefaultID(kind VocabKind) string {
	items := v.List(kind)
	if len(items) == 0 {
		return ""
	}
	return items[0].ID
}

// terminalStatusIDs is the fixed set of canonical status IDs that count as
// resolved for resolvedAt bookkeeping.
var terminalStatusIDs = map[string]struct{}{
	"resolved": {},
	"closed":   {},
	"rejected": {},
}

// IsTerminalStatus reports whether the canonical status ID belongs to the
// resolved/closed bucket.
func IsTerminalStatus(id string) bool {
	_, ok := terminalStatusIDs[id]
	return ok
}
