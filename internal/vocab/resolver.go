package vocab

import (
	"fmt"
	"strings"

	"github.com/trackloop/issue-tracker/internal/domain"
)

// UnresolvedValueError reports a raw value that matches nothing in the live
// vocabulary or the legacy tables for its kind.
type UnresolvedValueError struct {
	Kind  domain.VocabKind
	Value string
}

func (e *UnresolvedValueError) Error() string {
	return fmt.Sprintf("unresolved %s value %q", e.Kind, e.Value)
}

// Resolve maps a raw value to its canonical ID. The raw value may be a
// current ID, a current display name, or a legacy pre-ID name. Resolution
// order: live ID match, live name match, static legacy table.
func Resolve(kind domain.VocabKind, raw string, vocabulary domain.ProjectVocabulary) (string, error) {
	raw = strings.TrimSpace(raw)
	items := vocabulary.List(kind)
	for _, item := range items {
		if item.ID == raw {
			return item.ID, nil
		}
	}
	for _, item := range items {
		if item.Name == raw {
			return item.ID, nil
		}
	}
	if id, ok := legacyNames[kind][raw]; ok {
		return id, nil
	}
	return "", &UnresolvedValueError{Kind: kind, Value: raw}
}

// DisplayName is the inverse lookup used for history and read-time
// rendering. When the ID has since been renamed or deleted, the raw ID is
// returned unchanged so history stays renderable.
func DisplayName(kind domain.VocabKind, id string, vocabulary domain.ProjectVocabulary) string {
	for _, item := range vocabulary.List(kind) {
		if item.ID == id {
			return item.Name
		}
	}
	return id
}
