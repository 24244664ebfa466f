package changeset

import (
	"errors"
	"strings"

	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/vocab"
)

// ErrEmptyTitle rejects an explicit attempt to clear the title.
var ErrEmptyTitle = errors.New("title cannot be empty")

// PartialUpdate carries a proposed partial issue update. A nil pointer means
// the field was not supplied and stays untouched; a pointer to an empty
// string means an explicit clear.
type PartialUpdate struct {
	Title          *string
	Description    *string
	Assignee       *string
	Status         *string
	Type           *string
	Priority       *string
	Resolution     *string
	Component      *string
	Customer       *string
	AffectsVersion *string
	FixVersion     *string
	LegacyComment  *string
}

// FieldChange is one really-changed field with resolved display values for
// the audit trail.
type FieldChange struct {
	Field       domain.IssueField
	FromDisplay string
	ToDisplay   string
}

// ChangeSet is the minimal difference between a stored issue and a proposed
// update, plus the canonical values to persist.
type ChangeSet struct {
	Changes   []FieldChange
	Canonical map[domain.IssueField]any

	StatusChanged     bool
	FromStatusDisplay string
	ToStatusDisplay   string
	SetResolvedAt     bool
	ClearResolvedAt   bool
}

// Empty reports whether no field actually changed.
func (c ChangeSet) Empty() bool {
	return len(c.Changes) == 0
}

// FieldNames lists the changed field names in diff order.
func (c ChangeSet) FieldNames() []string {
	names := make([]string, 0, len(c.Changes))
	for _, change := range c.Changes {
		names = append(names, string(change.Field))
	}
	return names
}

// ChangeMap returns the changes keyed by field name with display values,
// ready for a history entry.
func (c ChangeSet) ChangeMap() map[string]domain.ValueChange {
	if len(c.Changes) == 0 {
		return nil
	}
	m := make(map[string]domain.ValueChange, len(c.Changes))
	for _, change := range c.Changes {
		m[string(change.Field)] = domain.ValueChange{From: change.FromDisplay, To: change.ToDisplay}
	}
	return m
}

// Diff compares a stored issue against a proposed partial update. Vocabulary
// values are resolved to canonical IDs first, so resubmitting the same state
// under a different spelling yields an empty change set. Applying the result
// and diffing the same proposal again also yields an empty change set.
func Diff(existing *domain.Issue, proposed PartialUpdate, vocabulary domain.ProjectVocabulary) (ChangeSet, error) {
	cs := ChangeSet{Canonical: map[domain.IssueField]any{}}

	if proposed.Title != nil {
		title := strings.TrimSpace(*proposed.Title)
		if title == "" {
			return ChangeSet{}, ErrEmptyTitle
		}
		diffText(&cs, domain.FieldTitle, existing.Title, title)
	}
	if proposed.Description != nil {
		diffText(&cs, domain.FieldDescription, existing.Description, strings.TrimSpace(*proposed.Description))
	}
	if proposed.Assignee != nil {
		diffOptional(&cs, domain.FieldAssignee, existing.AssigneeID, strings.TrimSpace(*proposed.Assignee))
	}

	if proposed.Status != nil {
		if err := diffStatus(&cs, existing, *proposed.Status, vocabulary); err != nil {
			return ChangeSet{}, err
		}
	}
	if proposed.Type != nil {
		if err := diffVocab(&cs, domain.FieldType, domain.VocabType, existing.TypeID, *proposed.Type, vocabulary); err != nil {
			return ChangeSet{}, err
		}
	}
	if proposed.Priority != nil {
		if err := diffVocab(&cs, domain.FieldPriority, domain.VocabPriority, existing.PriorityID, *proposed.Priority, vocabulary); err != nil {
			return ChangeSet{}, err
		}
	}
	if proposed.Resolution != nil {
		if err := diffOptionalVocab(&cs, domain.FieldResolution, domain.VocabResolution, existing.ResolutionID, *proposed.Resolution, vocabulary); err != nil {
			return ChangeSet{}, err
		}
	}

	if proposed.Component != nil {
		diffOptional(&cs, domain.FieldComponent, existing.ComponentID, strings.TrimSpace(*proposed.Component))
	}
	if proposed.Customer != nil {
		diffOptional(&cs, domain.FieldCustomer, existing.CustomerID, strings.TrimSpace(*proposed.Customer))
	}
	if proposed.AffectsVersion != nil {
		diffOptional(&cs, domain.FieldAffectsVersion, existing.AffectsVersionID, strings.TrimSpace(*proposed.AffectsVersion))
	}
	if proposed.FixVersion != nil {
		diffOptional(&cs, domain.FieldFixVersion, existing.FixVersionID, strings.TrimSpace(*proposed.FixVersion))
	}
	if proposed.LegacyComment != nil {
		diffText(&cs, domain.FieldLegacyComment, existing.LegacyComment, strings.TrimSpace(*proposed.LegacyComment))
	}

	return cs, nil
}

func diffText(cs *ChangeSet, field domain.IssueField, current, next string) {
	if current == next {
		return
	}
	cs.Canonical[field] = next
	cs.Changes = append(cs.Changes, FieldChange{Field: field, FromDisplay: current, ToDisplay: next})
}

func diffOptional(cs *ChangeSet, field domain.IssueField, current *string, next string) {
	cur := ""
	if current != nil {
		cur = *current
	}
	if cur == next {
		return
	}
	if next == "" {
		cs.Canonical[field] = nil
	} else {
		cs.Canonical[field] = next
	}
	cs.Changes = append(cs.Changes, FieldChange{Field: field, FromDisplay: cur, ToDisplay: next})
}

func diffVocab(cs *ChangeSet, field domain.IssueField, kind domain.VocabKind, currentID, raw string, vocabulary domain.ProjectVocabulary) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		// required vocabulary fields cannot be cleared; an empty form value
		// leaves the field untouched
		return nil
	}
	nextID, err := vocab.Resolve(kind, raw, vocabulary)
	if err != nil {
		return err
	}
	if nextID == currentID {
		return nil
	}
	cs.Canonical[field] = nextID
	cs.Changes = append(cs.Changes, FieldChange{
		Field:       field,
		FromDisplay: vocab.DisplayName(kind, currentID, vocabulary),
		ToDisplay:   vocab.DisplayName(kind, nextID, vocabulary),
	})
	return nil
}

func diffOptionalVocab(cs *ChangeSet, field domain.IssueField, kind domain.VocabKind, currentID *string, raw string, vocabulary domain.ProjectVocabulary) error {
	raw = strings.TrimSpace(raw)
	cur := ""
	if currentID != nil {
		cur = *currentID
	}
	if raw == "" {
		if cur == "" {
			return nil
		}
		cs.Canonical[field] = nil
		cs.Changes = append(cs.Changes, FieldChange{
			Field:       field,
			FromDisplay: vocab.DisplayName(kind, cur, vocabulary),
			ToDisplay:   "",
		})
		return nil
	}
	nextID, err := vocab.Resolve(kind, raw, vocabulary)
	if err != nil {
		return err
	}
	if nextID == cur {
		return nil
	}
	cs.Canonical[field] = nextID
	fromDisplay := ""
	if cur != "" {
		fromDisplay = vocab.DisplayName(kind, cur, vocabulary)
	}
	cs.Changes = append(cs.Changes, FieldChange{
		Field:       field,
		FromDisplay: fromDisplay,
		ToDisplay:   vocab.DisplayName(kind, nextID, vocabulary),
	})
	return nil
}

func diffStatus(cs *ChangeSet, existing *domain.Issue, raw string, vocabulary domain.ProjectVocabulary) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	nextID, err := vocab.Resolve(domain.VocabStatus, raw, vocabulary)
	if err != nil {
		return err
	}
	if nextID == existing.StatusID {
		return nil
	}
	fromDisplay := vocab.DisplayName(domain.VocabStatus, existing.StatusID, vocabulary)
	toDisplay := vocab.DisplayName(domain.VocabStatus, nextID, vocabulary)

	cs.Canonical[domain.FieldStatus] = nextID
	cs.Changes = append(cs.Changes, FieldChange{Field: domain.FieldStatus, FromDisplay: fromDisplay, ToDisplay: toDisplay})
	cs.StatusChanged = true
	cs.FromStatusDisplay = fromDisplay
	cs.ToStatusDisplay = toDisplay

	if domain.IsTerminalStatus(nextID) {
		cs.SetResolvedAt = true
	} else if existing.ResolvedAt != nil {
		cs.ClearResolvedAt = true
	}
	return nil
}
