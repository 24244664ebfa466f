package changeset

import (
	"errors"
	"testing"
	"time"

	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/vocab"
)

func ptr(s string) *string { return &s }

func testVocabulary() domain.ProjectVocabulary {
	return domain.ProjectVocabulary{
		Statuses: []domain.VocabItem{
			{ID: "open", Name: "Open"},
			{ID: "in-progress", Name: "In Progress"},
			{ID: "resolved", Name: "Resolved"},
			{ID: "closed", Name: "Closed"},
		},
		Types: []domain.VocabItem{
			{ID: "task", Name: "Task"},
			{ID: "bug", Name: "Bug"},
		},
		Priorities: []domain.VocabItem{
			{ID: "medium", Name: "Medium"},
			{ID: "high", Name: "High"},
		},
		Resolutions: []domain.VocabItem{
			{ID: "fixed", Name: "Fixed"},
			{ID: "wontfix", Name: "Won't Fix"},
		},
	}
}

func storedIssue() *domain.Issue {
	return &domain.Issue{
		ID:          "issue-1",
		Title:       "Login fails",
		Description: "Login returns 500",
		ReporterID:  "alice",
		AssigneeID:  ptr("bob"),
		StatusID:    "open",
		TypeID:      "bug",
		PriorityID:  "medium",
	}
}

func TestDiffNoFieldsSupplied(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("expected empty change set, got %+v", cs.Changes)
	}
}

func TestDiffResubmitSameState(t *testing.T) {
	// every supplied field equals the stored value, some under an alternate
	// spelling; nothing really changed
	proposed := PartialUpdate{
		Title:       ptr("Login fails"),
		Description: ptr("Login returns 500"),
		Assignee:    ptr("bob"),
		Status:      ptr("Open"),
		Type:        ptr("버그"),
		Priority:    ptr("medium"),
	}
	cs, err := Diff(storedIssue(), proposed, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("expected empty change set, got %v", cs.FieldNames())
	}
}

func TestDiffTitleChange(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Title: ptr("Login fails on mobile")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(cs.Changes) != 1 {
		t.Fatalf("expected one change, got %v", cs.FieldNames())
	}
	change := cs.Changes[0]
	if change.Field != domain.FieldTitle || change.FromDisplay != "Login fails" || change.ToDisplay != "Login fails on mobile" {
		t.Fatalf("unexpected change: %+v", change)
	}
	if cs.Canonical[domain.FieldTitle] != "Login fails on mobile" {
		t.Fatalf("canonical title not set: %v", cs.Canonical)
	}
}

func TestDiffEmptyTitleRejected(t *testing.T) {
	_, err := Diff(storedIssue(), PartialUpdate{Title: ptr("   ")}, testVocabulary())
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestDiffClearDescription(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Description: ptr("")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(cs.Changes) != 1 || cs.Changes[0].Field != domain.FieldDescription {
		t.Fatalf("expected description change, got %v", cs.FieldNames())
	}
	if cs.Canonical[domain.FieldDescription] != "" {
		t.Fatalf("canonical description = %v, want empty string", cs.Canonical[domain.FieldDescription])
	}
}

func TestDiffClearAssignee(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Assignee: ptr("")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(cs.Changes) != 1 {
		t.Fatalf("expected one change, got %v", cs.FieldNames())
	}
	if cs.Canonical[domain.FieldAssignee] != nil {
		t.Fatalf("cleared assignee must persist as nil, got %v", cs.Canonical[domain.FieldAssignee])
	}
	if cs.Changes[0].FromDisplay != "bob" || cs.Changes[0].ToDisplay != "" {
		t.Fatalf("unexpected displays: %+v", cs.Changes[0])
	}
}

func TestDiffClearUnassignedAssigneeIsNoop(t *testing.T) {
	issue := storedIssue()
	issue.AssigneeID = nil
	cs, err := Diff(issue, PartialUpdate{Assignee: ptr("")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("expected empty change set, got %v", cs.FieldNames())
	}
}

func TestDiffStatusToTerminal(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Status: ptr("Resolved")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !cs.StatusChanged {
		t.Fatal("expected StatusChanged")
	}
	if cs.FromStatusDisplay != "Open" || cs.ToStatusDisplay != "Resolved" {
		t.Fatalf("displays = %q -> %q", cs.FromStatusDisplay, cs.ToStatusDisplay)
	}
	if !cs.SetResolvedAt || cs.ClearResolvedAt {
		t.Fatalf("terminal transition must set resolvedAt: %+v", cs)
	}
	if cs.Canonical[domain.FieldStatus] != "resolved" {
		t.Fatalf("canonical status = %v", cs.Canonical[domain.FieldStatus])
	}
}

func TestDiffStatusLeavingTerminal(t *testing.T) {
	resolvedAt := time.Now()
	issue := storedIssue()
	issue.StatusID = "resolved"
	issue.ResolvedAt = &resolvedAt

	cs, err := Diff(issue, PartialUpdate{Status: ptr("open")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if cs.SetResolvedAt || !cs.ClearResolvedAt {
		t.Fatalf("reopening must clear resolvedAt: %+v", cs)
	}
}

func TestDiffEmptyStatusLeavesFieldUntouched(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Status: ptr("")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("empty status value must be ignored, got %v", cs.FieldNames())
	}
}

func TestDiffClearResolution(t *testing.T) {
	issue := storedIssue()
	issue.ResolutionID = ptr("fixed")
	cs, err := Diff(issue, PartialUpdate{Resolution: ptr("")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(cs.Changes) != 1 || cs.Changes[0].Field != domain.FieldResolution {
		t.Fatalf("expected resolution change, got %v", cs.FieldNames())
	}
	if cs.Canonical[domain.FieldResolution] != nil {
		t.Fatalf("cleared resolution must persist as nil")
	}
	if cs.Changes[0].FromDisplay != "Fixed" || cs.Changes[0].ToDisplay != "" {
		t.Fatalf("unexpected displays: %+v", cs.Changes[0])
	}
}

func TestDiffUnknownVocabValue(t *testing.T) {
	_, err := Diff(storedIssue(), PartialUpdate{Priority: ptr("urgent-ish")}, testVocabulary())
	var unresolved *vocab.UnresolvedValueError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedValueError, got %v", err)
	}
	if unresolved.Kind != domain.VocabPriority {
		t.Fatalf("kind = %q", unresolved.Kind)
	}
}

func TestDiffChangeMap(t *testing.T) {
	cs, err := Diff(storedIssue(), PartialUpdate{Status: ptr("해결됨"), Priority: ptr("High")}, testVocabulary())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	m := cs.ChangeMap()
	if len(m) != 2 {
		t.Fatalf("ChangeMap size = %d", len(m))
	}
	if m["status"] != (domain.ValueChange{From: "Open", To: "Resolved"}) {
		t.Fatalf("status change = %+v", m["status"])
	}
	if m["priority"] != (domain.ValueChange{From: "Medium", To: "High"}) {
		t.Fatalf("priority change = %+v", m["priority"])
	}
}

// Applying a change set and then diffing the same proposal again must yield
// an empty change set.
func TestDiffIdempotent(t *testing.T) {
	vocabulary := testVocabulary()
	proposed := PartialUpdate{
		Title:    ptr("Login fails on mobile"),
		Assignee: ptr("carol"),
		Status:   ptr("In Progress"),
		Priority: ptr("High"),
	}
	issue := storedIssue()
	cs, err := Diff(issue, proposed, vocabulary)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if cs.Empty() {
		t.Fatal("expected changes on first diff")
	}

	applyCanonical(issue, cs)

	again, err := Diff(issue, proposed, vocabulary)
	if err != nil {
		t.Fatalf("second Diff: %v", err)
	}
	if !again.Empty() {
		t.Fatalf("second diff must be empty, got %v", again.FieldNames())
	}
}

func applyCanonical(issue *domain.Issue, cs ChangeSet) {
	for field, value := range cs.Canonical {
		str, _ := value.(string)
		var p *string
		if value != nil {
			s := str
			p = &s
		}
		switch field {
		case domain.FieldTitle:
			issue.Title = str
		case domain.FieldDescription:
			issue.Description = str
		case domain.FieldAssignee:
			issue.AssigneeID = p
		case domain.FieldStatus:
			issue.StatusID = str
		case domain.FieldType:
			issue.TypeID = str
		case domain.FieldPriority:
			issue.PriorityID = str
		case domain.FieldResolution:
			issue.ResolutionID = p
		case domain.FieldComponent:
			issue.ComponentID = p
		case domain.FieldCustomer:
			issue.CustomerID = p
		case domain.FieldAffectsVersion:
			issue.AffectsVersionID = p
		case domain.FieldFixVersion:
			issue.FixVersionID = p
		case domain.FieldLegacyComment:
			issue.LegacyComment = str
		}
	}
}
