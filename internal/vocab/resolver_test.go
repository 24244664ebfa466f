package vocab

import (
	"errors"
	"testing"

	"github.com/trackloop/issue-tracker/internal/domain"
)

func testVocabulary() domain.ProjectVocabulary {
	return domain.ProjectVocabulary{
		Statuses: []domain.VocabItem{
			{ID: "open", Name: "Open"},
			{ID: "in-progress", Name: "Doing"},
			{ID: "resolved", Name: "Resolved"},
			{ID: "closed", Name: "Closed"},
		},
		Types: []domain.VocabItem{
			{ID: "bug", Name: "Bug"},
			{ID: "task", Name: "Task"},
		},
		Priorities: []domain.VocabItem{
			{ID: "high", Name: "High"},
			{ID: "medium", Name: "Medium"},
		},
		Resolutions: []domain.VocabItem{
			{ID: "fixed", Name: "Fixed"},
		},
	}
}

func TestResolve(t *testing.T) {
	vocabulary := testVocabulary()

	tests := []struct {
		name string
		kind domain.VocabKind
		raw  string
		want string
	}{
		{"current id", domain.VocabStatus, "open", "open"},
		{"current name", domain.VocabStatus, "Open", "open"},
		{"renamed item by new name", domain.VocabStatus, "Doing", "in-progress"},
		{"legacy korean name", domain.VocabStatus, "열림", "open"},
		{"legacy english name after rename", domain.VocabStatus, "In Progress", "in-progress"},
		{"surrounding whitespace", domain.VocabStatus, "  open  ", "open"},
		{"type legacy name", domain.VocabType, "버그", "bug"},
		{"priority name", domain.VocabPriority, "High", "high"},
		{"resolution legacy name", domain.VocabResolution, "Won't Fix", "wontfix"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.kind, tc.raw, vocabulary)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestResolveIDBeatsName(t *testing.T) {
	// a raw value that is both one item's ID and another item's name must
	// resolve as the ID
	vocabulary := domain.ProjectVocabulary{
		Statuses: []domain.VocabItem{
			{ID: "open", Name: "New"},
			{ID: "triage", Name: "open"},
		},
	}
	got, err := Resolve(domain.VocabStatus, "open", vocabulary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "open" {
		t.Fatalf("Resolve = %q, want %q", got, "open")
	}
}

func TestResolveUnknownValue(t *testing.T) {
	_, err := Resolve(domain.VocabStatus, "blocked", testVocabulary())
	var unresolved *UnresolvedValueError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedValueError, got %v", err)
	}
	if unresolved.Kind != domain.VocabStatus || unresolved.Value != "blocked" {
		t.Fatalf("unexpected error fields: %+v", unresolved)
	}
}

func TestDisplayName(t *testing.T) {
	vocabulary := testVocabulary()

	if got := DisplayName(domain.VocabStatus, "in-progress", vocabulary); got != "Doing" {
		t.Fatalf("DisplayName = %q, want %q", got, "Doing")
	}
	// a deleted or renamed-away ID must stay renderable as-is
	if got := DisplayName(domain.VocabStatus, "archived", vocabulary); got != "archived" {
		t.Fatalf("DisplayName fallback = %q, want raw id", got)
	}
}
