package repository

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/trackloop/issue-tracker/internal/domain"
)

func TestInsertIssueArgs(t *testing.T) {
	resolved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issue := &domain.Issue{
		ID:         "issue-1",
		ProjectID:  "proj-1",
		Key:        "PROJ-1",
		Seq:        1,
		Title:      "Imported as closed",
		ReporterID: "alice",
		StatusID:   "closed",
		TypeID:     "bug",
		PriorityID: "medium",
	}

	t.Run("terminal status persists resolved at", func(t *testing.T) {
		withResolved := *issue
		withResolved.ResolvedAt = &resolved
		args, err := insertIssueArgs(&withResolved)
		if err != nil {
			t.Fatalf("insertIssueArgs: %v", err)
		}
		if !strings.Contains(insertIssueQuery, "resolved_at") {
			t.Fatal("insert column list is missing resolved_at")
		}
		if placeholders := strings.Count(insertIssueQuery, "$"); placeholders != len(args) {
			t.Fatalf("placeholders = %d, args = %d", placeholders, len(args))
		}
		got, ok := args[len(args)-1].(*time.Time)
		if !ok || got == nil || !got.Equal(resolved) {
			t.Fatalf("resolved_at arg = %v", args[len(args)-1])
		}
	})

	t.Run("open issue inserts null resolved at", func(t *testing.T) {
		args, err := insertIssueArgs(issue)
		if err != nil {
			t.Fatalf("insertIssueArgs: %v", err)
		}
		if got := args[len(args)-1].(*time.Time); got != nil {
			t.Fatalf("resolved_at arg = %v, want nil", got)
		}
	})
}

func TestBuildMutationAssignmentsFieldOrder(t *testing.T) {
	mutation := domain.IssueMutation{
		SetFields: map[domain.IssueField]any{
			domain.FieldTitle:    "New title",
			domain.FieldStatus:   "resolved",
			domain.FieldAssignee: nil,
		},
	}

	assignments, args, err := buildMutationAssignments(mutation)
	if err != nil {
		t.Fatalf("buildMutationAssignments: %v", err)
	}

	// sorted by column name so the same mutation always renders the same SQL
	want := []string{"assignee_id=$1", "status_id=$2", "title=$3"}
	if !reflect.DeepEqual(assignments, want) {
		t.Fatalf("assignments = %v, want %v", assignments, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
	if args[0] != nil || args[1] != "resolved" || args[2] != "New title" {
		t.Fatalf("args out of order: %v", args)
	}
}

func TestBuildMutationAssignmentsTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("set resolved at", func(t *testing.T) {
		mutation := domain.IssueMutation{SetUpdatedAt: &now, SetResolvedAt: &now}
		assignments, args, err := buildMutationAssignments(mutation)
		if err != nil {
			t.Fatalf("buildMutationAssignments: %v", err)
		}
		want := []string{"updated_at=$1", "resolved_at=$2"}
		if !reflect.DeepEqual(assignments, want) {
			t.Fatalf("assignments = %v, want %v", assignments, want)
		}
		if len(args) != 2 {
			t.Fatalf("args = %v", args)
		}
	})

	t.Run("clear resolved at takes no placeholder", func(t *testing.T) {
		mutation := domain.IssueMutation{SetUpdatedAt: &now, ClearResolvedAt: true}
		assignments, args, err := buildMutationAssignments(mutation)
		if err != nil {
			t.Fatalf("buildMutationAssignments: %v", err)
		}
		want := []string{"updated_at=$1", "resolved_at=NULL"}
		if !reflect.DeepEqual(assignments, want) {
			t.Fatalf("assignments = %v, want %v", assignments, want)
		}
		if len(args) != 1 {
			t.Fatalf("args = %v", args)
		}
	})
}

func TestBuildMutationAssignmentsAppends(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mutation := domain.IssueMutation{
		PushHistory: &domain.HistoryEntry{
			ID:        "hist-1",
			ActorID:   "alice",
			Action:    domain.HistoryActionUpdated,
			CreatedAt: now,
		},
		PushComment: &domain.Comment{
			ID:        "comment-1",
			AuthorID:  "alice",
			Text:      "done",
			CreatedAt: now,
		},
		PushAttachments: []domain.Attachment{
			{ID: "att-1", StorageFilename: "abc.png", OriginalName: "screen.png", CreatedAt: now},
		},
	}

	assignments, args, err := buildMutationAssignments(mutation)
	if err != nil {
		t.Fatalf("buildMutationAssignments: %v", err)
	}
	want := []string{
		"history = history || $1::jsonb",
		"comments = comments || $2::jsonb",
		"attachments = attachments || $3::jsonb",
	}
	if !reflect.DeepEqual(assignments, want) {
		t.Fatalf("assignments = %v, want %v", assignments, want)
	}

	// single entries must be encoded as one-element arrays for the JSONB concat
	var history []domain.HistoryEntry
	if err := json.Unmarshal(args[0].([]byte), &history); err != nil {
		t.Fatalf("history arg is not a JSON array: %v", err)
	}
	if len(history) != 1 || history[0].ID != "hist-1" {
		t.Fatalf("history payload = %+v", history)
	}
	var comments []domain.Comment
	if err := json.Unmarshal(args[1].([]byte), &comments); err != nil {
		t.Fatalf("comment arg is not a JSON array: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "done" {
		t.Fatalf("comment payload = %+v", comments)
	}
}

func TestBuildMutationAssignmentsUnknownField(t *testing.T) {
	mutation := domain.IssueMutation{
		SetFields: map[domain.IssueField]any{domain.IssueField("reporter"): "eve"},
	}
	if _, _, err := buildMutationAssignments(mutation); err == nil {
		t.Fatal("expected error for unmapped field")
	}
}

func TestEmptySlice(t *testing.T) {
	if got := emptySlice[string](nil); got == nil || len(got) != 0 {
		t.Fatalf("emptySlice(nil) = %v", got)
	}
	in := []string{"a"}
	if got := emptySlice(in); !reflect.DeepEqual(got, in) {
		t.Fatalf("emptySlice = %v", got)
	}
}
