package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trackloop/issue-tracker/internal/domain"
)

const issueColumns = `id, project_id, issue_key, seq, title, description, reporter_id, assignee_id,
               legacy_comment, status_id, type_id, priority_id, resolution_id,
               component_id, customer_id, affects_version_id, fix_version_id,
               comments, attachments, history, created_at, updated_at, resolved_at`

// IssueFilter captures listing parameters. Vocabulary filters carry canonical
// IDs, resolved by the caller.
type IssueFilter struct {
	ProjectID  string
	ReporterID *string
	AssigneeID *string
	StatusID   *string
	TypeID     *string
	PriorityID *string
	Limit      int
	Offset     int
}

// IssueRepository encapsulates issue persistence. ApplyMutation is the sole
// write path for existing issues.
type IssueRepository interface {
	Insert(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByKey(ctx context.Context, key string) (*domain.Issue, error)
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	ApplyMutation(ctx context.Context, id string, mutation domain.IssueMutation) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const insertIssueQuery = `
        INSERT INTO issues (id, project_id, issue_key, seq, title, description, reporter_id, assignee_id,
                            legacy_comment, status_id, type_id, priority_id, resolution_id,
                            component_id, customer_id, affects_version_id, fix_version_id,
                            comments, attachments, history, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING created_at, updated_at, resolved_at`

// insertIssueArgs renders an issue in insert placeholder order, with the
// JSONB collections marshalled up front.
func insertIssueArgs(issue *domain.Issue) ([]any, error) {
	comments, err := json.Marshal(emptySlice(issue.Comments))
	if err != nil {
		return nil, err
	}
	attachments, err := json.Marshal(emptySlice(issue.Attachments))
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(emptySlice(issue.History))
	if err != nil {
		return nil, err
	}
	return []any{
		issue.ID,
		issue.ProjectID,
		issue.Key,
		issue.Seq,
		issue.Title,
		issue.Description,
		issue.ReporterID,
		issue.AssigneeID,
		issue.LegacyComment,
		issue.StatusID,
		issue.TypeID,
		issue.PriorityID,
		issue.ResolutionID,
		issue.ComponentID,
		issue.CustomerID,
		issue.AffectsVersionID,
		issue.FixVersionID,
		comments,
		attachments,
		history,
		issue.ResolvedAt,
	}, nil
}

func (r *issueRepository) Insert(ctx context.Context, issue *domain.Issue) error {
	args, err := insertIssueArgs(issue)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, insertIssueQuery, args...).Scan(&issue.CreatedAt, &issue.UpdatedAt, &issue.ResolvedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id=$1`, issueColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) GetByKey(ctx context.Context, key string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE issue_key=$1`, issueColumns)
	return r.fetchSingle(ctx, query, key)
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanIssue(row)
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"project_id=$1"}
	args := []any{filter.ProjectID}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("status_id=$%d", len(args)))
	}
	if filter.TypeID != nil {
		args = append(args, *filter.TypeID)
		clauses = append(clauses, fmt.Sprintf("type_id=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("priority_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY seq DESC LIMIT %d OFFSET %d`,
		issueColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

// ApplyMutation executes the whole mutation command as one UPDATE statement,
// so field sets and history/comment/attachment appends commit together or
// not at all. Returns the row as it stands after the update.
func (r *issueRepository) ApplyMutation(ctx context.Context, id string, mutation domain.IssueMutation) (*domain.Issue, error) {
	if mutation.Empty() {
		return r.GetByID(ctx, id)
	}
	assignments, args, err := buildMutationAssignments(mutation)
	if err != nil {
		return nil, err
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE issues SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(assignments, ", "), len(args), issueColumns)
	row := r.pool.QueryRow(ctx, query, args...)
	return scanIssue(row)
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// fieldColumns maps mutation field names to table columns.
var fieldColumns = map[domain.IssueField]string{
	domain.FieldTitle:          "title",
	domain.FieldDescription:    "description",
	domain.FieldAssignee:       "assignee_id",
	domain.FieldStatus:         "status_id",
	domain.FieldType:           "type_id",
	domain.FieldPriority:       "priority_id",
	domain.FieldResolution:     "resolution_id",
	domain.FieldComponent:      "component_id",
	domain.FieldCustomer:       "customer_id",
	domain.FieldAffectsVersion: "affects_version_id",
	domain.FieldFixVersion:     "fix_version_id",
	domain.FieldLegacyComment:  "legacy_comment",
}

// buildMutationAssignments renders a mutation into SET assignments with
// numbered placeholders. Field order is sorted by column name so the
// generated SQL is deterministic.
func buildMutationAssignments(mutation domain.IssueMutation) ([]string, []any, error) {
	var assignments []string
	var args []any

	fields := make([]domain.IssueField, 0, len(mutation.SetFields))
	for field := range mutation.SetFields {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fieldColumns[fields[i]] < fieldColumns[fields[j]] })

	for _, field := range fields {
		column, ok := fieldColumns[field]
		if !ok {
			return nil, nil, fmt.Errorf("unknown issue field %q", field)
		}
		args = append(args, mutation.SetFields[field])
		assignments = append(assignments, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if mutation.SetUpdatedAt != nil {
		args = append(args, *mutation.SetUpdatedAt)
		assignments = append(assignments, fmt.Sprintf("updated_at=$%d", len(args)))
	}
	if mutation.SetResolvedAt != nil {
		args = append(args, *mutation.SetResolvedAt)
		assignments = append(assignments, fmt.Sprintf("resolved_at=$%d", len(args)))
	} else if mutation.ClearResolvedAt {
		assignments = append(assignments, "resolved_at=NULL")
	}

	if mutation.PushHistory != nil {
		encoded, err := json.Marshal([]domain.HistoryEntry{*mutation.PushHistory})
		if err != nil {
			return nil, nil, err
		}
		args = append(args, encoded)
		assignments = append(assignments, fmt.Sprintf("history = history || $%d::jsonb", len(args)))
	}
	if mutation.PushComment != nil {
		encoded, err := json.Marshal([]domain.Comment{*mutation.PushComment})
		if err != nil {
			return nil, nil, err
		}
		args = append(args, encoded)
		assignments = append(assignments, fmt.Sprintf("comments = comments || $%d::jsonb", len(args)))
	}
	if len(mutation.PushAttachments) > 0 {
		encoded, err := json.Marshal(mutation.PushAttachments)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, encoded)
		assignments = append(assignments, fmt.Sprintf("attachments = attachments || $%d::jsonb", len(args)))
	}

	return assignments, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.ProjectID,
		&issue.Key,
		&issue.Seq,
		&issue.Title,
		&issue.Description,
		&issue.ReporterID,
		&issue.AssigneeID,
		&issue.LegacyComment,
		&issue.StatusID,
		&issue.TypeID,
		&issue.PriorityID,
		&issue.ResolutionID,
		&issue.ComponentID,
		&issue.CustomerID,
		&issue.AffectsVersionID,
		&issue.FixVersionID,
		&issue.Comments,
		&issue.Attachments,
		&issue.History,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

// emptySlice keeps JSONB columns as [] instead of null.
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
