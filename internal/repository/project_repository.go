package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trackloop/issue-tracker/internal/domain"
)

// ErrDuplicateKey signals a project key collision on creation.
var ErrDuplicateKey = errors.New("duplicate project key")

const projectColumns = `id, project_key, name, issue_seq, statuses, types, priorities, resolutions,
               components, customers, versions, read_users, write_users, admin_users,
               created_at, updated_at`

// ProjectRepository encapsulates project persistence, including the atomic
// issue sequence allocator.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	NextIssueSeq(ctx context.Context, projectID string) (int64, error)
	UpdateVocabulary(ctx context.Context, projectID string, vocabulary domain.ProjectVocabulary) error
	UpdatePermissions(ctx context.Context, projectID string, permissions domain.ProjectPermissions) error
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (id, project_key, name, statuses, types, priorities, resolutions,
                              components, customers, versions, read_users, write_users, admin_users)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING issue_seq, created_at, updated_at`
	args := []any{project.ID, project.Key, project.Name}
	for _, list := range [][]domain.VocabItem{
		project.Vocabulary.Statuses,
		project.Vocabulary.Types,
		project.Vocabulary.Priorities,
		project.Vocabulary.Resolutions,
	} {
		encoded, err := json.Marshal(emptySlice(list))
		if err != nil {
			return err
		}
		args = append(args, encoded)
	}
	for _, refs := range [][]domain.NamedRef{project.Components, project.Customers, project.Versions} {
		encoded, err := json.Marshal(emptySlice(refs))
		if err != nil {
			return err
		}
		args = append(args, encoded)
	}
	args = append(args,
		emptySlice(project.Permissions.ReadUsers),
		emptySlice(project.Permissions.WriteUsers),
		emptySlice(project.Permissions.AdminUsers),
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(&project.IssueSeq, &project.CreatedAt, &project.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.fetchSingle(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, id)
}

func (r *projectRepository) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	return r.fetchSingle(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_key=$1`, key)
}

func (r *projectRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Project, error) {
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&project.ID,
		&project.Key,
		&project.Name,
		&project.IssueSeq,
		&project.Vocabulary.Statuses,
		&project.Vocabulary.Types,
		&project.Vocabulary.Priorities,
		&project.Vocabulary.Resolutions,
		&project.Components,
		&project.Customers,
		&project.Versions,
		&project.Permissions.ReadUsers,
		&project.Permissions.WriteUsers,
		&project.Permissions.AdminUsers,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

// NextIssueSeq allocates the next issue sequence number with a single
// increment-and-read, so concurrent creations never see the same value.
func (r *projectRepository) NextIssueSeq(ctx context.Context, projectID string) (int64, error) {
	const query = `UPDATE projects SET issue_seq = issue_seq + 1 WHERE id=$1 RETURNING issue_seq`
	var seq int64
	if err := r.pool.QueryRow(ctx, query, projectID).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *projectRepository) UpdateVocabulary(ctx context.Context, projectID string, vocabulary domain.ProjectVocabulary) error {
	const query = `
        UPDATE projects SET statuses=$1, types=$2, priorities=$3, resolutions=$4, updated_at=NOW()
        WHERE id=$5`
	args := make([]any, 0, 5)
	for _, list := range [][]domain.VocabItem{
		vocabulary.Statuses,
		vocabulary.Types,
		vocabulary.Priorities,
		vocabulary.Resolutions,
	} {
		encoded, err := json.Marshal(emptySlice(list))
		if err != nil {
			return err
		}
		args = append(args, encoded)
	}
	args = append(args, projectID)
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) UpdatePermissions(ctx context.Context, projectID string, permissions domain.ProjectPermissions) error {
	const query = `
        UPDATE projects SET read_users=$1, write_users=$2, admin_users=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		emptySlice(permissions.ReadUsers),
		emptySlice(permissions.WriteUsers),
		emptySlice(permissions.AdminUsers),
		projectID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
