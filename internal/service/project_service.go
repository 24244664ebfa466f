package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/permission"
	"github.com/trackloop/issue-tracker/internal/repository"
	apperrors "github.com/trackloop/issue-tracker/pkg/util"
)

// ProjectService manages project records, their vocabulary, and their ACL.
type ProjectService struct {
	projects repository.ProjectRepository
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Key         string
	Name        string
	Vocabulary  *domain.ProjectVocabulary
	Permissions domain.ProjectPermissions
}

// CreateProject inserts a project, seeding the built-in vocabulary when none
// is supplied. The creator is granted admin on the project unless the ACL is
// left fully open.
func (s *ProjectService) CreateProject(ctx context.Context, user domain.CurrentUser, input ProjectCreateInput) (*domain.Project, error) {
	key := strings.ToUpper(strings.TrimSpace(input.Key))
	name := strings.TrimSpace(input.Name)
	if key == "" || name == "" {
		return nil, apperrors.NewValidationError("key and name are required", nil)
	}

	vocabulary := DefaultVocabulary()
	if input.Vocabulary != nil {
		vocabulary = *input.Vocabulary
	}
	permissions := input.Permissions
	if !permissions.Empty() && !contains(permissions.AdminUsers, user.UserID) {
		permissions.AdminUsers = append(permissions.AdminUsers, user.UserID)
	}

	project := &domain.Project{
		ID:          uuid.NewString(),
		Key:         key,
		Name:        name,
		Vocabulary:  vocabulary,
		Permissions: permissions,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.NewConflict("project key already exists", map[string]any{"key": key})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// GetProject fetches a project the caller can read.
func (s *ProjectService) GetProject(ctx context.Context, user domain.CurrentUser, projectID string) (*domain.Project, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentRead); !decision.Allowed {
		return nil, apperrors.NewForbidden("read access required")
	}
	return project, nil
}

// UpdateVocabulary replaces the four vocabulary lists. Item IDs are stable;
// renames and recolors pass through, and the list order is re-sequenced.
func (s *ProjectService) UpdateVocabulary(ctx context.Context, user domain.CurrentUser, projectID string, vocabulary domain.ProjectVocabulary) (*domain.Project, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentAdminConfig); !decision.Allowed {
		return nil, apperrors.NewForbidden("project admin required")
	}

	for _, kind := range []domain.VocabKind{domain.VocabStatus, domain.VocabType, domain.VocabPriority, domain.VocabResolution} {
		items := vocabulary.List(kind)
		if len(items) == 0 {
			return nil, apperrors.NewValidationError("vocabulary lists cannot be empty", map[string]any{"kind": string(kind)})
		}
		for i := range items {
			if strings.TrimSpace(items[i].ID) == "" || strings.TrimSpace(items[i].Name) == "" {
				return nil, apperrors.NewValidationError("vocabulary items need id and name", map[string]any{"kind": string(kind)})
			}
			items[i].Order = i
		}
	}

	if err := s.projects.UpdateVocabulary(ctx, project.ID, vocabulary); err != nil {
		return nil, apperrors.MapError(err)
	}
	project.Vocabulary = vocabulary
	return project, nil
}

// UpdatePermissions replaces the three ACL sets.
func (s *ProjectService) UpdatePermissions(ctx context.Context, user domain.CurrentUser, projectID string, permissions domain.ProjectPermissions) (*domain.Project, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentAdminConfig); !decision.Allowed {
		return nil, apperrors.NewForbidden("project admin required")
	}
	if err := s.projects.UpdatePermissions(ctx, project.ID, permissions); err != nil {
		return nil, apperrors.MapError(err)
	}
	project.Permissions = permissions
	return project, nil
}

func (s *ProjectService) load(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// DefaultVocabulary seeds a new project with the built-in lists. The IDs
// match the legacy mapping tables so imported records resolve cleanly.
func DefaultVocabulary() domain.ProjectVocabulary {
	return domain.ProjectVocabulary{
		Statuses: []domain.VocabItem{
			{ID: "open", Name: "Open", Color: "#39b54a", Order: 0},
			{ID: "in-progress", Name: "In Progress", Color: "#f7941d", Order: 1},
			{ID: "resolved", Name: "Resolved", Color: "#0072bc", Order: 2},
			{ID: "closed", Name: "Closed", Color: "#959595", Order: 3},
			{ID: "rejected", Name: "Rejected", Color: "#ed1c24", Order: 4},
		},
		Types: []domain.VocabItem{
			{ID: "task", Name: "Task", Color: "#4fc1e9", Order: 0},
			{ID: "bug", Name: "Bug", Color: "#ed5565", Order: 1},
			{ID: "improvement", Name: "Improvement", Color: "#a0d468", Order: 2},
			{ID: "feature", Name: "New Feature", Color: "#ac92ec", Order: 3},
		},
		Priorities: []domain.VocabItem{
			{ID: "medium", Name: "Medium", Color: "#f7941d", Order: 0},
			{ID: "high", Name: "High", Color: "#ed5565", Order: 1},
			{ID: "low", Name: "Low", Color: "#39b54a", Order: 2},
			{ID: "critical", Name: "Critical", Color: "#d80027", Order: 3},
		},
		Resolutions: []domain.VocabItem{
			{ID: "fixed", Name: "Fixed", Color: "#0072bc", Order: 0},
			{ID: "wontfix", Name: "Won't Fix", Color: "#959595", Order: 1},
			{ID: "duplicate", Name: "Duplicate", Color: "#f7941d", Order: 2},
			{ID: "cannot-reproduce", Name: "Cannot Reproduce", Color: "#967adc", Order: 3},
		},
	}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
