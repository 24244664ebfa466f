package dto

import (
	"time"

	"github.com/trackloop/issue-tracker/internal/domain"
)

// CreateProjectRequest payload. Vocabulary is optional; the built-in lists
// are seeded when absent.
type CreateProjectRequest struct {
	Key         string                    `json:"key"`
	Name        string                    `json:"name"`
	Vocabulary  *domain.ProjectVocabulary `json:"vocabulary,omitempty"`
	Permissions *PermissionsRequest       `json:"permissions,omitempty"`
}

// PermissionsRequest replaces the project ACL sets.
type PermissionsRequest struct {
	ReadUsers  []string `json:"read_users"`
	WriteUsers []string `json:"write_users"`
	AdminUsers []string `json:"admin_users"`
}

// VocabularyRequest replaces the four vocabulary lists.
type VocabularyRequest struct {
	Statuses    []domain.VocabItem `json:"statuses"`
	Types       []domain.VocabItem `json:"types"`
	Priorities  []domain.VocabItem `json:"priorities"`
	Resolutions []domain.VocabItem `json:"resolutions"`
}

// ProjectResponse is the project shape.
type ProjectResponse struct {
	ID          string                    `json:"id"`
	Key         string                    `json:"key"`
	Name        string                    `json:"name"`
	Vocabulary  domain.ProjectVocabulary  `json:"vocabulary"`
	Components  []domain.NamedRef         `json:"components"`
	Customers   []domain.NamedRef         `json:"customers"`
	Versions    []domain.NamedRef         `json:"versions"`
	Permissions domain.ProjectPermissions `json:"permissions"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}
