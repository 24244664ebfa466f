package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/trackloop/issue-tracker/internal/api/dto"
	"github.com/trackloop/issue-tracker/internal/auth"
	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/service"
	apperrors "github.com/trackloop/issue-tracker/pkg/util"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// Create POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.ProjectCreateInput{
		Key:        req.Key,
		Name:       req.Name,
		Vocabulary: req.Vocabulary,
	}
	if req.Permissions != nil {
		input.Permissions = domain.ProjectPermissions{
			ReadUsers:  req.Permissions.ReadUsers,
			WriteUsers: req.Permissions.WriteUsers,
			AdminUsers: req.Permissions.AdminUsers,
		}
	}
	project, err := h.service.CreateProject(c.Context(), user, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// Get GET /projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	project, err := h.service.GetProject(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdateVocabulary PUT /projects/:id/vocabulary.
func (h *ProjectsHandler) UpdateVocabulary(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.VocabularyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	vocabulary := domain.ProjectVocabulary{
		Statuses:    req.Statuses,
		Types:       req.Types,
		Priorities:  req.Priorities,
		Resolutions: req.Resolutions,
	}
	project, err := h.service.UpdateVocabulary(c.Context(), user, c.Params("id"), vocabulary)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdatePermissions PUT /projects/:id/permissions.
func (h *ProjectsHandler) UpdatePermissions(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permissions := domain.ProjectPermissions{
		ReadUsers:  req.ReadUsers,
		WriteUsers: req.WriteUsers,
		AdminUsers: req.AdminUsers,
	}
	project, err := h.service.UpdatePermissions(c.Context(), user, c.Params("id"), permissions)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Key:         project.Key,
		Name:        project.Name,
		Vocabulary:  project.Vocabulary,
		Components:  project.Components,
		Customers:   project.Customers,
		Versions:    project.Versions,
		Permissions: project.Permissions,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
