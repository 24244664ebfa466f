package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trackloop/issue-tracker/internal/api/dto"
	"github.com/trackloop/issue-tracker/internal/auth"
	"github.com/trackloop/issue-tracker/internal/changeset"
	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/service"
	"github.com/trackloop/issue-tracker/internal/storage"
	"github.com/trackloop/issue-tracker/internal/vocab"
	apperrors "github.com/trackloop/issue-tracker/pkg/util"
)

// IssuesHandler manages issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
	files   storage.FileStore
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService, files storage.FileStore) *IssuesHandler {
	return &IssuesHandler{service: issueService, files: files}
}

// List GET /issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	projectID := c.Query("projectId")
	if projectID == "" {
		return apperrors.NewValidationError("projectId is required", nil)
	}
	query := service.IssueListQuery{
		ProjectID: projectID,
		Assignee:  c.Query("assignee"),
		Reporter:  c.Query("reporter"),
		Type:      c.Query("type"),
		Priority:  c.Query("priority"),
		Status:    c.Query("status"),
		Limit:     parseInt(c.Query("limit"), 50),
		Offset:    parseInt(c.Query("offset"), 0),
	}
	issues, project, err := h.service.ListIssues(c.Context(), user, query)
	if err != nil {
		return err
	}
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i], project))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetByKey GET /issues/key/:key.
func (h *IssuesHandler) GetByKey(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, project, err := h.service.GetIssueByKey(c.Context(), user, c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(issue, project)})
}

// Create POST /issues (multipart: fields + files).
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if c.FormValue("projectId") == "" || strings.TrimSpace(c.FormValue("title")) == "" ||
		strings.TrimSpace(c.FormValue("reporter")) == "" {
		return apperrors.NewValidationError("projectId, title and reporter are required", nil)
	}
	attachments, err := h.saveUploads(c)
	if err != nil {
		return err
	}
	input := service.IssueCreateInput{
		ProjectID:      c.FormValue("projectId"),
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		ReporterID:     c.FormValue("reporter"),
		AssigneeID:     c.FormValue("assignee"),
		Status:         c.FormValue("status"),
		Type:           c.FormValue("type"),
		Priority:       c.FormValue("priority"),
		Resolution:     c.FormValue("resolution"),
		ComponentID:    c.FormValue("component"),
		CustomerID:     c.FormValue("customer"),
		AffectsVersion: c.FormValue("affectsVersion"),
		FixVersion:     c.FormValue("fixVersion"),
		CommentText:    c.FormValue("comment"),
		Attachments:    attachments,
	}
	issue, err := h.service.CreateIssue(c.Context(), user, input)
	if err != nil {
		return err
	}
	project, err := h.service.GetIssueProject(c.Context(), issue)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueDetail(issue, project)})
}

// Update PUT /issues/:id (multipart: partial fields + files). A form field
// that is absent leaves the issue field untouched; an empty value clears it.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}
	attachments, err := h.saveUploads(c)
	if err != nil {
		return err
	}
	input := service.IssueUpdateInput{
		Fields: changeset.PartialUpdate{
			Title:          formField(form, "title"),
			Description:    formField(form, "description"),
			Assignee:       formField(form, "assignee"),
			Status:         formField(form, "status"),
			Type:           formField(form, "type"),
			Priority:       formField(form, "priority"),
			Resolution:     formField(form, "resolution"),
			Component:      formField(form, "component"),
			Customer:       formField(form, "customer"),
			AffectsVersion: formField(form, "affectsVersion"),
			FixVersion:     formField(form, "fixVersion"),
			LegacyComment:  formField(form, "legacyComment"),
		},
		CommentText: c.FormValue("comment"),
		Attachments: attachments,
	}
	issue, err := h.service.UpdateIssue(c.Context(), user, c.Params("id"), input)
	if err != nil {
		return err
	}
	project, err := h.service.GetIssueProject(c.Context(), issue)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(issue, project)})
}

// AddComment POST /issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.service.AddComment(c.Context(), user, c.Params("id"), req.Text, req.SkipHistory)
	if err != nil {
		return err
	}
	project, err := h.service.GetIssueProject(c.Context(), issue)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueDetail(issue, project)})
}

// Delete DELETE /issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteIssue(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *IssuesHandler) saveUploads(c *fiber.Ctx) ([]storage.StoredFile, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	var stored []storage.StoredFile
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable upload", map[string]any{"file": header.Filename})
		}
		record, err := h.files.Save(header.Filename, file)
		_ = file.Close()
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		stored = append(stored, record)
	}
	return stored, nil
}

func formField(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func issueSummary(issue *domain.Issue, project *domain.Project) dto.IssueSummary {
	vocabulary := project.Vocabulary
	return dto.IssueSummary{
		ID:         issue.ID,
		Key:        issue.Key,
		ProjectID:  issue.ProjectID,
		Title:      issue.Title,
		ReporterID: issue.ReporterID,
		AssigneeID: issue.AssigneeID,
		StatusID:   issue.StatusID,
		Status:     vocab.DisplayName(domain.VocabStatus, issue.StatusID, vocabulary),
		TypeID:     issue.TypeID,
		Type:       vocab.DisplayName(domain.VocabType, issue.TypeID, vocabulary),
		PriorityID: issue.PriorityID,
		Priority:   vocab.DisplayName(domain.VocabPriority, issue.PriorityID, vocabulary),
		CreatedAt:  issue.CreatedAt,
		UpdatedAt:  issue.UpdatedAt,
		ResolvedAt: issue.ResolvedAt,
	}
}

func issueDetail(issue *domain.Issue, project *domain.Project) dto.IssueDetail {
	detail := dto.IssueDetail{
		IssueSummary:  issueSummary(issue, project),
		Description:   issue.Description,
		LegacyComment: issue.LegacyComment,
		ResolutionID:  issue.ResolutionID,
		ComponentID:   issue.ComponentID,
		CustomerID:    issue.CustomerID,
	}
	if issue.ResolutionID != nil {
		detail.Resolution = vocab.DisplayName(domain.VocabResolution, *issue.ResolutionID, project.Vocabulary)
	}
	if issue.ComponentID != nil {
		detail.Component = domain.RefName(project.Components, *issue.ComponentID)
	}
	if issue.CustomerID != nil {
		detail.Customer = domain.RefName(project.Customers, *issue.CustomerID)
	}
	if issue.AffectsVersionID != nil {
		detail.AffectsVersion = domain.RefName(project.Versions, *issue.AffectsVersionID)
	}
	if issue.FixVersionID != nil {
		detail.FixVersion = domain.RefName(project.Versions, *issue.FixVersionID)
	}

	detail.Comments = make([]dto.CommentResponse, 0, len(issue.Comments))
	for _, comment := range issue.Comments {
		detail.Comments = append(detail.Comments, dto.CommentResponse{
			ID:        comment.ID,
			AuthorID:  comment.AuthorID,
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		})
	}
	detail.Attachments = make([]dto.AttachmentResponse, 0, len(issue.Attachments))
	for _, attachment := range issue.Attachments {
		detail.Attachments = append(detail.Attachments, dto.AttachmentResponse{
			ID:              attachment.ID,
			StorageFilename: attachment.StorageFilename,
			OriginalName:    attachment.OriginalName,
			CreatedAt:       attachment.CreatedAt,
		})
	}
	detail.History = make([]dto.HistoryEntryResponse, 0, len(issue.History))
	for _, entry := range issue.History {
		resp := dto.HistoryEntryResponse{
			ID:            entry.ID,
			ActorID:       entry.ActorID,
			Action:        string(entry.Action),
			ChangedFields: entry.ChangedFields,
			FromStatus:    entry.FromStatus,
			ToStatus:      entry.ToStatus,
			Comment:       entry.Comment,
			CreatedAt:     entry.CreatedAt,
		}
		if len(entry.Changes) > 0 {
			resp.Changes = make(map[string]dto.ValueChangeResponse, len(entry.Changes))
			for field, change := range entry.Changes {
				resp.Changes[field] = dto.ValueChangeResponse{From: change.From, To: change.To}
			}
		}
		detail.History = append(detail.History, resp)
	}
	return detail
}
