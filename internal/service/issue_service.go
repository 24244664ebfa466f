package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/trackloop/issue-tracker/internal/changeset"
	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/events"
	"github.com/trackloop/issue-tracker/internal/observability"
	"github.com/trackloop/issue-tracker/internal/permission"
	"github.com/trackloop/issue-tracker/internal/repository"
	"github.com/trackloop/issue-tracker/internal/storage"
	"github.com/trackloop/issue-tracker/internal/vocab"
	apperrors "github.com/trackloop/issue-tracker/pkg/util"
)

// IssueService is the sole mutation path for issues. It coordinates
// permission checks, vocabulary resolution, change-set computation, the
// atomic persistence command, and post-commit notification events.
type IssueService struct {
	issues     repository.IssueRepository
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// IssueCreateInput describes issue creation payload. Vocabulary-typed fields
// carry raw values (ID, name, or legacy name); omitted ones default to the
// first entry of their project list.
type IssueCreateInput struct {
	ProjectID      string
	Title          string
	Description    string
	ReporterID     string
	AssigneeID     string
	Status         string
	Type           string
	Priority       string
	Resolution     string
	ComponentID    string
	CustomerID     string
	AffectsVersion string
	FixVersion     string
	CommentText    string
	Attachments    []storage.StoredFile
}

// IssueUpdateInput describes a partial update request.
type IssueUpdateInput struct {
	Fields      changeset.PartialUpdate
	CommentText string
	Attachments []storage.StoredFile
}

// IssueListQuery describes listing filters. Vocabulary filters carry raw
// values and are resolved before querying.
type IssueListQuery struct {
	ProjectID string
	Assignee  string
	Reporter  string
	Type      string
	Priority  string
	Status    string
	Limit     int
	Offset    int
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		projects:   deps.ProjectRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}
}

// CreateIssue validates the request, allocates the next issue key with an
// atomic per-project sequence increment, and inserts the issue with its
// seed history entry (and seed comment, when present) in one insert.
func (s *IssueService) CreateIssue(ctx context.Context, user domain.CurrentUser, input IssueCreateInput) (*domain.Issue, error) {
	project, err := s.loadProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentWrite); !decision.Allowed {
		return nil, apperrors.NewForbidden("write access required")
	}

	title := strings.TrimSpace(input.Title)
	reporter := strings.TrimSpace(input.ReporterID)
	if title == "" || reporter == "" {
		s.metrics.RecordMutation("create", observability.MutationRejected)
		return nil, apperrors.NewValidationError("title and reporter are required", nil)
	}

	vocabulary := project.Vocabulary
	statusID, err := resolveOrDefault(domain.VocabStatus, input.Status, vocabulary)
	if err != nil {
		return nil, s.rejectVocab("create", err)
	}
	typeID, err := resolveOrDefault(domain.VocabType, input.Type, vocabulary)
	if err != nil {
		return nil, s.rejectVocab("create", err)
	}
	priorityID, err := resolveOrDefault(domain.VocabPriority, input.Priority, vocabulary)
	if err != nil {
		return nil, s.rejectVocab("create", err)
	}
	var resolutionID *string
	if strings.TrimSpace(input.Resolution) != "" {
		id, err := vocab.Resolve(domain.VocabResolution, input.Resolution, vocabulary)
		if err != nil {
			return nil, s.rejectVocab("create", err)
		}
		resolutionID = &id
	}

	seq, err := s.projects.NextIssueSeq(ctx, project.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	createdAt := s.now()
	issue := &domain.Issue{
		ID:               uuid.NewString(),
		ProjectID:        project.ID,
		Key:              fmt.Sprintf("%s-%d", project.Key, seq),
		Seq:              seq,
		Title:            title,
		Description:      strings.TrimSpace(input.Description),
		ReporterID:       reporter,
		AssigneeID:       optional(input.AssigneeID),
		StatusID:         statusID,
		TypeID:           typeID,
		PriorityID:       priorityID,
		ResolutionID:     resolutionID,
		ComponentID:      optional(input.ComponentID),
		CustomerID:       optional(input.CustomerID),
		AffectsVersionID: optional(input.AffectsVersion),
		FixVersionID:     optional(input.FixVersion),
		Attachments:      attachmentRecords(input.Attachments, createdAt),
		History: []domain.HistoryEntry{{
			ID:        uuid.NewString(),
			ActorID:   user.UserID,
			Action:    domain.HistoryActionCreated,
			CreatedAt: createdAt,
		}},
	}
	if domain.IsTerminalStatus(statusID) {
		issue.ResolvedAt = &createdAt
	}

	var seedComment *domain.Comment
	if text := strings.TrimSpace(input.CommentText); text != "" {
		seedComment = &domain.Comment{
			ID:        uuid.NewString(),
			AuthorID:  user.UserID,
			Text:      text,
			CreatedAt: createdAt,
		}
		issue.Comments = append(issue.Comments, *seedComment)
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordMutation("create", observability.MutationApplied)

	ref := issueRef(issue)
	s.publish(ctx, events.Event{
		Type:    events.EventIssueCreated,
		Issue:   ref,
		ActorID: user.UserID,
		Payload: events.IssueCreatedPayload{Title: issue.Title, ReporterID: issue.ReporterID, AssigneeID: issue.AssigneeID},
	})
	if issue.AssigneeID != nil {
		s.publish(ctx, events.Event{
			Type:    events.EventIssueAssigned,
			Issue:   ref,
			ActorID: user.UserID,
			Payload: events.IssueAssignedPayload{AssigneeID: issue.AssigneeID},
		})
	}
	if seedComment != nil {
		s.publishCommentEvents(ctx, user, ref, seedComment)
	}
	return issue, nil
}

// UpdateIssue applies a partial update. Validation happens before any write;
// a request whose every field equals the stored canonical value and that
// carries no comment and no attachments is a true no-op and returns the
// stored record untouched.
func (s *IssueService) UpdateIssue(ctx context.Context, user domain.CurrentUser, issueID string, input IssueUpdateInput) (*domain.Issue, error) {
	issue, project, err := s.loadIssueAndProject(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentWrite); !decision.Allowed {
		return nil, apperrors.NewForbidden("write access required")
	}

	cs, err := changeset.Diff(issue, input.Fields, project.Vocabulary)
	if err != nil {
		return nil, s.rejectVocab("update", err)
	}

	commentText := strings.TrimSpace(input.CommentText)
	if cs.Empty() && commentText == "" && len(input.Attachments) == 0 {
		s.metrics.RecordMutation("update", observability.MutationNoop)
		return issue, nil
	}

	now := s.now()
	mutation := domain.IssueMutation{
		SetFields:       cs.Canonical,
		SetUpdatedAt:    &now,
		PushAttachments: attachmentRecords(input.Attachments, now),
	}
	if cs.SetResolvedAt {
		mutation.SetResolvedAt = &now
	} else if cs.ClearResolvedAt {
		mutation.ClearResolvedAt = true
	}
	if !cs.Empty() {
		mutation.PushHistory = &domain.HistoryEntry{
			ID:            uuid.NewString(),
			ActorID:       user.UserID,
			Action:        domain.HistoryActionUpdated,
			ChangedFields: cs.FieldNames(),
			Changes:       cs.ChangeMap(),
			FromStatus:    cs.FromStatusDisplay,
			ToStatus:      cs.ToStatusDisplay,
			CreatedAt:     now,
		}
	}
	var newComment *domain.Comment
	if commentText != "" {
		newComment = &domain.Comment{
			ID:        uuid.NewString(),
			AuthorID:  user.UserID,
			Text:      commentText,
			CreatedAt: now,
		}
		mutation.PushComment = newComment
	}

	updated, err := s.issues.ApplyMutation(ctx, issue.ID, mutation)
	if err != nil {
		// the record vanished between load and write
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordMutation("update", observability.MutationApplied)

	ref := issueRef(updated)
	if !cs.Empty() {
		s.publish(ctx, events.Event{
			Type:    events.EventIssueUpdated,
			Issue:   ref,
			ActorID: user.UserID,
			Payload: events.IssueUpdatedPayload{ChangedFields: cs.FieldNames()},
		})
	}
	if _, ok := cs.Canonical[domain.FieldAssignee]; ok {
		s.publish(ctx, events.Event{
			Type:    events.EventIssueAssigned,
			Issue:   ref,
			ActorID: user.UserID,
			Payload: events.IssueAssignedPayload{AssigneeID: updated.AssigneeID},
		})
	}
	if newComment != nil {
		s.publishCommentEvents(ctx, user, ref, newComment)
	}
	return updated, nil
}

// AddComment appends one comment and, unless suppressed by the migration
// flag, a commented history entry — both in the same atomic write.
func (s *IssueService) AddComment(ctx context.Context, user domain.CurrentUser, issueID, text string, skipHistory bool) (*domain.Issue, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text is required", nil)
	}
	issue, project, err := s.loadIssueAndProject(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if decision := permission.Authorize(user, project, permission.IntentWrite); !decision.Allowed {
		return nil, apperrors.NewForbidden("write access required")
	}

	now := s.now()
	comment := &domain.Comment{
		ID:        uuid.NewString(),
		AuthorID:  user.UserID,
		Text:      text,
		CreatedAt: now,
	}
	mutation := domain.IssueMutation{
		SetUpdatedAt: &now,
		PushComment:  comment,
	}
	if !skipHistory {
		mutation.PushHistory = &domain.HistoryEntry{
			ID:        uuid.NewString(),
			ActorID:   user.UserID,
			Action:    domain.HistoryActionCommented,
			Comment:   text,
			CreatedAt: now,
		}
	}

	updated, err := s.issues.ApplyMutation(ctx, issue.ID, mutation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordMutation("comment", observability.MutationApplied)

	s.publishCommentEvents(ctx, user, issueRef(updated), comment)
	return updated, nil
}

// DeleteIssue removes the issue permanently.
func (s *IssueService) DeleteIssue(ctx context.Context, user domain.CurrentUser, issueID string) error {
	issue, project, err := s.loadIssueAndProject(ctx, issueID)
	if err != nil {
		return err
	}
	if decision := permission.Authorize(user, project, permission.IntentWrite); !decision.Allowed {
		return apperrors.NewForbidden("write access required")
	}
	if err := s.issues.Delete(ctx, issue.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.metrics.RecordMutation("delete", observability.MutationApplied)
	return nil
}

// ListIssues returns project issues, scoped to the caller's own records when
// their only grant is write.
func (s *IssueService) ListIssues(ctx context.Context, user domain.CurrentUser, query IssueListQuery) ([]domain.Issue, *domain.Project, error) {
	project, err := s.loadProject(ctx, query.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	decision := permission.Authorize(user, project, permission.IntentRead)
	if !decision.Allowed {
		return nil, nil, apperrors.NewForbidden("read access required")
	}

	filter := repository.IssueFilter{
		ProjectID: project.ID,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	if query.Assignee != "" {
		filter.AssigneeID = &query.Assignee
	}
	if query.Reporter != "" {
		filter.ReporterID = &query.Reporter
	}
	if decision.ScopeToOwn {
		reporter := user.UserID
		filter.ReporterID = &reporter
	}
	for _, vf := range []struct {
		kind domain.VocabKind
		raw  string
		dest **string
	}{
		{domain.VocabStatus, query.Status, &filter.StatusID},
		{domain.VocabType, query.Type, &filter.TypeID},
		{domain.VocabPriority, query.Priority, &filter.PriorityID},
	} {
		if vf.raw == "" {
			continue
		}
		id, err := vocab.Resolve(vf.kind, vf.raw, project.Vocabulary)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error(), nil)
		}
		*vf.dest = &id
	}

	issues, err := s.issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return issues, project, nil
}

// GetIssueByKey fetches one issue by its human-readable key. Under
// scope-to-own the issue is reported absent rather than forbidden, matching
// the scoped list view.
func (s *IssueService) GetIssueByKey(ctx context.Context, user domain.CurrentUser, key string) (*domain.Issue, *domain.Project, error) {
	issue, err := s.issues.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("issue", map[string]any{"key": key})
		}
		return nil, nil, apperrors.MapError(err)
	}
	project, err := s.loadProject(ctx, issue.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	decision := permission.Authorize(user, project, permission.IntentRead)
	if !decision.Allowed {
		return nil, nil, apperrors.NewForbidden("read access required")
	}
	if decision.ScopeToOwn && issue.ReporterID != user.UserID {
		return nil, nil, apperrors.NewNotFound("issue", map[string]any{"key": key})
	}
	return issue, project, nil
}

// GetIssueProject loads the owning project for read-time display resolution.
func (s *IssueService) GetIssueProject(ctx context.Context, issue *domain.Issue) (*domain.Project, error) {
	return s.loadProject(ctx, issue.ProjectID)
}

func (s *IssueService) loadProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

func (s *IssueService) loadIssueAndProject(ctx context.Context, issueID string) (*domain.Issue, *domain.Project, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	project, err := s.loadProject(ctx, issue.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return issue, project, nil
}

// rejectVocab maps unresolved vocabulary values and empty-title rejections to
// validation errors.
func (s *IssueService) rejectVocab(operation string, err error) error {
	s.metrics.RecordMutation(operation, observability.MutationRejected)
	var unresolved *vocab.UnresolvedValueError
	if errors.As(err, &unresolved) {
		return apperrors.NewValidationError(unresolved.Error(), map[string]any{
			"field": string(unresolved.Kind),
			"value": unresolved.Value,
		})
	}
	if errors.Is(err, changeset.ErrEmptyTitle) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return apperrors.MapError(err)
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *IssueService) publishCommentEvents(ctx context.Context, user domain.CurrentUser, ref events.IssueRef, comment *domain.Comment) {
	preview := stringPreview(comment.Text, 120)
	s.publish(ctx, events.Event{
		Type:    events.EventIssueCommented,
		Issue:   ref,
		ActorID: user.UserID,
		Payload: events.IssueCommentedPayload{CommentID: comment.ID, AuthorID: comment.AuthorID, BodyPreview: preview},
	})
	for _, target := range ExtractMentions(comment.Text, comment.AuthorID) {
		s.publish(ctx, events.Event{
			Type:    events.EventUserMentioned,
			Issue:   ref,
			ActorID: user.UserID,
			Payload: events.UserMentionedPayload{TargetUserID: target, CommentID: comment.ID, BodyPreview: preview},
		})
	}
}

func issueRef(issue *domain.Issue) events.IssueRef {
	return events.IssueRef{ID: issue.ID, Key: issue.Key, ProjectID: issue.ProjectID}
}

func resolveOrDefault(kind domain.VocabKind, raw string, vocabulary domain.ProjectVocabulary) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return vocabulary.DefaultID(kind), nil
	}
	return vocab.Resolve(kind, raw, vocabulary)
}

func attachmentRecords(files []storage.StoredFile, now time.Time) []domain.Attachment {
	if len(files) == 0 {
		return nil
	}
	records := make([]domain.Attachment, 0, len(files))
	for _, file := range files {
		records = append(records, domain.Attachment{
			ID:              uuid.NewString(),
			StorageFilename: file.StorageFilename,
			OriginalName:    file.OriginalName,
			CreatedAt:       now,
		})
	}
	return records
}

func optional(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

// stringPreview truncates on rune boundaries so multi-byte text stays valid.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
