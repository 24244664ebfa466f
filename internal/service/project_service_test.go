package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/trackloop/issue-tracker/internal/domain"
	"github.com/trackloop/issue-tracker/internal/repository"
)

func TestCreateProject(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := NewProjectService(repo)

	project, err := svc.CreateProject(context.Background(), domain.CurrentUser{UserID: "alice"}, ProjectCreateInput{
		Key:  "proj",
		Name: "Project One",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Key != "PROJ" {
		t.Fatalf("key = %q, want uppercased", project.Key)
	}
	if len(project.Vocabulary.Statuses) == 0 || project.Vocabulary.DefaultID(domain.VocabStatus) != "open" {
		t.Fatalf("default vocabulary not seeded: %+v", project.Vocabulary.Statuses)
	}
	// a fully open ACL stays open; the creator is not force-added
	if !project.Permissions.Empty() {
		t.Fatalf("permissions = %+v", project.Permissions)
	}
}

func TestCreateProjectGrantsCreatorAdmin(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := NewProjectService(repo)

	project, err := svc.CreateProject(context.Background(), domain.CurrentUser{UserID: "alice"}, ProjectCreateInput{
		Key:  "PROJ",
		Name: "Project One",
		Permissions: domain.ProjectPermissions{
			ReadUsers: []string{"bob"},
		},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if !contains(project.Permissions.AdminUsers, "alice") {
		t.Fatalf("creator missing from admin list: %+v", project.Permissions)
	}
}

func TestCreateProjectDuplicateKey(t *testing.T) {
	repo := newFakeProjectRepo()
	repo.createErr = repository.ErrDuplicateKey
	svc := NewProjectService(repo)

	_, err := svc.CreateProject(context.Background(), domain.CurrentUser{UserID: "alice"}, ProjectCreateInput{
		Key:  "PROJ",
		Name: "Project One",
	})
	assertStatus(t, err, http.StatusConflict)
}

func TestCreateProjectValidation(t *testing.T) {
	svc := NewProjectService(newFakeProjectRepo())
	_, err := svc.CreateProject(context.Background(), domain.CurrentUser{UserID: "alice"}, ProjectCreateInput{Key: " ", Name: ""})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateVocabulary(t *testing.T) {
	project := openProject()
	project.Permissions = domain.ProjectPermissions{AdminUsers: []string{"alice"}}
	repo := newFakeProjectRepo(project)
	svc := NewProjectService(repo)

	vocabulary := DefaultVocabulary()
	vocabulary.Statuses[0].Name = "New"
	vocabulary.Statuses[0].Order = 99

	updated, err := svc.UpdateVocabulary(context.Background(), domain.CurrentUser{UserID: "alice"}, "proj-1", vocabulary)
	if err != nil {
		t.Fatalf("UpdateVocabulary: %v", err)
	}
	if updated.Vocabulary.Statuses[0].Name != "New" {
		t.Fatalf("rename lost: %+v", updated.Vocabulary.Statuses[0])
	}
	if updated.Vocabulary.Statuses[0].Order != 0 {
		t.Fatalf("order not re-sequenced: %d", updated.Vocabulary.Statuses[0].Order)
	}
}

func TestUpdateVocabularyRejectsEmptyList(t *testing.T) {
	project := openProject()
	project.Permissions = domain.ProjectPermissions{AdminUsers: []string{"alice"}}
	svc := NewProjectService(newFakeProjectRepo(project))

	vocabulary := DefaultVocabulary()
	vocabulary.Priorities = nil
	_, err := svc.UpdateVocabulary(context.Background(), domain.CurrentUser{UserID: "alice"}, "proj-1", vocabulary)
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateVocabularyRequiresAdmin(t *testing.T) {
	project := openProject()
	project.Permissions = domain.ProjectPermissions{WriteUsers: []string{"bob"}, AdminUsers: []string{"alice"}}
	svc := NewProjectService(newFakeProjectRepo(project))

	_, err := svc.UpdateVocabulary(context.Background(), domain.CurrentUser{UserID: "bob"}, "proj-1", DefaultVocabulary())
	assertStatus(t, err, http.StatusForbidden)
}

func TestUpdatePermissions(t *testing.T) {
	project := openProject()
	project.Permissions = domain.ProjectPermissions{AdminUsers: []string{"alice"}}
	repo := newFakeProjectRepo(project)
	svc := NewProjectService(repo)

	next := domain.ProjectPermissions{
		ReadUsers:  []string{"carol"},
		AdminUsers: []string{"alice"},
	}
	updated, err := svc.UpdatePermissions(context.Background(), domain.CurrentUser{UserID: "alice"}, "proj-1", next)
	if err != nil {
		t.Fatalf("UpdatePermissions: %v", err)
	}
	if !contains(updated.Permissions.ReadUsers, "carol") {
		t.Fatalf("permissions = %+v", updated.Permissions)
	}

	_, err = svc.UpdatePermissions(context.Background(), domain.CurrentUser{UserID: "carol"}, "proj-1", next)
	assertStatus(t, err, http.StatusForbidden)
}

func TestGetProjectNotFound(t *testing.T) {
	svc := NewProjectService(newFakeProjectRepo())
	_, err := svc.GetProject(context.Background(), domain.CurrentUser{UserID: "alice"}, "missing")
	assertStatus(t, err, http.StatusNotFound)
}
