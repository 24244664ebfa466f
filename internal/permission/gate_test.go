package permission

import (
	"testing"

	"github.com/trackloop/issue-tracker/internal/domain"
)

func aclProject(read, write, admin []string) *domain.Project {
	return &domain.Project{
		ID: "proj-1",
		Permissions: domain.ProjectPermissions{
			ReadUsers:  read,
			WriteUsers: write,
			AdminUsers: admin,
		},
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		user    domain.CurrentUser
		project *domain.Project
		intent  Intent
		want    Decision
	}{
		{
			name:    "global admin bypasses acl",
			user:    domain.CurrentUser{UserID: "root", IsAdmin: true},
			project: aclProject([]string{"alice"}, nil, nil),
			intent:  IntentAdminConfig,
			want:    Decision{Allowed: true},
		},
		{
			name:    "empty acl is fully open",
			user:    domain.CurrentUser{UserID: "drive-by"},
			project: aclProject(nil, nil, nil),
			intent:  IntentWrite,
			want:    Decision{Allowed: true},
		},
		{
			name:    "reader can read",
			user:    domain.CurrentUser{UserID: "alice"},
			project: aclProject([]string{"alice"}, []string{"bob"}, nil),
			intent:  IntentRead,
			want:    Decision{Allowed: true},
		},
		{
			name:    "reader cannot write",
			user:    domain.CurrentUser{UserID: "alice"},
			project: aclProject([]string{"alice"}, []string{"bob"}, nil),
			intent:  IntentWrite,
			want:    Decision{},
		},
		{
			name:    "writer can write",
			user:    domain.CurrentUser{UserID: "bob"},
			project: aclProject([]string{"alice"}, []string{"bob"}, nil),
			intent:  IntentWrite,
			want:    Decision{Allowed: true, ScopeToOwn: true},
		},
		{
			name:    "write-only grant scopes reads to own records",
			user:    domain.CurrentUser{UserID: "bob"},
			project: aclProject([]string{"alice"}, []string{"bob"}, nil),
			intent:  IntentRead,
			want:    Decision{Allowed: true, ScopeToOwn: true},
		},
		{
			name:    "writer with read grant sees everything",
			user:    domain.CurrentUser{UserID: "bob"},
			project: aclProject([]string{"alice", "bob"}, []string{"bob"}, nil),
			intent:  IntentRead,
			want:    Decision{Allowed: true},
		},
		{
			name:    "writer cannot configure",
			user:    domain.CurrentUser{UserID: "bob"},
			project: aclProject(nil, []string{"bob"}, []string{"carol"}),
			intent:  IntentAdminConfig,
			want:    Decision{},
		},
		{
			name:    "project admin holds every intent",
			user:    domain.CurrentUser{UserID: "carol"},
			project: aclProject([]string{"alice"}, []string{"bob"}, []string{"carol"}),
			intent:  IntentAdminConfig,
			want:    Decision{Allowed: true},
		},
		{
			name:    "project admin reads unscoped",
			user:    domain.CurrentUser{UserID: "carol"},
			project: aclProject(nil, []string{"carol"}, []string{"carol"}),
			intent:  IntentRead,
			want:    Decision{Allowed: true},
		},
		{
			name:    "stranger denied",
			user:    domain.CurrentUser{UserID: "mallory"},
			project: aclProject([]string{"alice"}, []string{"bob"}, []string{"carol"}),
			intent:  IntentRead,
			want:    Decision{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Authorize(tc.user, tc.project, tc.intent)
			if got != tc.want {
				t.Fatalf("Authorize = %+v, want %+v", got, tc.want)
			}
		})
	}
}
