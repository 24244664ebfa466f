package permission

import "github.com/trackloop/issue-tracker/internal/domain"

// Intent is the kind of operation a caller wants to perform on a project.
type Intent string

const (
	IntentRead        Intent = "read"
	IntentWrite       Intent = "write"
	IntentAdminConfig Intent = "adminConfig"
)

// Decision is the outcome of an authorization check. ScopeToOwn means list
// and read operations must additionally filter to records the caller
// authored.
type Decision struct {
	Allowed    bool
	ScopeToOwn bool
}

// Authorize decides whether the caller may perform the intent on the
// project. Global admins bypass all checks. A project with no ACL lists at
// all is fully open, matching records created before project ACLs existed.
func Authorize(user domain.CurrentUser, project *domain.Project, intent Intent) Decision {
	if user.IsAdmin {
		return Decision{Allowed: true}
	}
	acl := project.Permissions
	if acl.Empty() {
		return Decision{Allowed: true}
	}

	canRead := contains(acl.ReadUsers, user.UserID)
	canWrite := contains(acl.WriteUsers, user.UserID)
	canAdmin := contains(acl.AdminUsers, user.UserID)

	var allowed bool
	switch intent {
	case IntentRead:
		allowed = canRead || canWrite || canAdmin
	case IntentWrite:
		allowed = canWrite || canAdmin
	case IntentAdminConfig:
		allowed = canAdmin
	}
	if !allowed {
		return Decision{}
	}
	return Decision{
		Allowed:    true,
		ScopeToOwn: canWrite && !canRead && !canAdmin,
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
