package domain

import "time"

// NamedRef is an entity linked from issues by ID and resolved to its name
// only at read time.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectPermissions holds the three per-project ACL sets. A project with all
// three empty is fully open.
type ProjectPermissions struct {
	ReadUsers  []string `json:"read_users"`
	WriteUsers []string `json:"write_users"`
	AdminUsers []string `json:"admin_users"`
}

// Empty reports whether no ACL list is defined.
func (p ProjectPermissions) Empty() bool {
	return len(p.ReadUsers) == 0 && len(p.WriteUsers) == 0 && len(p.AdminUsers) == 0
}

// Project owns issues, the vocabulary, linked-entity lists, and the ACL.
// IssueSeq is the last allocated issue sequence number.
type Project struct {
	ID          string             `json:"id"`
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	IssueSeq    int64              `json:"issue_seq"`
	Vocabulary  ProjectVocabulary  `json:"vocabulary"`
	Components  []NamedRef         `json:"components"`
	Customers   []NamedRef         `json:"customers"`
	Versions    []NamedRef         `json:"versions"`
	Permissions ProjectPermissions `json:"permissions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RefName resolves a linked-entity ID against a named list, falling back to
// the raw ID when the entry no longer exists.
func RefName(refs []NamedRef, id string) string {
	for _, ref := range refs {
		if ref.ID == id {
			return ref.Name
		}
	}
	return id
}
