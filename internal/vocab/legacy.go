package vocab

import "github.com/trackloop/issue-tracker/internal/domain"

// legacyNames maps pre-ID display strings to canonical IDs, one table per
// kind. Records written before stable IDs existed stored these names
// directly; the tables are fixed data and never mutated at runtime.
var legacyNames = map[domain.VocabKind]map[string]string{
	domain.VocabStatus: {
		"열림":          "open",
		"진행중":         "in-progress",
		"해결됨":         "resolved",
		"닫힘":          "closed",
		"거절됨":         "rejected",
		"Open":        "open",
		"In Progress": "in-progress",
		"Resolved":    "resolved",
		"Closed":      "closed",
		"Rejected":    "rejected",
	},
	domain.VocabType: {
		"버그":          "bug",
		"작업":          "task",
		"개선":          "improvement",
		"새기능":         "feature",
		"Bug":         "bug",
		"Task":        "task",
		"Improvement": "improvement",
		"New Feature": "feature",
	},
	domain.VocabPriority: {
		"긴급":       "critical",
		"높음":       "high",
		"보통":       "medium",
		"낮음":       "low",
		"Critical": "critical",
		"High":     "high",
		"Medium":   "medium",
		"Low":      "low",
	},
	domain.VocabResolution: {
		"완료":               "fixed",
		"수정하지않음":           "wontfix",
		"중복":               "duplicate",
		"재현불가":             "cannot-reproduce",
		"Fixed":            "fixed",
		"Won't Fix":        "wontfix",
		"Duplicate":        "duplicate",
		"Cannot Reproduce": "cannot-reproduce",
	},
}
