package service

import "regexp"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9._-]+)`)

// ExtractMentions returns the distinct user IDs mentioned as @userid in the
// text, in first-seen order, excluding the author.
func ExtractMentions(text, authorID string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var targets []string
	for _, match := range matches {
		id := match[1]
		if id == authorID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	return targets
}
