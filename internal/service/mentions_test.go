package service

import (
	"reflect"
	"testing"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		author string
		want   []string
	}{
		{"no mentions", "plain text, no handles", "alice", nil},
		{"single mention", "ping @bob about this", "alice", []string{"bob"}},
		{"duplicates collapse", "@bob and again @bob", "alice", []string{"bob"}},
		{"author excluded", "note to self @alice and @bob", "alice", []string{"bob"}},
		{"first-seen order", "@carol then @bob then @carol", "alice", []string{"carol", "bob"}},
		{"dots dashes underscores", "cc @svc-bot.2 and @j_doe", "alice", []string{"svc-bot.2", "j_doe"}},
		{"only author mentioned", "thanks @alice", "alice", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractMentions(tc.text, tc.author)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractMentions(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
