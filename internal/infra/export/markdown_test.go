package export

import (
	"strings"
	"testing"
	"time"

	"mychatme/internal/domain/model"
)

func TestMarkdown_RendersFullSnapshot(t *testing.T) {
	t.Parallel()
	s := model.NewSession("answer briefly", "gpt-4o", 10)
	s.SetSummary("we discussed exports")
	s.AppendMessage(model.RoleUser, "How do I export?")
	s.AppendMessage(model.RoleAssistant, "Use the export button.")

	now := time.Date(2024, 12, 24, 3, 22, 41, 0, time.UTC)
	doc := string(Markdown(s, now))

	for _, want := range []string{
		"# Chat History",
		"Generated on: 2024-12-24 03:22:41",
		"- Model: gpt-4o",
		"## System Prompt\n\nanswer briefly",
		"## Context Summary\n\nwe discussed exports",
		"## User\nHow do I export?",
		"## Assistant\nUse the export button.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	// turns appear in log order
	if strings.Index(doc, "## User") > strings.Index(doc, "## Assistant") {
		t.Error("user turn must precede assistant turn")
	}
}

func TestMarkdown_OmitsEmptySections(t *testing.T) {
	t.Parallel()
	s := model.NewSession("", "gpt-4o", 10)
	doc := string(Markdown(s, time.Now()))

	if strings.Contains(doc, "## System Prompt") || strings.Contains(doc, "## Context Summary") {
		t.Errorf("empty sections rendered:\n%s", doc)
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 12, 24, 3, 22, 41, 0, time.UTC)
	if got := Filename(now); got != "chat_history_20241224_032241.md" {
		t.Fatalf("filename = %q", got)
	}
}
