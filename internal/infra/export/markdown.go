package export

import (
	"fmt"
	"strings"
	"time"

	"mychatme/internal/domain/model"
)

// Markdown renders a session snapshot as a Markdown document: header,
// model and prompt metadata, the rolling summary when present, then
// every logged turn in order.
func Markdown(s *model.Session, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("# Chat History\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Session: %s\n", s.ID)
	fmt.Fprintf(&b, "- Model: %s\n", s.Model)
	fmt.Fprintf(&b, "- Started: %s\n\n", s.CreatedAt.Format("2006-01-02 15:04:05"))

	if s.SystemPrompt != "" {
		b.WriteString("## System Prompt\n\n")
		b.WriteString(s.SystemPrompt)
		b.WriteString("\n\n")
	}
	if s.ContextSummary != "" {
		b.WriteString("## Context Summary\n\n")
		b.WriteString(s.ContextSummary)
		b.WriteString("\n\n")
	}

	for _, m := range s.Messages {
		switch m.Role {
		case model.RoleUser:
			b.WriteString("## User\n")
		case model.RoleAssistant:
			b.WriteString("## Assistant\n")
		default:
			b.WriteString("## System\n")
		}
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

// Filename builds the timestamped download name for an exported session.
func Filename(now time.Time) string {
	return fmt.Sprintf("chat_history_%s.md", now.Format("20060102_150405"))
}
