package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// summaryLabel prefixes the rolling summary when it is injected into a
// prompt as a synthetic system message.
const summaryLabel = "Summary of the conversation so far: "

// Message is one chat message. Immutable once created.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the aggregate root for one conversation.
//
// Messages is the full append-only log (used for export and as
// summarization input). ContextMessages mirrors the tail of Messages,
// bounded by the context window capacity; it is what gets sent verbatim
// to a model on each turn.
type Session struct {
	ID              string    `json:"id"`
	SystemPrompt    string    `json:"system_prompt"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Messages        []Message `json:"messages"`
	ContextMessages []Message `json:"context_messages"`
	ContextSummary  string    `json:"context_summary,omitempty"`

	window int
}

// NewSession creates an empty session. The id is time-ordered (ULID) and
// unique within the process lifetime. window is the context window
// capacity in messages.
func NewSession(systemPrompt, model string, window int) *Session {
	if window <= 0 {
		window = 10
	}
	return &Session{
		ID:              ulid.Make().String(),
		SystemPrompt:    systemPrompt,
		Model:           model,
		CreatedAt:       time.Now(),
		Messages:        make([]Message, 0, 8),
		ContextMessages: make([]Message, 0, window),
		window:          window,
	}
}

// AppendMessage records a message with the current timestamp on both the
// full log and the context window, evicting the oldest window entry once
// capacity is exceeded. Content is accepted verbatim, including "".
func (s *Session) AppendMessage(role Role, content string) {
	m := Message{Role: role, Content: content, Timestamp: time.Now()}
	s.Messages = append(s.Messages, m)
	s.ContextMessages = append(s.ContextMessages, m)
	if len(s.ContextMessages) > s.window {
		s.ContextMessages = s.ContextMessages[1:]
	}
}

// SetSummary overwrites the rolling summary unconditionally. An empty
// string is a valid value meaning "no usable summary".
func (s *Session) SetSummary(text string) {
	s.ContextSummary = text
}

// PromptMessages assembles the exact per-turn payload, in order: the
// system prompt (when includeSystem and non-empty), the rolling summary
// as a labeled synthetic system message (when present), then the context
// window verbatim. Callers pass includeSystem=false for display.
func (s *Session) PromptMessages(includeSystem bool) []Message {
	out := make([]Message, 0, len(s.ContextMessages)+2)
	if includeSystem && s.SystemPrompt != "" {
		out = append(out, Message{Role: RoleSystem, Content: s.SystemPrompt, Timestamp: s.CreatedAt})
	}
	if s.ContextSummary != "" {
		out = append(out, Message{Role: RoleSystem, Content: summaryLabel + s.ContextSummary, Timestamp: s.CreatedAt})
	}
	return append(out, s.ContextMessages...)
}

// Window reports the context window capacity the session was created with.
func (s *Session) Window() int { return s.window }
