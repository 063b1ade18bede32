package repository

import "mychatme/internal/domain/model"

// SessionStore owns the current session and the bounded ring of past
// sessions. No other component mutates session state directly.
type SessionStore interface {
	// StartSession pushes the current session onto history when it has at
	// least one message (evicting the oldest past session at capacity),
	// then replaces it with a fresh session.
	StartSession(systemPrompt, model string) *model.Session

	// AppendMessage appends to the current session's full log and its
	// context window.
	AppendMessage(role model.Role, content string)

	// PromptMessages returns the current session's per-turn payload.
	PromptMessages(includeSystem bool) []model.Message

	// SetSummary overwrites the current session's rolling summary.
	SetSummary(text string)

	// ActivateSession swaps a past session in as current by id. It
	// reports false when the id is not in history.
	ActivateSession(id string) bool

	// ResetCurrent replaces the current session with a fresh one carrying
	// the same system prompt and model. The discarded session is not
	// pushed to history.
	ResetCurrent()

	Current() *model.Session
	History() []*model.Session
}
