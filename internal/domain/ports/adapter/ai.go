package adapter

import "context"

// Message is the wire-level chat message handed to a provider.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Completer is the capability a resolved model backend exposes: one chat
// completion over an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ModelRouter resolves a logical model selection to a backend once, at
// session-creation time, and owns best-effort context summarization.
type ModelRouter interface {
	// Resolve returns the backend for a logical model name. It fails with
	// domain.ErrProviderNotConfigured (wrapped) when the backend's
	// credential is missing and domain.ErrUnknownModel for anything it
	// does not route.
	Resolve(model string) (Completer, error)

	// GenerateContextSummary produces a compressed digest of the
	// conversation. It never fails: on any provider error it returns "".
	GenerateContextSummary(ctx context.Context, messages []Message) string
}
