package memory

import (
	"sync"

	"mychatme/internal/domain/model"
	"mychatme/internal/domain/ports/repository"
	"mychatme/internal/infra/metrics"
)

// Compile-time check
var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the current session plus a fixed-capacity ring of
// past sessions, all in process memory. Single-writer by design; the
// mutex only guards against a concurrent reader on the HTTP surface.
type SessionStore struct {
	mu      sync.Mutex
	current *model.Session
	history []*model.Session // oldest first
	maxPast int
	window  int
}

func NewSessionStore(maxHistoryChats, contextWindow int) *SessionStore {
	if maxHistoryChats <= 0 {
		maxHistoryChats = 10
	}
	return &SessionStore{
		current: model.NewSession("", "", contextWindow),
		history: make([]*model.Session, 0, maxHistoryChats),
		maxPast: maxHistoryChats,
		window:  contextWindow,
	}
}

func (st *SessionStore) StartSession(systemPrompt, modelName string) *model.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.current.Messages) > 0 {
		if len(st.history) >= st.maxPast {
			st.history = st.history[1:]
			metrics.HistoryEvicted()
		}
		st.history = append(st.history, st.current)
	}
	st.current = model.NewSession(systemPrompt, modelName, st.window)
	metrics.SessionStarted()
	return st.current
}

func (st *SessionStore) AppendMessage(role model.Role, content string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current.AppendMessage(role, content)
}

func (st *SessionStore) PromptMessages(includeSystem bool) []model.Message {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.PromptMessages(includeSystem)
}

func (st *SessionStore) SetSummary(text string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current.SetSummary(text)
}

// ActivateSession makes a past session current again. The session leaves
// history so only one mutable reference to it exists; a later
// StartSession pushes it back exactly once.
func (st *SessionStore) ActivateSession(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, s := range st.history {
		if s.ID == id {
			st.history = append(st.history[:i], st.history[i+1:]...)
			st.current = s
			metrics.SessionActivated()
			return true
		}
	}
	return false
}

func (st *SessionStore) ResetCurrent() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = model.NewSession(st.current.SystemPrompt, st.current.Model, st.window)
}

func (st *SessionStore) Current() *model.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// History returns the past sessions, oldest first. The slice is a copy;
// the sessions themselves are shared and read-only by convention.
func (st *SessionStore) History() []*model.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*model.Session, len(st.history))
	copy(out, st.history)
	return out
}
