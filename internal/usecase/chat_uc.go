package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"mychatme/internal/domain"
	"mychatme/internal/domain/model"
	"mychatme/internal/domain/ports/adapter"
	"mychatme/internal/domain/ports/repository"
	"mychatme/internal/infra/logging"
)

// summaryEveryMessages fires summary regeneration on every Nth message
// in the full log, independent of context-window eviction.
const summaryEveryMessages = 5

// TokenCounter estimates the token cost of a provider payload. Optional:
// a nil counter disables the context token budget.
type TokenCounter interface {
	CountMessages(messages []adapter.Message) int
}

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	StartSession(systemPrompt, modelName string) (*model.Session, error)
	SendMessage(ctx context.Context, content string) (string, error)
	PromptMessages(includeSystem bool) []model.Message
	SetSummary(text string)
	ActivateSession(id string) bool
	ResetCurrent()
	Current() *model.Session
	History() []*model.Session
}

type chatUC struct {
	store     repository.SessionStore
	router    adapter.ModelRouter
	counter   TokenCounter
	completer adapter.Completer // resolved once per session
	budget    int
	log       *zerolog.Logger
}

func NewChatUseCase(store repository.SessionStore, router adapter.ModelRouter, counter TokenCounter, maxContextLength int, logger *zerolog.Logger) *chatUC {
	return &chatUC{
		store:   store,
		router:  router,
		counter: counter,
		budget:  maxContextLength,
		log:     logger,
	}
}

// StartSession replaces the current session and resolves its provider
// route up front so a missing credential surfaces here, not mid-turn.
func (c *chatUC) StartSession(systemPrompt, modelName string) (*model.Session, error) {
	completer, err := c.router.Resolve(modelName)
	if err != nil {
		return nil, err
	}
	s := c.store.StartSession(systemPrompt, modelName)
	c.completer = completer
	c.log.Info().Str("session_id", s.ID).Str("model", modelName).Msg("session started")
	return s, nil
}

// SendMessage runs one chat turn to completion: commit the user message,
// assemble the prompt, call the provider, commit the reply, then refresh
// the rolling summary when the trigger fires. The user message stays
// committed even when the provider call fails.
func (c *chatUC) SendMessage(ctx context.Context, content string) (string, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SendMessage")()

	if strings.TrimSpace(content) == "" {
		return "", domain.ErrInvalidArgument
	}
	if c.completer == nil {
		// Store may predate any explicit StartSession; route the current
		// session's model lazily.
		completer, err := c.router.Resolve(c.store.Current().Model)
		if err != nil {
			return "", err
		}
		c.completer = completer
	}

	c.store.AppendMessage(model.RoleUser, content)

	payload := c.providerPayload()
	reply, err := c.completer.Complete(ctx, payload)
	if err != nil {
		return "", err
	}

	c.store.AppendMessage(model.RoleAssistant, reply)
	c.maybeSummarize(ctx)
	return reply, nil
}

// providerPayload converts the prompt to wire messages and trims the
// oldest window entries until the token budget holds. The system prompt
// and summary entries are never trimmed.
func (c *chatUC) providerPayload() []adapter.Message {
	prompt := c.store.PromptMessages(true)
	out := make([]adapter.Message, 0, len(prompt))
	for _, m := range prompt {
		out = append(out, adapter.Message{Role: string(m.Role), Content: m.Content})
	}
	head := 0 // leading system entries (prompt, summary) are never trimmed
	for head < len(out) && out[head].Role == "system" {
		head++
	}
	if c.counter == nil || c.budget <= 0 {
		return out
	}
	for len(out) > head+1 && c.counter.CountMessages(out) > c.budget {
		out = append(out[:head], out[head+1:]...)
	}
	return out
}

// maybeSummarize regenerates the rolling summary from the full message
// log every summaryEveryMessages messages. Best-effort: the router
// swallows provider failures and hands back "", which still overwrites
// the summary, matching the regenerate-not-merge policy.
func (c *chatUC) maybeSummarize(ctx context.Context) {
	cur := c.store.Current()
	if len(cur.Messages)%summaryEveryMessages != 0 {
		return
	}
	msgs := make([]adapter.Message, 0, len(cur.Messages))
	for _, m := range cur.Messages {
		msgs = append(msgs, adapter.Message{Role: string(m.Role), Content: m.Content})
	}
	c.store.SetSummary(c.router.GenerateContextSummary(ctx, msgs))
}

func (c *chatUC) PromptMessages(includeSystem bool) []model.Message {
	return c.store.PromptMessages(includeSystem)
}

func (c *chatUC) SetSummary(text string) { c.store.SetSummary(text) }

// ActivateSession swaps a past session in as current and re-resolves its
// route. An unknown id reports false without touching state.
func (c *chatUC) ActivateSession(id string) bool {
	if !c.store.ActivateSession(id) {
		return false
	}
	completer, err := c.router.Resolve(c.store.Current().Model)
	if err != nil {
		// Keep the session active for display; the next SendMessage
		// surfaces the configuration problem.
		c.log.Warn().Err(err).Str("session_id", id).Msg("reactivated session has unroutable model")
		c.completer = nil
		return true
	}
	c.completer = completer
	return true
}

func (c *chatUC) ResetCurrent() {
	c.store.ResetCurrent()
}

func (c *chatUC) Current() *model.Session    { return c.store.Current() }
func (c *chatUC) History() []*model.Session  { return c.store.History() }
