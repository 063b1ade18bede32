package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mychatme/internal/domain"
	"mychatme/internal/domain/ports/adapter"
	"mychatme/internal/infra/metrics"
)

// Compile-time check
var _ adapter.ModelRouter = (*Router)(nil)

// backend tags the closed set of routes a logical model can resolve to.
type backend int

const (
	backendOpenAI backend = iota
	backendGatewayGemini
	backendGatewayClaude
)

// Routes carries the backend model identifiers for the three logical
// models, from config.
type Routes struct {
	OpenAIModel string // e.g. "gpt-4o"
	GeminiModel string // e.g. "google/gemini-2.0-flash-exp:free"
	ClaudeModel string // e.g. "anthropic/claude-3.5-sonnet"
}

// summarizer is the first-party backend's surface: plain completion
// plus the bounded variant summarization uses.
type summarizer interface {
	adapter.Completer
	CompleteBounded(ctx context.Context, messages []adapter.Message, maxTokens int) (string, error)
}

// Router maps a logical model selection to either the direct OpenAI
// adapter or an OpenRouter call with the backend model id baked in.
// Resolution happens once per session; the returned Completer is the
// only dispatch surface afterwards.
type Router struct {
	openai        summarizer        // nil when OPENAI_API_KEY is absent
	gateway       *OpenRouterClient // checks its own credential
	routes        Routes
	summaryTokens int
	summaryWindow int
	sem           chan struct{}
	log           *zerolog.Logger
}

func NewRouter(openaiAdapter *OpenAIAdapter, gateway *OpenRouterClient, routes Routes, summaryTokens, summaryWindow, concurrentLimit int, logger *zerolog.Logger) *Router {
	var sem chan struct{}
	if concurrentLimit > 0 {
		sem = make(chan struct{}, concurrentLimit)
	}
	r := &Router{
		gateway:       gateway,
		routes:        routes,
		summaryTokens: summaryTokens,
		summaryWindow: summaryWindow,
		sem:           sem,
		log:           logger,
	}
	if openaiAdapter != nil {
		r.openai = openaiAdapter
	}
	return r
}

func (r *Router) resolveBackend(model string) (backend, error) {
	switch strings.ToLower(model) {
	case "", "gpt-4", "gpt-4o", "openai":
		return backendOpenAI, nil
	case "gemini", "gemini-2.0", strings.ToLower(r.routes.GeminiModel):
		return backendGatewayGemini, nil
	case "claude", "claude-3.5", strings.ToLower(r.routes.ClaudeModel):
		return backendGatewayClaude, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownModel, model)
	}
}

func (r *Router) Resolve(model string) (adapter.Completer, error) {
	kind, err := r.resolveBackend(model)
	if err != nil {
		return nil, err
	}

	var c adapter.Completer
	switch kind {
	case backendOpenAI:
		if r.openai == nil {
			return nil, fmt.Errorf("openai: %w", domain.ErrProviderNotConfigured)
		}
		c = instrumented{inner: r.openai, provider: "openai", model: r.routes.OpenAIModel}
	case backendGatewayGemini:
		c = instrumented{inner: gatewayCompleter{client: r.gateway, model: r.routes.GeminiModel}, provider: "openrouter", model: r.routes.GeminiModel}
	case backendGatewayClaude:
		c = instrumented{inner: gatewayCompleter{client: r.gateway, model: r.routes.ClaudeModel}, provider: "openrouter", model: r.routes.ClaudeModel}
	}
	return limitCompleter(c, r.sem), nil
}

// GenerateContextSummary builds a one-shot summarization request against
// the first-party backend. Summarization is best-effort: any failure is
// logged and an empty string returned, never an error.
func (r *Router) GenerateContextSummary(ctx context.Context, messages []adapter.Message) string {
	if r.openai == nil {
		r.log.Debug().Msg("summary skipped: openai not configured")
		return ""
	}

	instruction := adapter.Message{
		Role: "system",
		Content: fmt.Sprintf(
			"Summarize the key points of this conversation in a concise way. "+
				"Focus on the main topics and important details. "+
				"Keep the summary within %d tokens.", r.summaryTokens),
	}
	recent := messages
	if len(recent) > r.summaryWindow {
		recent = recent[len(recent)-r.summaryWindow:]
	}
	payload := append([]adapter.Message{instruction}, recent...)

	out, err := r.openai.CompleteBounded(ctx, payload, r.summaryTokens)
	if err != nil {
		r.log.Warn().Err(err).Msg("context summary failed")
		metrics.SummaryFailed()
		return ""
	}
	metrics.SummaryGenerated()
	return out
}

// gatewayCompleter binds a backend model id to the shared gateway client.
type gatewayCompleter struct {
	client *OpenRouterClient
	model  string
}

func (g gatewayCompleter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	return g.client.Create(ctx, messages, g.model, nil)
}

// instrumented records call latency and outcome per provider/model.
type instrumented struct {
	inner    adapter.Completer
	provider string
	model    string
}

func (i instrumented) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	start := time.Now()
	out, err := i.inner.Complete(ctx, messages)
	metrics.ObserveChatCall(i.provider, i.model, time.Since(start), err == nil)
	return out, err
}
