package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mychatme/internal/domain"
	"mychatme/internal/domain/model"
	"mychatme/internal/infra/adapters/ai"
	"mychatme/internal/infra/export"
	"mychatme/internal/infra/i18n"
	"mychatme/internal/infra/logging"
	"mychatme/internal/usecase"
)

// Server is the HTTP surface the UI collaborator talks to. The core
// never renders UI: handlers translate typed failures into status codes
// and localized messages and otherwise pass session state through.
type Server struct {
	chat          usecase.ChatUseCase
	bundles       map[string]*i18n.Bundle
	defaultLocale string
	auth          *AuthManager
	log           *zerolog.Logger
}

func NewServer(chat usecase.ChatUseCase, bundles map[string]*i18n.Bundle, defaultLocale string, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{
		chat:          chat,
		bundles:       bundles,
		defaultLocale: defaultLocale,
		auth:          auth,
		log:           logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiWrap(Recover(s.log)), chiWrap(TraceID()), chiWrap(RequestLog(s.log)), chiWrap(Timeout(2*time.Minute)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions", s.handleHistory)
		r.Post("/sessions/{id}/activate", s.handleActivate)

		r.Post("/chat/messages", s.handleSendMessage)
		r.Get("/chat/prompt", s.handlePrompt)
		r.Post("/chat/reset", s.handleReset)
		r.Post("/chat/summary", s.handleSetSummary)
		r.Get("/chat/export", s.handleExport)

		r.Post("/admin/login", s.handleAdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Guard)
			r.Get("/admin/stats", s.handleStats)
		})
	})
	return r
}

func chiWrap(m Middleware) func(http.Handler) http.Handler { return m }

// bundle picks the display locale per request; the lang query parameter
// wins over Accept-Language's primary tag.
func (s *Server) bundle(r *http.Request) *i18n.Bundle {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		al := r.Header.Get("Accept-Language")
		if len(al) >= 2 {
			lang = al[:2]
		}
	}
	if b, ok := s.bundles[lang]; ok {
		return b
	}
	return s.bundles[s.defaultLocale]
}

type sessionView struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Messages  int       `json:"messages"`
}

func viewOf(sess *model.Session) sessionView {
	return sessionView{ID: sess.ID, Model: sess.Model, CreatedAt: sess.CreatedAt, Messages: len(sess.Messages)}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SystemPrompt string `json:"system_prompt"`
		Model        string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sess, err := s.chat.StartSession(req.SystemPrompt, req.Model)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	past := s.chat.History()
	views := make([]sessionView, 0, len(past))
	for _, sess := range past {
		views = append(views, viewOf(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": viewOf(s.chat.Current()),
		"history": views,
	})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.chat.ActivateSession(id) {
		s.respondError(w, r, fmt.Errorf("activate %s: %w", id, domain.ErrSessionNotFound))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.chat.Current()))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ctx := logging.WithSessID(r.Context(), s.chat.Current().ID)
	reply, err := s.chat.SendMessage(ctx, req.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	includeSystem := r.URL.Query().Get("include_system") == "true"
	msgs := s.chat.PromptMessages(includeSystem)
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.chat.ResetCurrent()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.chat.SetSummary(req.Summary)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	doc := export.Markdown(s.chat.Current(), now)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Login(req.Secret)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cur := s.chat.Current()
	past := s.chat.History()
	total := len(cur.Messages)
	for _, sess := range past {
		total += len(sess.Messages)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current_session_messages": len(cur.Messages),
		"past_sessions":            len(past),
		"total_messages":           total,
		"has_summary":              cur.ContextSummary != "",
	})
}

// respondError maps the error taxonomy onto HTTP statuses with a
// localized user-facing message alongside the raw cause.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	b := s.bundle(r)
	l := logging.With(r.Context(), s.log)

	status := http.StatusInternalServerError
	message := b.T("error_api_call")

	var rl *ai.RateLimitError
	var exhausted *ai.RetriesExhaustedError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
		message = b.T("error_session_not_found")
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = b.T("error_empty_message")
	case errors.Is(err, domain.ErrUnknownModel):
		status = http.StatusBadRequest
		message = b.T("error_invalid_model")
	case errors.Is(err, domain.ErrProviderNotConfigured):
		status = http.StatusServiceUnavailable
		message = b.T("error_missing_key", providerOf(err))
	case errors.As(err, &exhausted):
		status = http.StatusServiceUnavailable
		message = b.T("error_rate_limited_generic")
	case errors.As(err, &rl):
		status = http.StatusTooManyRequests
		if rl.Provider != "" {
			message = b.T("error_rate_limited", rl.Provider)
		} else {
			message = b.T("error_rate_limited_generic")
		}
	default:
		var reqErr *ai.RequestError
		var fmtErr *ai.ResponseFormatError
		if errors.As(err, &reqErr) || errors.As(err, &fmtErr) {
			status = http.StatusBadGateway
		}
	}

	l.Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{
		"error":   err.Error(),
		"message": message,
	})
}

// providerOf extracts the provider prefix from wrapped configuration
// errors like "openai: provider not configured...".
func providerOf(err error) string {
	msg := err.Error()
	for i := 0; i < len(msg); i++ {
		if msg[i] == ':' {
			return msg[:i]
		}
	}
	return "provider"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
