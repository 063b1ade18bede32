package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mychatme/internal/domain"
	"mychatme/internal/domain/ports/adapter"
	"mychatme/internal/infra/metrics"
)

const (
	defaultOpenRouterBase = "https://openrouter.ai/api/v1"
	maxAttempts           = 3
	baseBackoff           = 2 * time.Second
	attemptTimeout        = 30 * time.Second

	requestTemperature = 0.7
	requestMaxTokens   = 1000
)

// OpenRouterClient delivers chat-completion requests to the OpenRouter
// aggregator, normalizing rate limits and transient network failures
// into bounded retries with exponential backoff. The retry decision
// lives in classifyStatus; this type only owns the attempt/sleep state.
type OpenRouterClient struct {
	apiKey  string
	base    string
	referer string
	title   string
	client  *http.Client
	log     *zerolog.Logger

	// sleep is swapped out by tests to avoid real timers.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOpenRouterClient(apiKey, base, referer, title string, logger *zerolog.Logger) *OpenRouterClient {
	if base == "" {
		base = defaultOpenRouterBase
	}
	return &OpenRouterClient{
		apiKey:  apiKey,
		base:    strings.TrimRight(base, "/"),
		referer: referer,
		title:   title,
		client:  &http.Client{Timeout: attemptTimeout},
		log:     logger,
		sleep:   sleepCtx,
	}
}

// Configured reports whether a credential is present.
func (c *OpenRouterClient) Configured() bool { return c.apiKey != "" }

type createRequest struct {
	Model          string            `json:"model"`
	Messages       []adapter.Message `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]any    `json:"response_format,omitempty"`
}

type createResponse struct {
	Choices []struct {
		Message adapter.Message `json:"message"`
	} `json:"choices"`
	gatewayError
}

// Create sends one chat-completion request for the given backend model
// id, retrying transient failures up to the attempt ceiling. Attempt k
// waits baseBackoff*2^k before the next attempt.
func (c *OpenRouterClient) Create(ctx context.Context, messages []adapter.Message, model string, responseFormat map[string]any) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openrouter: %w", domain.ErrProviderNotConfigured)
	}

	body, err := json.Marshal(createRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    requestTemperature,
		MaxTokens:      requestMaxTokens,
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := baseBackoff << (attempt - 1)
			c.log.Debug().Int("attempt", attempt).Dur("backoff", delay).Str("model", model).Msg("openrouter retry")
			metrics.GatewayRetried(model)
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		reply, disp, err := c.attempt(ctx, model, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if disp == failTerminal {
			return "", err
		}
	}
	return "", &RetriesExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

func (c *OpenRouterClient) attempt(ctx context.Context, model string, body []byte) (string, disposition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", failTerminal, fmt.Errorf("openrouter: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	metrics.GatewayAttempt(model)
	resp, err := c.client.Do(req)
	if err != nil {
		// Connection errors, DNS, per-attempt timeout: transient.
		if ctx.Err() != nil {
			return "", failTerminal, ctx.Err()
		}
		c.log.Warn().Err(err).Str("model", model).Msg("openrouter transport error")
		return "", retryBackoff, fmt.Errorf("openrouter: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retryBackoff, fmt.Errorf("openrouter: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		disp, cerr := classifyStatus(resp.StatusCode, raw)
		var rl *RateLimitError
		if errors.As(cerr, &rl) {
			metrics.GatewayRateLimited(model, rl.Provider)
		}
		return "", disp, fmt.Errorf("openrouter: %w", cerr)
	}

	var payload createResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", failTerminal, fmt.Errorf("openrouter: %w", &ResponseFormatError{Reason: "invalid JSON: " + err.Error()})
	}
	if payload.Error != nil {
		return "", failTerminal, fmt.Errorf("openrouter: %w", &RequestError{Status: resp.StatusCode, Message: payload.Error.Message})
	}
	if len(payload.Choices) == 0 {
		return "", failTerminal, fmt.Errorf("openrouter: %w", &ResponseFormatError{Reason: "no choices in response"})
	}
	if payload.Choices[0].Message.Content == "" {
		return "", failTerminal, fmt.Errorf("openrouter: %w", &ResponseFormatError{Reason: "no message content in first choice"})
	}
	return payload.Choices[0].Message.Content, failTerminal, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
