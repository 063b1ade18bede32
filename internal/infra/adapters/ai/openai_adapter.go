package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"mychatme/internal/domain/ports/adapter"
)

// Compile-time assurance the adapter satisfies the port
var _ adapter.Completer = (*OpenAIAdapter)(nil)

// OpenAIAdapter is the first-party backend, via the official SDK.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (o *OpenAIAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	return o.complete(ctx, messages, 0)
}

// CompleteBounded caps the reply length; used for summarization.
func (o *OpenAIAdapter) CompleteBounded(ctx context.Context, messages []adapter.Message, maxTokens int) (string, error) {
	return o.complete(ctx, messages, maxTokens)
}

func (o *OpenAIAdapter) complete(ctx context.Context, messages []adapter.Message, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(messages),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", fmt.Errorf("openai: %w", &ResponseFormatError{Reason: "no choice content"})
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
