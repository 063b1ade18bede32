package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"mychatme/internal/domain/ports/adapter"
)

// perMessageOverhead approximates the tokens the chat format itself
// spends per message (role markers and separators).
const perMessageOverhead = 4

// Counter counts prompt tokens with the cl100k_base BPE, shared by the
// GPT-4 family. Counts are a budget heuristic, not provider-exact.
type Counter struct {
	encode func(string) int
}

func New() (*Counter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return newWithEncoder(func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}), nil
}

func newWithEncoder(encode func(string) int) *Counter {
	return &Counter{encode: encode}
}

func (c *Counter) Count(text string) int { return c.encode(text) }

// CountMessages totals the token cost of a provider payload.
func (c *Counter) CountMessages(messages []adapter.Message) int {
	total := 0
	for _, m := range messages {
		total += c.encode(m.Content) + perMessageOverhead
	}
	return total
}
