package tokens

import (
	"strings"
	"testing"

	"mychatme/internal/domain/ports/adapter"
)

// wordEncoder stands in for the BPE so tests stay offline.
func wordEncoder(s string) int { return len(strings.Fields(s)) }

func TestCountMessages(t *testing.T) {
	t.Parallel()
	c := newWithEncoder(wordEncoder)

	msgs := []adapter.Message{
		{Role: "system", Content: "answer briefly please"},
		{Role: "user", Content: "hello there"},
	}
	// 3 + 2 content tokens plus the per-message format overhead
	want := 5 + 2*perMessageOverhead
	if got := c.CountMessages(msgs); got != want {
		t.Fatalf("CountMessages = %d, want %d", got, want)
	}

	if got := c.CountMessages(nil); got != 0 {
		t.Fatalf("CountMessages(nil) = %d, want 0", got)
	}
}

func TestCount(t *testing.T) {
	t.Parallel()
	c := newWithEncoder(wordEncoder)
	if got := c.Count("one two three"); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}
