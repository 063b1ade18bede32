package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mychatme/internal/domain"
	"mychatme/internal/domain/ports/adapter"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenRouterClient, *[]time.Duration) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c := NewOpenRouterClient("test-key", ts.URL, "https://example.test", "mychatme-test", testLogger())
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func okResponse(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + content + `"}}]}`
}

func TestCreate_RetriesAnonymousRateLimitThenSucceeds(t *testing.T) {
	t.Parallel()
	calls := 0
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"busy"}}`))
			return
		}
		_, _ = w.Write([]byte(okResponse("hello")))
	})

	got, err := c.Create(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}}, "google/gemini-2.0-flash-exp:free", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != "hello" {
		t.Fatalf("reply = %q", got)
	}
	if calls != 3 {
		t.Fatalf("transport invoked %d times, want 3", calls)
	}
	// exponential backoff: each inter-attempt delay doubles
	if len(*slept) != 2 || (*slept)[0] != 2*time.Second || (*slept)[1] != 4*time.Second {
		t.Fatalf("backoff delays = %v, want [2s 4s]", *slept)
	}
}

func TestCreate_ProviderNamedRateLimitIsNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"out of quota","metadata":{"provider_name":"Google"}}}`))
	})

	_, err := c.Create(context.Background(), nil, "m", nil)
	var rl *RateLimitError
	if !errors.As(err, &rl) || rl.Provider != "Google" {
		t.Fatalf("err = %v, want named RateLimitError", err)
	}
	if calls != 1 || len(*slept) != 0 {
		t.Fatalf("calls=%d slept=%v, want single attempt without backoff", calls, *slept)
	}
}

func TestCreate_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"broken"}}`))
	})

	_, err := c.Create(context.Background(), nil, "m", nil)
	var re *RequestError
	if !errors.As(err, &re) || re.Status != 500 {
		t.Fatalf("err = %v, want RequestError(500)", err)
	}
	if calls != 1 {
		t.Fatalf("transport invoked %d times, want 1", calls)
	}
}

func TestCreate_EmptyChoicesIsFormatError(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Create(context.Background(), nil, "m", nil)
	var fe *ResponseFormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want ResponseFormatError", err)
	}
}

func TestCreate_ErrorPayloadOn200IsSurfaced(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model offline"}}`))
	})

	_, err := c.Create(context.Background(), nil, "m", nil)
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RequestError for embedded error payload", err)
	}
}

func TestCreate_ExhaustsAttemptsOnPersistentRateLimit(t *testing.T) {
	t.Parallel()
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Create(context.Background(), nil, "m", nil)
	var ex *RetriesExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("err = %v, want RetriesExhaustedError", err)
	}
	if calls != 3 || ex.Attempts != 3 {
		t.Fatalf("calls=%d attempts=%d, want 3", calls, ex.Attempts)
	}
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatal("exhaustion must wrap the last underlying cause")
	}
}

func TestCreate_FailsFastWithoutCredential(t *testing.T) {
	t.Parallel()
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	t.Cleanup(ts.Close)
	c := NewOpenRouterClient("", ts.URL, "", "", testLogger())

	_, err := c.Create(context.Background(), nil, "m", nil)
	if !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("err = %v, want ErrProviderNotConfigured", err)
	}
	if calls != 0 {
		t.Fatal("no request may be issued without a credential")
	}
}

func TestCreate_SendsWireContract(t *testing.T) {
	t.Parallel()
	var gotAuth, gotReferer, gotTitle string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(okResponse("ok")))
	})

	_, err := c.Create(context.Background(),
		[]adapter.Message{{Role: "user", Content: "hi"}},
		"anthropic/claude-3.5-sonnet",
		map[string]any{"type": "json_object"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReferer != "https://example.test" || gotTitle != "mychatme-test" {
		t.Errorf("identification headers = %q / %q", gotReferer, gotTitle)
	}
	if gotBody["model"] != "anthropic/claude-3.5-sonnet" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["temperature"] != 0.7 || gotBody["max_tokens"] != float64(1000) {
		t.Errorf("temperature/max_tokens = %v/%v", gotBody["temperature"], gotBody["max_tokens"])
	}
	if _, ok := gotBody["response_format"]; !ok {
		t.Error("response_format missing from body")
	}
}
