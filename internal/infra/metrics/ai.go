package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		gatewayAttempts,
		gatewayRetries,
		gatewayRateLimits,
		summariesGenerated,
		summariesFailed,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "model", "success"},
	)

	gatewayAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_attempts_total",
			Help: "Outbound OpenRouter request attempts per backend model.",
		},
		[]string{"model"},
	)

	gatewayRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_retries_total",
			Help: "OpenRouter attempts that were re-issued after backoff.",
		},
		[]string{"model"},
	)

	gatewayRateLimits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "HTTP 429 responses per backend model and attributed upstream provider.",
		},
		[]string{"model", "upstream"},
	)

	summariesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "context_summaries_generated_total",
			Help: "Rolling context summaries successfully regenerated.",
		},
	)

	summariesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "context_summaries_failed_total",
			Help: "Best-effort summarization attempts that were swallowed.",
		},
	)
)

func ObserveChatCall(provider, model string, elapsed time.Duration, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func GatewayAttempt(model string)     { gatewayAttempts.WithLabelValues(norm(model)).Inc() }
func GatewayRetried(model string)     { gatewayRetries.WithLabelValues(norm(model)).Inc() }
func SummaryGenerated()               { summariesGenerated.Inc() }
func SummaryFailed()                  { summariesFailed.Inc() }

func GatewayRateLimited(model, upstream string) {
	if upstream == "" {
		upstream = "unknown"
	}
	gatewayRateLimits.WithLabelValues(norm(model), norm(upstream)).Inc()
}

func norm(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
