package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sessionsStarted, sessionsActivated, historyEvictions)
}

var (
	sessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_started_total",
			Help: "Fresh sessions created by start or reset.",
		},
	)

	sessionsActivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_activated_total",
			Help: "Past sessions reactivated from history.",
		},
	)

	historyEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_history_evictions_total",
			Help: "Oldest past sessions dropped because the history ring was full.",
		},
	)
)

func SessionStarted()   { sessionsStarted.Inc() }
func SessionActivated() { sessionsActivated.Inc() }
func HistoryEvicted()   { historyEvictions.Inc() }
