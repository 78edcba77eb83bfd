package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks live quiz sessions across all rooms.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiz",
		Name:      "active_sessions",
		Help:      "Number of live quiz sessions.",
	})

	// EventsTotal counts processed session events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "session_events_total",
		Help:      "Session events processed, by event type.",
	}, []string{"event"})

	// AnswersTotal counts evaluated answers by outcome.
	AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "answers_total",
		Help:      "Evaluated answer submissions, by outcome.",
	}, []string{"outcome"})

	// StaleDropsTotal counts lenient drops of late or duplicate requests.
	StaleDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "stale_drops_total",
		Help:      "Requests silently dropped as stale or duplicate.",
	})
)
