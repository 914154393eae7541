package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"smart-chatbot/internal/domain"
)

var (
	// repliesTotal counts replies by the rule or lookup outcome that produced them.
	repliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbot",
		Subsystem: "resolver",
		Name:      "replies_total",
		Help:      "Total replies by source",
	}, []string{"source"})

	// lookupDurationSeconds measures knowledge lookups by outcome.
	lookupDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatbot",
		Subsystem: "lookup",
		Name:      "duration_seconds",
		Help:      "Knowledge lookup latency by outcome",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"})
)

func recordReply(source Source) {
	repliesTotal.WithLabelValues(string(source)).Inc()
}

func recordLookup(kind domain.LookupKind, d time.Duration) {
	lookupDurationSeconds.WithLabelValues(kind.String()).Observe(d.Seconds())
}
