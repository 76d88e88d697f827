package study

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rooty",
		Subsystem: "study",
		Name:      "sessions_served_total",
		Help:      "Quiz batches served, by item kind.",
	}, []string{"kind"})

	attemptsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rooty",
		Subsystem: "study",
		Name:      "attempts_recorded_total",
		Help:      "Answer attempts recorded, by result.",
	}, []string{"result"})
)
