package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visuall",
			Name:      "reminder_mutations_total",
			Help:      "Reminder store mutations that were persisted.",
		},
		[]string{"op"},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visuall",
			Name:      "reminder_persistence_failures_total",
			Help:      "Reminder store writes that failed and were rolled back.",
		},
		[]string{"op"},
	)

	RemindersEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "visuall",
			Name:      "reminders_evicted_total",
			Help:      "Completed reminders removed from history by the expiry sweeper.",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "visuall",
			Name:      "active_sessions",
			Help:      "Users with a loaded reminder store and a running sweeper.",
		},
	)

	DispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visuall",
			Name:      "dispatch_outcomes_total",
			Help:      "Voice and share requests by outcome.",
		},
		[]string{"action", "outcome"},
	)
)
