package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fragmentsCapturedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "echo",
			Name:      "fragments_captured_total",
			Help:      "Fragments persisted, by type.",
		},
		[]string{"type"},
	)

	insightPersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "echo",
			Name:      "insight_persist_failures_total",
			Help:      "Generated insights that could not be stored.",
		},
	)

	memoriesUpsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "echo",
			Name:      "daily_memories_upserted_total",
			Help:      "Daily memory rows inserted or refreshed.",
		},
	)

	sweepUsersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "echo",
			Name:      "sweep_users_total",
			Help:      "Users processed by the nightly sweep, by outcome.",
		},
		[]string{"outcome"},
	)
)
