package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "af_validation_rounds_total",
		Help: "Validation calls issued to the ledger authority.",
	})

	validationStaleDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "af_validation_stale_dropped_total",
		Help: "Validation responses dropped because a newer generation superseded them.",
	})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "af_lifecycle_transitions_total",
		Help: "Lifecycle transitions, by kind and outcome.",
	}, []string{"kind", "outcome"})
)
