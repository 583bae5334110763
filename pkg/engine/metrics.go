package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// commitsTotal counts committed changes by operation.
	commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_engine_commits_total",
		Help: "Total committed document changes by operation",
	}, []string{"op"})

	// saveFailuresTotal counts rejected saves.
	saveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_engine_save_failures_total",
		Help: "Total document saves rejected by the repository",
	})

	// transitionsTotal counts status transitions by new status.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_status_transitions_total",
		Help: "Total note status transitions by new status",
	}, []string{"status"})

	// scheduleFailuresTotal counts markDone calls that could not resolve an interval.
	scheduleFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_schedule_failures_total",
		Help: "Total failed reschedules by reason",
	}, []string{"reason"})

	// eventsDroppedTotal counts events not delivered to slow subscribers.
	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_engine_events_dropped_total",
		Help: "Total engine events dropped because a subscriber buffer was full",
	})
)
