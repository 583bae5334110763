package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ticksTotal counts classifier ticks.
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_status_ticks_total",
		Help: "Total status classifier ticks",
	})

	// tickPanicsTotal counts ticks that panicked and were recovered.
	tickPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_status_tick_panics_total",
		Help: "Total status classifier ticks that panicked",
	})

	// restartsTotal counts classifier (re)starts.
	restartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_status_starts_total",
		Help: "Total status classifier starts, including restarts",
	})
)
