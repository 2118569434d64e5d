package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's collectors; /metrics exposes only this registry.
	Registry = prometheus.NewRegistry()

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Booking lifecycle operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "notifications",
			Name:      "created_total",
			Help:      "Persisted notifications by type.",
		},
		[]string{"type"},
	)

	sweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "sweep",
			Name:      "operations_total",
			Help:      "Maintenance sweep operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	sweepAffected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "sweep",
			Name:      "affected_bookings_total",
			Help:      "Bookings completed or purged by the maintenance sweep.",
		},
		[]string{"operation"},
	)

	droppedViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "aggregation",
			Name:      "dropped_items_total",
			Help:      "View elements dropped because a join could not be resolved.",
		},
		[]string{"view"},
	)
)

func init() {
	Registry.MustRegister(
		transitions,
		notifications,
		sweepRuns,
		sweepAffected,
		droppedViews,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordTransition(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	transitions.WithLabelValues(operation, outcome).Inc()
}

func RecordNotification(notificationType string) {
	notifications.WithLabelValues(notificationType).Inc()
}

func RecordSweep(operation string, affected int64, err error) {
	if err != nil {
		sweepRuns.WithLabelValues(operation, "error").Inc()
		return
	}
	sweepRuns.WithLabelValues(operation, "ok").Inc()
	sweepAffected.WithLabelValues(operation).Add(float64(affected))
}

func RecordDropped(view string) {
	droppedViews.WithLabelValues(view).Inc()
}
