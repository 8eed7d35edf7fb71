// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_operations_total",
			Help: "Total number of workflow operations by outcome",
		},
		[]string{"operation", "result"},
	)

	WorkflowOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "workflow_operation_duration_seconds",
			Help: "Duration of workflow operations in seconds",
		},
		[]string{"operation"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Total number of notification records drained from the outbox",
		},
		[]string{"type"},
	)

	OutboxBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_outbox_backlog",
			Help: "Number of undispatched notification records observed in the last poll",
		},
	)
)
