// Package metrics содержит счётчики Prometheus для сделок, оценок и HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const namespace = "barter"

var TradeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "trade",
	Name:      "transitions_total",
	Help:      "Total committed trade status changes by resulting status.",
}, []string{"status"})

var OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "core",
	Name:      "operation_failures_total",
	Help:      "Total failed core operations by operation and error code.",
}, []string{"operation", "code"})

var RatingsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reputation",
	Name:      "ratings_created_total",
	Help:      "Total ratings persisted.",
})

var CoinsTransferred = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "trade",
	Name:      "coins_transferred_total",
	Help:      "Total trade coins moved between users on completion.",
})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route, method and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method", "status"})

func ObserveTransition(status string) {
	TradeTransitions.WithLabelValues(status).Inc()
}

// ObserveFailure учитывает ошибку операции; nil игнорируется.
func ObserveFailure(operation string, err error) {
	if err == nil {
		return
	}
	OperationFailures.WithLabelValues(operation, string(apperror.CodeOf(err))).Inc()
}
