// Package metrics exports registry activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dshills/relay/internal/event"
)

var _ event.Observer = (*PrometheusMetrics)(nil)

// Invocation results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// PrometheusMetrics implements event.Observer with Prometheus collectors.
type PrometheusMetrics struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	eventsEmittedTotal        prometheus.Counter
	eventsUnmatchedTotal      prometheus.Counter
	handlerInvocationsTotal   *prometheus.CounterVec
	subscriptionsExpiredTotal prometheus.Counter
	handlerDuration           prometheus.Histogram
}

// NewPrometheusMetrics creates metrics registered on a private registry.
func NewPrometheusMetrics(namespace string, logger *zap.Logger) *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	return NewPrometheusMetricsWithRegistry(namespace, registry, registry, logger)
}

// NewPrometheusMetricsWithRegistry creates metrics registered on reg.
// gatherer backs Handler and may be nil when Handler is not used.
func NewPrometheusMetricsWithRegistry(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *zap.Logger) *PrometheusMetrics {
	if namespace == "" {
		namespace = "relay"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		gatherer: gatherer,
	}

	pm.eventsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Total number of emitted events that matched at least one pattern",
		},
	)

	pm.eventsUnmatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_unmatched_total",
			Help:      "Total number of emitted events that matched no pattern",
		},
	)

	pm.handlerInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_invocations_total",
			Help:      "Total number of handler invocations",
		},
		[]string{"result"},
	)

	pm.subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_expired_total",
			Help:      "Total number of bounded subscriptions removed after their last invocation",
		},
	)

	pm.handlerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Duration of handler invocations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	reg.MustRegister(pm.eventsEmittedTotal)
	reg.MustRegister(pm.eventsUnmatchedTotal)
	reg.MustRegister(pm.handlerInvocationsTotal)
	reg.MustRegister(pm.subscriptionsExpiredTotal)
	reg.MustRegister(pm.handlerDuration)

	logger.Info("Prometheus metrics initialized", zap.String("namespace", namespace))

	return pm
}

// EventEmitted records a matched emission.
func (pm *PrometheusMetrics) EventEmitted(name string, matched int) {
	pm.eventsEmittedTotal.Inc()
	pm.logger.Debug("Recorded emitted event metric",
		zap.String("event", name),
		zap.Int("matched", matched))
}

// EventUnmatched records an emission that matched nothing.
func (pm *PrometheusMetrics) EventUnmatched(name string) {
	pm.eventsUnmatchedTotal.Inc()
	pm.logger.Debug("Recorded unmatched event metric", zap.String("event", name))
}

// HandlerInvoked records one handler invocation.
func (pm *PrometheusMetrics) HandlerInvoked(pattern string, d time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	pm.handlerInvocationsTotal.WithLabelValues(result).Inc()
	pm.handlerDuration.Observe(d.Seconds())
}

// SubscriptionExpired records a bounded subscription running out.
func (pm *PrometheusMetrics) SubscriptionExpired(pattern string) {
	pm.subscriptionsExpiredTotal.Inc()
	pm.logger.Debug("Recorded expired subscription metric", zap.String("pattern", pattern))
}

// Handler returns an HTTP handler serving the gathered metrics.
func (pm *PrometheusMetrics) Handler() http.Handler {
	if pm.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
