// Package metrics exposes Prometheus counters for the token lifecycle and
// the gateway calls made on its behalf.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	tokenCacheHits prometheus.Counter
	tokenRefreshes *prometheus.CounterVec
	lockContention prometheus.Counter
	gatewayCalls   *prometheus.CounterVec
	gatewayRetries *prometheus.CounterVec
}

// New registers all collectors on a fresh registry under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		tokenCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_hits_total",
			Help:      "Cached gateway tokens served without a network exchange.",
		}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "OAuth token exchanges by credential and result.",
		}, []string{"credential", "result"}),
		lockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_lock_contended_total",
			Help:      "Forced refreshes that found the refresh lock held.",
		}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Gateway HTTP calls by operation and status code.",
		}, []string{"operation", "code"}),
		gatewayRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_unauthorized_retries_total",
			Help:      "Gateway calls retried after a 401 response.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tokenCacheHits,
		m.tokenRefreshes,
		m.lockContention,
		m.gatewayCalls,
		m.gatewayRetries,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) TokenCacheHit() {
	if m == nil {
		return
	}
	m.tokenCacheHits.Inc()
}

// TokenRefresh records an exchange; credential is "primary" or "secondary".
func (m *Metrics) TokenRefresh(credential, result string) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(credential, result).Inc()
}

func (m *Metrics) LockContended() {
	if m == nil {
		return
	}
	m.lockContention.Inc()
}

// GatewayCall records a call; code 0 means a transport error.
func (m *Metrics) GatewayCall(operation string, code int) {
	if m == nil {
		return
	}
	label := strconv.Itoa(code)
	if code == 0 {
		label = "transport_error"
	}
	m.gatewayCalls.WithLabelValues(operation, label).Inc()
}

func (m *Metrics) UnauthorizedRetry(operation string) {
	if m == nil {
		return
	}
	m.gatewayRetries.WithLabelValues(operation).Inc()
}
