// Package metrics holds the Prometheus collectors for catalog lookups.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "numisref"

// Metrics tracks lookup outcomes, cache effectiveness and remote latency.
type Metrics struct {
	lookups         *prometheus.CounterVec   // Lookups by system and status
	cacheHits       *prometheus.CounterVec   // Cache hits by operation
	cacheMisses     *prometheus.CounterVec   // Cache misses by operation
	rateLimited     *prometheus.CounterVec   // Local rate-limit rejections by system
	requestDuration *prometheus.HistogramVec // Remote request latency
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "lookups_total",
			Help:      "Total catalog lookups by system and result status",
		}, []string{"system", "status"}),

		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total result cache hits",
		}, []string{"operation"}),

		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total result cache misses",
		}, []string{"operation"}),

		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the local rate limiter",
		}, []string{"system"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote catalog requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"system", "operation"}),
	}
}

// Register adds every collector to registerer.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{
		m.lookups, m.cacheHits, m.cacheMisses, m.rateLimited, m.requestDuration,
	} {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistered creates the collectors and registers them.
func NewRegistered(registerer prometheus.Registerer) (*Metrics, error) {
	m := New()
	if err := m.Register(registerer); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordLookup counts one finished lookup.
func (m *Metrics) RecordLookup(system, status string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(system, status).Inc()
}

// RecordCache counts a cache hit or miss for operation ("lookup" or "get").
func (m *Metrics) RecordCache(operation string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(operation).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(operation).Inc()
}

// RecordRateLimited counts a local rate-limit rejection.
func (m *Metrics) RecordRateLimited(system string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(system).Inc()
}

// ObserveRequest records the latency of a remote request started at start.
func (m *Metrics) ObserveRequest(system, operation string, start time.Time) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(system, operation).Observe(time.Since(start).Seconds())
}
