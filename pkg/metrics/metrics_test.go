package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewRegistered(registry)
	require.NoError(t, err)

	m.RecordLookup("ric", "success")
	m.RecordLookup("ric", "success")
	m.RecordLookup("rpc", "deferred")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("ric", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("rpc", "deferred")))
}

func TestRecordCache(t *testing.T) {
	m := New()
	m.RecordCache("lookup", true)
	m.RecordCache("lookup", false)
	m.RecordCache("lookup", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("lookup")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses.WithLabelValues("lookup")))
}

func TestRecordRateLimitedAndLatency(t *testing.T) {
	m := New()
	m.RecordRateLimited("crawford")
	m.ObserveRequest("crawford", "reconcile", time.Now().Add(-50*time.Millisecond))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("crawford")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New()
	require.NoError(t, m.Register(registry))
	assert.Error(t, m.Register(registry))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLookup("ric", "success")
		m.RecordCache("get", true)
		m.RecordRateLimited("ric")
		m.ObserveRequest("ric", "reconcile", time.Now())
		assert.NoError(t, m.Register(prometheus.NewRegistry()))
	})
}
