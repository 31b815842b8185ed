package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDeletionEventCounter(t *testing.T) {
	m := NewAPIMetrics(prometheus.NewRegistry())

	m.DeletionEvent(DeletionRequested)
	m.DeletionEvent(DeletionRequested)
	m.DeletionEvent(DeletionApproved)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.deletionRequests.WithLabelValues(DeletionRequested)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deletionRequests.WithLabelValues(DeletionApproved)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.deletionRequests.WithLabelValues(DeletionRejected)))
}

func TestNilMetricsIgnoreDeletionEvents(t *testing.T) {
	var m *APIMetrics
	assert.NotPanics(t, func() { m.DeletionEvent(DeletionCancelled) })
}

func TestRequestLifecycle(t *testing.T) {
	m := NewAPIMetrics(prometheus.NewRegistry())

	m.RequestStarted("/api/servicos", "GET")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRequests.WithLabelValues("/api/servicos", "GET")))

	m.RequestCompleted("/api/servicos", "GET", "200", 10*time.Millisecond, 128)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests.WithLabelValues("/api/servicos", "GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("/api/servicos", "GET", "200")))
}
