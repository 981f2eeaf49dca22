package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetrics_Observe tests result labelling.
func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe("add", time.Now(), nil)
	m.Observe("add", time.Now(), nil)
	m.Observe("add", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("add", ResultFailure)))
}

// TestMetrics_InFlight tests the upload gauge.
func TestMetrics_InFlight(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.UploadStarted()
	m.UploadStarted()
	m.UploadFinished()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
}

// TestMetrics_SharedRegistry tests that a second client reuses registered collectors.
func TestMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)

	second.Observe("get", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(first.Operations.WithLabelValues("get", ResultSuccess)))
}

// TestMetrics_Nil tests that a nil receiver is a no-op.
func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("add", time.Now(), nil)
		m.UploadStarted()
		m.UploadFinished()
		m.ObserveBatch(3)
	})
}

// TestHandler tests that registered collectors are exposed.
func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveBatch(3)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "objectstore_batch_size")
}
