package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollectorIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)

	// Re-registration hands back the existing collectors.
	assert.Same(t, a.HTTPRequests, b.HTTPRequests)
}

func TestObserveMask(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveMask(10*time.Millisecond, 400, 100)

	assert.InDelta(t, 400, testutil.ToFloat64(c.MaskCells), 1e-9)
	assert.InDelta(t, 0.25, testutil.ToFloat64(c.VisibleRatio), 1e-9)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/horizon", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("/api/horizon", "418"))
	assert.InDelta(t, 1, count, 1e-9)
}
