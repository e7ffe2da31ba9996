package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.LinksCreated.Inc()
	m.Redirects.WithLabelValues("found").Inc()
	m.Redirects.WithLabelValues("found").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinksCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Redirects.WithLabelValues("found")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shrtn_links_created_total 1")
}

func TestNew_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
