package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	ok := testutil.ToFloat64(recomputes.WithLabelValues("ok"))
	failed := testutil.ToFloat64(recomputes.WithLabelValues("failed"))

	Recompute(time.Now(), nil)
	Recompute(time.Now(), errors.New("boom"))
	Recompute(time.Now(), errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(recomputes.WithLabelValues("ok")))
	assert.Equal(t, failed+2, testutil.ToFloat64(recomputes.WithLabelValues("failed")))
}

func TestProviderQuery(t *testing.T) {
	before := testutil.ToFloat64(providerQueries.WithLabelValues("tokenbalance", "ok"))
	ProviderQuery("tokenbalance", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(providerQueries.WithLabelValues("tokenbalance", "ok")))
}

func TestHandler(t *testing.T) {
	HTTPRequest(http.MethodGet, "/api/getInfo", http.StatusOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supply_http_requests_total")
}
