package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"codeberg.org/studyhall/server/internal/quota"
)

func newTestCollector() *Collector {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

func TestObserveDecision(t *testing.T) {
	c := newTestCollector()

	c.ObserveDecision(quota.CapabilityTutorQnA, quota.TierFree, true)
	c.ObserveDecision(quota.CapabilityTutorQnA, quota.TierFree, true)
	c.ObserveDecision(quota.CapabilityTutorQnA, quota.TierFree, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.QuotaDecisions.WithLabelValues("tutor_qna", "free", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QuotaDecisions.WithLabelValues("tutor_qna", "free", "denied")))
}

func TestObserveError(t *testing.T) {
	c := newTestCollector()

	c.ObserveError("try_consume")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.LedgerErrors.WithLabelValues("try_consume")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := newTestCollector()

	router := gin.New()
	router.Use(c.Middleware())
	router.GET("/files/:id", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GET", "/files/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "studyhall_http_requests_total")
}
