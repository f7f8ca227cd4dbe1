package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/studyhall/server/internal/quota"
)

const namespace = "studyhall"

// Collector holds the server's Prometheus metrics.
type Collector struct {
	QuotaDecisions  *prometheus.CounterVec
	LedgerErrors    *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetentionPruned prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers metrics on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		QuotaDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_decisions_total",
				Help:      "Metered capability checks by outcome",
			},
			[]string{"capability", "tier", "outcome"},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_errors_total",
				Help:      "Usage ledger store failures by operation",
			},
			[]string{"operation"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		RetentionPruned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_records_pruned_total",
				Help:      "Usage records removed by the retention job",
			},
		),
		gatherer: gatherer,
	}
}

// implements ledger.Observer
func (c *Collector) ObserveDecision(capability quota.Capability, tier quota.Tier, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}

	c.QuotaDecisions.WithLabelValues(string(capability), string(tier), outcome).Inc()
}

func (c *Collector) ObserveError(operation string) {
	c.LedgerErrors.WithLabelValues(operation).Inc()
}

// Middleware records request counts and latency by route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		c.RequestsTotal.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.RequestDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
