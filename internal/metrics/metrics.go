// Package metrics exposes Prometheus collectors for the HTTP layer and the
// validation engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintech_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintech_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	validationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintech_validation_rejections_total",
			Help: "Credit request rejections by country and rule type.",
		},
		[]string{"country", "rule_type"},
	)

	creditRequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintech_credit_requests_created_total",
			Help: "Credit requests accepted by country.",
		},
		[]string{"country"},
	)
)

// RecordRejection counts one validation rejection.
func RecordRejection(country, ruleType string) {
	validationRejections.WithLabelValues(country, ruleType).Inc()
}

// RecordCreditRequestCreated counts one accepted credit request.
func RecordCreditRequestCreated(country string) {
	creditRequestsCreated.WithLabelValues(country).Inc()
}

// Middleware instruments each request with a counter and a latency histogram.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
