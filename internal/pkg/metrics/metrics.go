// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks handler latency by route and status class.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kaarshe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// ContentRequestsTotal counts content source calls by operation and outcome.
	ContentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kaarshe_content_requests_total",
			Help: "Total number of content source requests",
		},
		[]string{"operation", "outcome"},
	)

	// ContentBreakerState is 0 closed, 1 half-open, 2 open.
	ContentBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kaarshe_content_breaker_state",
			Help: "Content source circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// MailSendsTotal counts mail transport calls by provider and outcome.
	MailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kaarshe_mail_sends_total",
			Help: "Total number of mail transport send calls",
		},
		[]string{"provider", "outcome"},
	)

	// NewsletterOperationsTotal counts subscribe/unsubscribe/broadcast outcomes.
	NewsletterOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kaarshe_newsletter_operations_total",
			Help: "Total number of newsletter operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// BroadcastRecipientsTotal counts recipients whose batch was accepted by the transport.
	BroadcastRecipientsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kaarshe_broadcast_recipients_total",
			Help: "Total number of broadcast recipients in successfully sent batches",
		},
	)

	// IntakeSubmissionsTotal counts contact and speaking submissions by outcome.
	IntakeSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kaarshe_intake_submissions_total",
			Help: "Total number of form intake submissions by outcome",
		},
		[]string{"form", "outcome"},
	)

	// CachePurgedTotal counts HTTP cache entries removed by revalidation.
	CachePurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kaarshe_cache_purged_entries_total",
			Help: "Total number of HTTP cache entries purged",
		},
	)
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}

// Middleware records HTTPRequestDuration for every request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route, statusClass(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Outcome labels an error as "ok" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
