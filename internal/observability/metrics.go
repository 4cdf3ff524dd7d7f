// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkup_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// MediaUploadsTotal counts media uploads by result.
	MediaUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_media_uploads_total",
		Help: "Total number of media uploads by result",
	}, []string{"result"})

	// NotificationEmailsTotal counts notification email deliveries by result.
	NotificationEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_notification_emails_total",
		Help: "Total number of notification emails by result",
	}, []string{"result"})

	// EngagementEventsTotal counts like, dislike, and bookmark operations.
	EngagementEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_engagement_events_total",
		Help: "Total number of engagement events by kind",
	}, []string{"kind"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
