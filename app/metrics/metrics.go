package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forum metrics exported to Prometheus
var (
	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "svyasa_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "svyasa_posts_deleted_total",
			Help: "Total number of posts deleted by an admin",
		},
	)

	CommentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "svyasa_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	ModerationRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svyasa_moderation_rejections_total",
			Help: "Total number of submissions rejected by the content filter",
		},
		[]string{"kind"},
	)

	FeedSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "svyasa_feed_subscriptions",
			Help: "Number of open change feed subscriptions",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "svyasa_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)
