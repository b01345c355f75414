package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Campaign processing metrics
	DropsDelivered     prometheus.Counter
	DropsFailed        prometheus.Counter
	ProcessingDuration prometheus.Histogram
	CampaignRuns       *prometheus.CounterVec

	// Rate limiter metrics
	RateLimitRejections *prometheus.CounterVec
	CallWindowRejects   prometheus.Counter

	// Outbox metrics
	OutboxEventsProcessed prometheus.Counter
	OutboxEventsFailed    prometheus.Counter

	// Billing metrics
	BillingEvents *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DropsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_delivered_total",
			Help:      "Total number of voicemail drops accepted by the delivery provider",
		}),
		DropsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_failed_total",
			Help:      "Total number of voicemail drops rejected by the delivery provider",
		}),
		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "campaign_processing_duration_seconds",
			Help:      "Time spent processing a campaign run",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CampaignRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_runs_total",
			Help:      "Total number of campaign processing runs",
		}, []string{"status"}),
		RateLimitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}, []string{"class"}),
		CallWindowRejects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_window_rejections_total",
			Help:      "Total number of send requests rejected outside permitted calling hours",
		}),
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully published outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of outbox events that failed publishing",
		}),
		BillingEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_events_total",
			Help:      "Total number of billing webhook events received",
		}, []string{"type", "status"}),
	}
}
