package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "telegram_crm"

var (
	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "webhook_requests_total",
		Help:      "Total number of webhook requests by outcome",
	}, []string{"status"})

	ProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "webhook_processing_duration_seconds",
		Help:      "Duration of webhook request processing",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "webhook_store_failures_total",
		Help:      "Total number of non-duplicate update store write failures",
	})

	SheetAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sheet_append_failures_total",
		Help:      "Total number of failed spreadsheet appends",
	})

	ReplyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "reply_failures_total",
		Help:      "Total number of failed acknowledgment replies",
	})
)

func IncWebhookRequest(status string) {
	WebhookRequests.WithLabelValues(status).Inc()
}

func ObserveProcessing(status string, duration float64) {
	ProcessingDuration.WithLabelValues(status).Observe(duration)
}

func IncStoreFailure() {
	StoreFailures.Inc()
}

func IncSheetAppendFailure() {
	SheetAppendFailures.Inc()
}

func IncReplyFailure() {
	ReplyFailures.Inc()
}
