package notifications

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yechale/rollcall/internal/domain"
)

const namespace = "rollcall"

var (
	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Send attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	notificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "send_duration_seconds",
			Help:      "Time spent on a delivery API call",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "queue_depth",
			Help:      "Operations waiting in the retry queue",
		},
	)

	drainResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "drain_total",
			Help:      "Drain attempts by channel and result",
		},
		[]string{"channel", "result"},
	)
)

// RecordSendOutcome records one send attempt. Outcome is "success" or a
// FailureKind. Exported for the channel sender subpackages.
func RecordSendOutcome(channel domain.Channel, outcome string) {
	notificationsSent.WithLabelValues(string(channel), outcome).Inc()
}

// RecordSendDuration records the wall time of a delivery API call.
func RecordSendDuration(channel domain.Channel, d time.Duration) {
	notificationSendDuration.WithLabelValues(string(channel)).Observe(d.Seconds())
}

func recordQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

func recordDrainResult(channel domain.Channel, result string) {
	drainResults.WithLabelValues(string(channel), result).Inc()
}
