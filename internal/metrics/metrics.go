package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registerOnce sync.Once

	pipelineRuns      *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	sessionsCreated   prometheus.Counter
	relayedSubmission prometheus.Counter
)

func ensureMetrics() {
	registerOnce.Do(func() {
		pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exidvpn",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Privacy payment pipeline runs by terminal result",
		}, []string{"result"})

		stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "exidvpn",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"})

		sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "exidvpn",
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Payment sessions created",
		})

		relayedSubmission = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "exidvpn",
			Subsystem: "relay",
			Name:      "transactions_total",
			Help:      "Client-signed transactions relayed to the ledger",
		})
	})
}

// Service exposes the gateway's operational metrics.
type Service struct{}

// New returns the metrics service. Registration happens once per process
// regardless of how many Service values exist.
func New() *Service {
	ensureMetrics()
	return &Service{}
}

// ObserveStage records the duration of one pipeline stage.
func (s *Service) ObserveStage(stage string, d time.Duration) {
	if d < 0 {
		return
	}
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncRun counts a finished pipeline run with its terminal result.
func (s *Service) IncRun(result string) {
	pipelineRuns.WithLabelValues(result).Inc()
}

// IncSessionCreated counts a created session.
func (s *Service) IncSessionCreated() {
	sessionsCreated.Inc()
}

// IncRelayedTransaction counts a relayed transaction submission.
func (s *Service) IncRelayedTransaction() {
	relayedSubmission.Inc()
}
