package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type TallyMetrics struct {
	PublishedBallots       metrics.Gauge
	ComputeDurationSeconds metrics.Histogram
}

func (m *TallyMetrics) SetPublishedBallots(total uint64) {
	m.PublishedBallots.Set(float64(total))
}

func (m *TallyMetrics) ObserveComputeDuration(seconds float64) {
	m.ComputeDurationSeconds.Observe(seconds)
}

func PromTallyMetrics() *TallyMetrics {
	return &TallyMetrics{
		PublishedBallots: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: TallySubsystem,
			Name:      "published_ballots",
			Help:      "Number of published ballots in the last tallied round.",
		}, []string{}),
		ComputeDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: TallySubsystem,
			Name:      "compute_duration_seconds",
		}, []string{}),
	}
}

func NopTallyMetrics() *TallyMetrics {
	return &TallyMetrics{
		PublishedBallots:       discard.NewGauge(),
		ComputeDurationSeconds: discard.NewHistogram(),
	}
}
