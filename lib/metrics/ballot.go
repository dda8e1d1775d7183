package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type BallotMetrics struct {
	DraftsTotal          metrics.Counter
	PublishesTotal       metrics.Counter
	PublishFailuresTotal metrics.Counter
}

func (m *BallotMetrics) DraftSaved() {
	m.DraftsTotal.Add(1)
}

func (m *BallotMetrics) Published() {
	m.PublishesTotal.Add(1)
}

func (m *BallotMetrics) PublishFailed() {
	m.PublishFailuresTotal.Add(1)
}

func PromBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		DraftsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "drafts_total",
			Help:      "Total number of saved drafts.",
		}, []string{}),
		PublishesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "publishes_total",
			Help:      "Total number of published ballots.",
		}, []string{}),
		PublishFailuresTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BallotSubsystem,
			Name:      "publish_failures_total",
			Help:      "Total number of rejected publish attempts.",
		}, []string{}),
	}
}

func NopBallotMetrics() *BallotMetrics {
	return &BallotMetrics{
		DraftsTotal:          discard.NewCounter(),
		PublishesTotal:       discard.NewCounter(),
		PublishFailuresTotal: discard.NewCounter(),
	}
}
