package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attribute-source pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Pipeline outcomes by outcome name
	Outcomes *prometheus.CounterVec

	// Requests currently buffered waiting for a height
	Buffered prometheus.Gauge

	// Requests drained per height advancement
	DrainedPerBlock prometheus.Histogram

	LatestHeight prometheus.Gauge

	// Stage latencies: verify, deliver, relay
	StageLatency *prometheus.HistogramVec

	// Fatal errors by stage
	StageErrors *prometheus.CounterVec
}

// New registers the pipeline metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "asnode_pipeline_outcomes_total",
			Help: "Total processed requests by pipeline outcome",
		}, []string{"outcome"}),

		Buffered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "asnode_pending_buffered",
			Help: "Messages buffered since start minus messages drained",
		}),

		DrainedPerBlock: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "asnode_pending_drained_per_block",
			Help:    "Number of requests drained by one height advancement",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		LatestHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "asnode_ledger_latest_height",
			Help: "Latest ledger height observed by the header watcher",
		}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asnode_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),

		StageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "asnode_stage_errors_total",
			Help: "Fatal pipeline errors by stage",
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncBuffered() {
	if m != nil {
		m.Buffered.Inc()
	}
}

// ObserveDrained records one advancement and lowers the buffered gauge.
func (m *Metrics) ObserveDrained(n int) {
	if m != nil {
		m.DrainedPerBlock.Observe(float64(n))
		m.Buffered.Sub(float64(n))
	}
}

func (m *Metrics) SetLatestHeight(height int64) {
	if m != nil {
		m.LatestHeight.Set(float64(height))
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementStageError(stage string) {
	if m != nil {
		m.StageErrors.WithLabelValues(stage).Inc()
	}
}
