// Package metrics exposes Prometheus collectors for scoring activity.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/types"
)

// Outcome labels of a scoring run
const (
	OutcomeScored   = "scored"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the scoring collectors.
type Metrics struct {
	runs        *prometheus.CounterVec
	reliability *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	definitions prometheus.Gauge
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew constructs Metrics on reg. Collectors already registered under the
// same names are reused; any other registration error panics.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessment_engine",
			Subsystem: "scoring",
			Name:      "runs_total",
			Help:      "Scoring runs by assessment and outcome.",
		},
		[]string{"assessment", "outcome"},
	)
	reliability := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessment_engine",
			Subsystem: "scoring",
			Name:      "reliability_total",
			Help:      "Scored submissions by assessment and reliability tier.",
		},
		[]string{"assessment", "reliability"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assessment_engine",
			Subsystem: "scoring",
			Name:      "run_duration_seconds",
			Help:      "Time spent scoring one submission.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"assessment"},
	)
	definitions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assessment_engine",
			Subsystem: "definitions",
			Name:      "loaded",
			Help:      "Number of assessment definitions currently loaded.",
		},
	)

	collectors := []prometheus.Collector{runs, reliability, duration, definitions}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			switch target := collector.(type) {
			case *prometheus.CounterVec:
				switch target { //nolint:exhaustive
				case runs:
					runs = already.ExistingCollector.(*prometheus.CounterVec)
				case reliability:
					reliability = already.ExistingCollector.(*prometheus.CounterVec)
				}
			case *prometheus.HistogramVec:
				duration = already.ExistingCollector.(*prometheus.HistogramVec)
			case prometheus.Gauge:
				definitions = already.ExistingCollector.(prometheus.Gauge)
			}
		}
	}

	return &Metrics{
		runs:        runs,
		reliability: reliability,
		duration:    duration,
		definitions: definitions,
	}
}

// ObserveRun records one scoring run. res is nil when err is set.
func (m *Metrics) ObserveRun(assessmentID string, res *types.Result, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	switch {
	case err == nil:
		m.runs.WithLabelValues(assessmentID, OutcomeScored).Inc()
		if res != nil {
			m.reliability.WithLabelValues(assessmentID, string(res.Validity.Reliability)).Inc()
		}
	case evidence.IsRejection(err):
		m.runs.WithLabelValues(assessmentID, OutcomeRejected).Inc()
	default:
		m.runs.WithLabelValues(assessmentID, OutcomeError).Inc()
	}
	m.duration.WithLabelValues(assessmentID).Observe(elapsed.Seconds())
}

// SetDefinitions records the size of the loaded catalog.
func (m *Metrics) SetDefinitions(n int) {
	if m == nil {
		return
	}
	m.definitions.Set(float64(n))
}
