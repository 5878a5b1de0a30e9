package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/types"
)

// sample returns the value of the series of family name whose labels match want.
func sample(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if want[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched != len(want) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	res := &types.Result{Validity: types.ValidityVerdict{Reliability: types.ReliabilityQuestionable}}
	m.ObserveRun("focus_check", res, nil, time.Millisecond)
	m.ObserveRun("focus_check", nil, &evidence.ShapeError{Message: "bad", Index: -1}, time.Millisecond)
	m.ObserveRun("focus_check", nil, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, sample(t, reg, "assessment_engine_scoring_runs_total",
		map[string]string{"assessment": "focus_check", "outcome": OutcomeScored}))
	assert.Equal(t, 1.0, sample(t, reg, "assessment_engine_scoring_runs_total",
		map[string]string{"assessment": "focus_check", "outcome": OutcomeRejected}))
	assert.Equal(t, 1.0, sample(t, reg, "assessment_engine_scoring_runs_total",
		map[string]string{"assessment": "focus_check", "outcome": OutcomeError}))
	assert.Equal(t, 1.0, sample(t, reg, "assessment_engine_scoring_reliability_total",
		map[string]string{"assessment": "focus_check", "reliability": "questionable"}))
	assert.Equal(t, 3.0, sample(t, reg, "assessment_engine_scoring_run_duration_seconds",
		map[string]string{"assessment": "focus_check"}))
}

func TestSetDefinitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)
	m.SetDefinitions(4)
	assert.Equal(t, 4.0, sample(t, reg, "assessment_engine_definitions_loaded", nil))
}

func TestMustNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNew(reg)
	second := MustNew(reg)

	second.ObserveRun("x", &types.Result{}, nil, 0)
	first.ObserveRun("x", &types.Result{}, nil, 0)
	assert.Equal(t, 2.0, sample(t, reg, "assessment_engine_scoring_runs_total",
		map[string]string{"assessment": "x", "outcome": OutcomeScored}))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("x", nil, nil, 0)
		m.SetDefinitions(1)
	})
}
