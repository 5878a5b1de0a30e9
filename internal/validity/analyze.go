// Package validity judges how trustworthy a set of answers is.
package validity

import (
	"math"

	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/scoring"
	"github.com/jonathan/assessment-engine/internal/types"
)

// Analyze fuses trap items, contradiction pairs, response times and the
// statistical signals configured in def into one verdict. Suspicious content
// is reported, never rejected: the only error is a vector that does not match def.
func Analyze(def *types.AssessmentDefinition, vec *types.ResponseVector) (types.ValidityVerdict, error) {
	if err := evidence.Check(def, vec); err != nil {
		return types.ValidityVerdict{}, err
	}
	spec := &def.Validity

	var c types.ValidityComponents
	c.FakeGood, c.FakeBad, c.RandomCheck = countTraps(def, vec)
	c.Inconsistency = countContradictions(def, vec)
	c.ResponseTime = ResponseTimes(vec, spec.Timing)

	values := selfReportValues(def, vec)
	if len(values) >= 2 {
		c.SelfReportVariance = variance(values)
	}
	if sl := spec.StraightLining; sl != nil && len(values) >= sl.MinItems {
		c.StraightLining = c.SelfReportVariance < sl.MaxVariance
	}

	var divergenceFlag string
	if tel := spec.Telemetry; tel != nil {
		divergenceFlag = crossCheck(def, vec, tel, &c)
	}

	verdict := types.ValidityVerdict{
		ScoreMax:   spec.ScoreMax,
		Components: c,
	}
	verdict.Score = composite(spec, &c, divergenceFlag != "")
	verdict.Flags = flags(spec.FlagThresholds.WithDefaults(), &c, divergenceFlag)
	verdict.TotalFlags = c.FakeGood + c.FakeBad + c.Inconsistency + c.RandomCheck
	if c.StraightLining {
		verdict.TotalFlags++
	}
	if divergenceFlag != "" {
		verdict.TotalFlags++
	}

	switch {
	case Matches(spec.Tiers.Invalid, &verdict):
		verdict.Reliability = types.ReliabilityInvalid
	case Matches(spec.Tiers.Questionable, &verdict):
		verdict.Reliability = types.ReliabilityQuestionable
	default:
		verdict.Reliability = types.ReliabilityValid
	}
	verdict.ReliabilityLabel = spec.Labels.Label(verdict.Reliability)
	return verdict, nil
}

// Suspicious reports whether the answer to a trap item is in its suspicious direction.
func Suspicious(trap *types.TrapSpec, value types.Value) bool {
	switch {
	case len(trap.SuspiciousOptions) > 0:
		return value.Kind == types.ValueOption && containsString(trap.SuspiciousOptions, value.Option)
	case len(trap.SuspiciousValues) > 0:
		return value.Kind == types.ValueNumber && containsFloat(trap.SuspiciousValues, value.Number)
	case len(trap.ExpectedOptions) > 0:
		return value.Kind != types.ValueOption || !containsString(trap.ExpectedOptions, value.Option)
	case len(trap.ExpectedValues) > 0:
		return value.Kind != types.ValueNumber || !containsFloat(trap.ExpectedValues, value.Number)
	default:
		return false
	}
}

func countTraps(def *types.AssessmentDefinition, vec *types.ResponseVector) (fakeGood, fakeBad, randomCheck int) {
	var limit [3]int
	var count [3]int
	slot := map[types.TrapType]int{types.TrapFakeGood: 0, types.TrapFakeBad: 1, types.TrapRandomCheck: 2}

	for i := range def.Items {
		trap := def.Items[i].Trap
		if def.Items[i].Kind != types.ItemTrap || trap == nil {
			continue
		}
		s, ok := slot[trap.Type]
		if !ok {
			continue
		}
		limit[s]++
		if Suspicious(trap, vec.Entries[i].Value) {
			count[s]++
		}
	}
	for s := range count {
		count[s] = min(count[s], limit[s])
	}
	return count[0], count[1], count[2]
}

func countContradictions(def *types.AssessmentDefinition, vec *types.ResponseVector) int {
	n := 0
	for _, pair := range def.Validity.ContradictionPairs {
		if len(pair.Items) != 2 {
			continue
		}
		a, b := def.ItemIndex(pair.Items[0]), def.ItemIndex(pair.Items[1])
		if a < 0 || b < 0 {
			continue
		}
		if agrees(pair, vec.Entries[a].Value) && agrees(pair, vec.Entries[b].Value) {
			n++
		}
	}
	return n
}

func agrees(pair types.ContradictionPair, v types.Value) bool {
	if len(pair.AgreeOptions) > 0 {
		return v.Kind == types.ValueOption && containsString(pair.AgreeOptions, v.Option)
	}
	return v.Kind == types.ValueNumber && v.Number >= pair.AgreeMin
}

// ResponseTimes summarizes the response times present in vec and classifies
// their mean against the timing bounds.
func ResponseTimes(vec *types.ResponseVector, timing types.TimingSpec) types.ResponseTimeStats {
	var times []float64
	for _, e := range vec.Entries {
		if e.ResponseTimeMs != nil {
			times = append(times, *e.ResponseTimeMs)
		}
	}
	stats := types.ResponseTimeStats{TimedItems: len(times), Profile: types.TimeUnknown}
	if len(times) == 0 {
		return stats
	}

	stats.MeanMs = mean(times)
	stats.SDMs = math.Sqrt(variance(times))

	tooFast, tooSlow := timing.Bounds()
	switch {
	case stats.MeanMs < tooFast:
		stats.Profile = types.TimeTooFast
	case stats.MeanMs > tooSlow:
		stats.Profile = types.TimeTooSlow
	default:
		stats.Profile = types.TimeNormal
	}
	return stats
}

// selfReportValues returns the raw ratings of every non-trap Likert item.
func selfReportValues(def *types.AssessmentDefinition, vec *types.ResponseVector) []float64 {
	var out []float64
	for i := range def.Items {
		if def.Items[i].Kind != types.ItemLikert {
			continue
		}
		if v := vec.Entries[i].Value; v.Kind == types.ValueNumber {
			out = append(out, v.Number)
		}
	}
	return out
}

// crossCheck compares the self-reported usage index with the observed
// telemetry index and returns the divergence flag, if any.
func crossCheck(def *types.AssessmentDefinition, vec *types.ResponseVector, tel *types.TelemetrySpec, c *types.ValidityComponents) string {
	var observed []float64
	for _, ind := range tel.Indicators {
		v, ok := vec.Telemetry[ind.ID]
		if !ok {
			continue
		}
		observed = append(observed, scoring.Percent(v, types.Scale{Min: ind.Min, Max: ind.Max}))
	}

	var reported []float64
	for _, id := range tel.SelfReportItems {
		idx := def.ItemIndex(id)
		if idx < 0 {
			continue
		}
		if v := vec.Entries[idx].Value; v.Kind == types.ValueNumber {
			reported = append(reported, v.Number)
		}
	}
	if len(observed) == 0 || len(reported) == 0 {
		return ""
	}

	self := scoring.Percent(mean(reported), def.Scale)
	behavioral := mean(observed)
	c.SelfReportIndex = &self
	c.BehavioralIndex = &behavioral
	c.TelemetryDivergence = self - behavioral

	switch {
	case self < behavioral-tel.DivergenceThreshold:
		return types.FlagUnderreporting
	case self > behavioral+tel.DivergenceThreshold:
		return types.FlagOverclaiming
	default:
		return ""
	}
}

func composite(spec *types.ValiditySpec, c *types.ValidityComponents, diverged bool) float64 {
	w := spec.Weights
	score := w.FakeGood*float64(c.FakeGood) +
		w.FakeBad*float64(c.FakeBad) +
		w.Inconsistency*float64(c.Inconsistency) +
		w.RandomCheck*float64(c.RandomCheck)
	if c.ResponseTime.Profile.Abnormal() {
		score += w.TimeProfile
	}
	if c.StraightLining {
		score += w.StraightLining
	}
	if diverged {
		score += w.TelemetryDivergence
	}
	return math.Min(spec.ScoreMax, score)
}

func flags(th types.FlagThresholds, c *types.ValidityComponents, divergenceFlag string) []string {
	out := []string{}
	if c.FakeGood >= th.FakeGood {
		out = append(out, types.FlagSocialDesirability)
	}
	if c.FakeBad >= th.FakeBad {
		out = append(out, types.FlagExaggeratedDistress)
	}
	if c.Inconsistency >= th.Inconsistency {
		out = append(out, types.FlagInconsistent)
	}
	if c.RandomCheck >= th.RandomCheck {
		out = append(out, types.FlagRandomResponding)
	}
	switch c.ResponseTime.Profile {
	case types.TimeTooFast:
		out = append(out, types.FlagTooFast)
	case types.TimeTooSlow:
		out = append(out, types.FlagTooSlow)
	}
	if c.StraightLining {
		out = append(out, types.FlagStraightLining)
	}
	if divergenceFlag != "" {
		out = append(out, divergenceFlag)
	}
	return out
}

// Matches reports whether any criterion set in rule is met by v. An empty rule never matches.
func Matches(rule types.TierRule, v *types.ValidityVerdict) bool {
	c := &v.Components
	switch {
	case rule.TotalFlags > 0 && v.TotalFlags >= rule.TotalFlags:
		return true
	case rule.FakeGood > 0 && c.FakeGood >= rule.FakeGood:
		return true
	case rule.FakeBad > 0 && c.FakeBad >= rule.FakeBad:
		return true
	case rule.Inconsistency > 0 && c.Inconsistency >= rule.Inconsistency:
		return true
	case rule.RandomCheck > 0 && c.RandomCheck >= rule.RandomCheck:
		return true
	case rule.Score > 0 && v.Score >= rule.Score:
		return true
	case rule.TimeProfileAbnormal && c.ResponseTime.Profile.Abnormal():
		return true
	}
	for _, f := range rule.Flags {
		if containsString(v.Flags, f) {
			return true
		}
	}
	return false
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the population variance of xs.
func variance(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs))
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func containsFloat(list []float64, f float64) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
