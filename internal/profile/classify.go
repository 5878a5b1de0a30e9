// Package profile assigns a discrete profile to a score set.
package profile

import (
	"math"
	"sort"

	"github.com/jonathan/assessment-engine/internal/scoring"
	"github.com/jonathan/assessment-engine/internal/types"
)

// Interval is one half-open cascade band [Lo, Hi) over the cascade metric.
type Interval struct {
	Lo      float64
	Hi      float64
	Profile string
}

// Contains reports whether v lies in [Lo, Hi).
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v < iv.Hi
}

// Bands returns the cascade intervals of def from the highest band down to
// the default. They partition the real line. Rank definitions have no bands.
func Bands(def *types.AssessmentDefinition) []Interval {
	cascade := def.Classification.Cascade
	if def.Classification.Mode != types.ClassifyCascade || cascade == nil {
		return nil
	}
	out := make([]Interval, 0, len(cascade.Bands)+1)
	hi := math.Inf(1)
	for _, b := range cascade.Bands {
		out = append(out, Interval{Lo: b.Min, Hi: hi, Profile: b.Profile})
		hi = b.Min
	}
	return append(out, Interval{Lo: math.Inf(-1), Hi: hi, Profile: cascade.Default})
}

// Classify assigns exactly one profile of def to scores. It never fails for a
// checked definition and a score set produced from it.
func Classify(def *types.AssessmentDefinition, scores *types.ScoreSet) types.ProfileResult {
	var res types.ProfileResult
	switch def.Classification.Mode {
	case types.ClassifyRank:
		res = classifyRank(def, scores)
	default:
		res = classifyCascade(def, scores)
	}

	res.Mode = def.Classification.Mode
	if p, ok := def.Profile(res.Key); ok {
		res.Label = p.Label
	}
	if res.Secondary != "" {
		if p, ok := def.Profile(res.Secondary); ok {
			res.SecondaryLabel = p.Label
		}
	}
	return res
}

func classifyCascade(def *types.AssessmentDefinition, scores *types.ScoreSet) types.ProfileResult {
	cascade := def.Classification.Cascade
	metric, _ := scores.Get(cascade.Metric)
	r, _ := def.ScoreRange(cascade.Metric)
	v := metric.Score

	res := types.ProfileResult{
		Key:        cascade.Default,
		Percentile: metric.Normalized,
		Ranked:     rankDimensions(def, scores, nil),
	}

	bands := Bands(def)
	for i, iv := range bands {
		if !iv.Contains(v) {
			continue
		}
		res.Key = iv.Profile
		lo, hi := iv.Lo, iv.Hi
		if math.IsInf(lo, -1) {
			lo = r.Min
		}
		if math.IsInf(hi, 1) {
			hi = r.Max
		}
		res.Confidence = bandPosition(v, lo, hi)
		// the adjacent band the score is closest to
		switch {
		case i > 0 && (i == len(bands)-1 || hi-v <= v-lo):
			res.Secondary = bands[i-1].Profile
		case i < len(bands)-1:
			res.Secondary = bands[i+1].Profile
		}
		break
	}
	return res
}

func classifyRank(def *types.AssessmentDefinition, scores *types.ScoreSet) types.ProfileResult {
	rank := def.Classification.Rank
	ranked := rankDimensions(def, scores, rank.Dimensions)

	res := types.ProfileResult{Key: rank.Default, Ranked: ranked}
	if len(ranked) == 0 {
		return res
	}

	primary := ranked[0]
	res.Percentile = primary.Normalized
	res.Confidence = primary.Normalized
	if len(ranked) > 1 {
		res.Confidence = clamp(primary.Normalized-ranked[1].Normalized, 0, 100)
		res.Secondary = rank.Profiles[ranked[1].Dimension]
	}

	key, ok := rank.Profiles[primary.Dimension]
	if !ok {
		return res
	}
	if rank.MinMargin > 0 && len(ranked) > 1 && res.Confidence < rank.MinMargin {
		return res
	}
	res.Key = key
	return res
}

// rankDimensions orders the selected dimensions (all when only is nil) by
// score, highest first. Ties keep declaration order.
func rankDimensions(def *types.AssessmentDefinition, scores *types.ScoreSet, only []string) []types.RankedDimension {
	include := func(string) bool { return true }
	if only != nil {
		set := make(map[string]bool, len(only))
		for _, id := range only {
			set[id] = true
		}
		include = func(id string) bool { return set[id] }
	}

	out := make([]types.RankedDimension, 0, len(def.Dimensions))
	for i := range def.Dimensions {
		id := def.Dimensions[i].ID
		if !include(id) {
			continue
		}
		d, ok := scores.Get(id)
		if !ok {
			continue
		}
		out = append(out, types.RankedDimension{Dimension: id, Score: d.Score, Normalized: d.Normalized})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// bandPosition returns how far v sits into [lo, hi] as 0-100.
func bandPosition(v, lo, hi float64) float64 {
	if hi <= lo {
		return 100
	}
	return scoring.Percent(v, types.Scale{Min: lo, Max: hi})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
