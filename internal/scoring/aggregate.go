// Package scoring turns aligned response vectors into per-dimension scores.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/types"
)

// Aggregate computes every dimension score of def and the overall composite.
// Dimensions are returned in declaration order. Trap items never contribute.
func Aggregate(def *types.AssessmentDefinition, vec *types.ResponseVector) (*types.ScoreSet, error) {
	if err := evidence.Check(def, vec); err != nil {
		return nil, err
	}

	set := &types.ScoreSet{Dimensions: make([]types.DimensionScore, 0, len(def.Dimensions))}
	contributing := make(map[int]bool)

	for i := range def.Dimensions {
		dim := &def.Dimensions[i]

		sum, count := 0.0, 0
		for _, idx := range def.MemberIndices(dim) {
			item := &def.Items[idx]
			if item.Kind == types.ItemTrap {
				continue
			}
			v, err := ItemValue(def, dim, item, vec.Entries[idx].Value)
			if err != nil {
				return nil, err
			}
			sum += v
			count++
			contributing[idx] = true
		}
		if count == 0 {
			return nil, &definitions.ConfigError{
				AssessmentID: def.ID,
				Problems:     []string{fmt.Sprintf("dimension %q has no scorable items", dim.ID)},
			}
		}

		mean := sum / float64(count)
		r := def.DimensionRange(dim)
		normalized := Percent(mean, r)
		level := Level(def.Levels, normalized)
		set.Dimensions = append(set.Dimensions, types.DimensionScore{
			Dimension:      dim.ID,
			Name:           dim.Name,
			Raw:            mean,
			Score:          mean * dim.Factor(),
			Normalized:     normalized,
			Level:          level,
			Interpretation: interpretation(dim.Name, dim.Interpretations, level),
			ItemCount:      count,
		})
	}

	set.Overall = overall(def, set.Dimensions, len(contributing))
	return set, nil
}

// ItemValue returns the effective value of one answer for dim: option values
// or effectiveness weights are substituted, time estimates are mapped onto the
// scale by accuracy, and reversed items are mirrored.
func ItemValue(def *types.AssessmentDefinition, dim *types.DimensionSpec, item *types.ItemSpec, value types.Value) (float64, error) {
	r := def.DimensionRange(dim)

	var v float64
	switch {
	case dim.ScoringMode() == types.ScoringEffectiveness:
		w, ok := def.Effectiveness.Lookup(item.ID, value.Option, dim.ID)
		if !ok {
			return 0, &definitions.ConfigError{
				AssessmentID: def.ID,
				Problems:     []string{fmt.Sprintf("effectiveness table has no weight for (%s, %s) on dimension %q", item.ID, value.Option, dim.ID)},
			}
		}
		v = w
	case item.UsesOptions():
		ov, ok := item.OptionValues[value.Option]
		if !ok {
			return 0, &definitions.ConfigError{
				AssessmentID: def.ID,
				Problems:     []string{fmt.Sprintf("item %q has no option_value for %q", item.ID, value.Option)},
			}
		}
		v = ov
	case item.Kind == types.ItemTimeEstimate:
		return EstimateAccuracy(value.Number, item.Target, r), nil
	default:
		v = value.Number
	}

	if item.Reversed {
		v = Reverse(r, v)
	}
	return v, nil
}

// Reverse mirrors v within the scale: (max + min) - v.
func Reverse(s types.Scale, v float64) float64 {
	return (s.Max + s.Min) - v
}

// EstimateAccuracy maps a time estimate onto the scale: an exact estimate gets
// the maximum, and the value falls linearly to the minimum at 100% relative error.
func EstimateAccuracy(estimate, target float64, s types.Scale) float64 {
	if target <= 0 {
		return s.Min
	}
	relErr := math.Min(1, math.Abs(estimate-target)/target)
	return s.Max - (s.Max-s.Min)*relErr
}

// Percent maps v from the range r onto 0-100, clamped. It never returns NaN.
func Percent(v float64, r types.Scale) float64 {
	width := r.Max - r.Min
	if width <= 0 || math.IsNaN(v) {
		return 0
	}
	return clamp((v-r.Min)/width*100, 0, 100)
}

// Level returns the first level band whose minimum the normalized score reaches.
func Level(levels []types.LevelBand, normalized float64) string {
	for _, l := range levels {
		if normalized >= l.Min {
			return l.Level
		}
	}
	if len(levels) == 0 {
		return ""
	}
	return levels[len(levels)-1].Level
}

func overall(def *types.AssessmentDefinition, dims []types.DimensionScore, itemCount int) types.DimensionScore {
	var raw, score float64
	switch def.Overall.Mode {
	case types.OverallWeighted:
		for _, d := range dims {
			w := def.Overall.Weights[d.Dimension]
			raw += w * d.Raw
			score += w * d.Score
		}
	default:
		for _, d := range dims {
			raw += d.Raw
			score += d.Score
		}
		if len(dims) > 0 {
			raw /= float64(len(dims))
			score /= float64(len(dims))
		}
	}

	name := def.Overall.Name
	if name == "" {
		name = "Overall"
	}
	r, _ := def.ScoreRange(types.OverallID)
	normalized := Percent(score, r)
	level := Level(def.Levels, normalized)
	return types.DimensionScore{
		Dimension:      types.OverallID,
		Name:           name,
		Raw:            raw,
		Score:          score,
		Normalized:     normalized,
		Level:          level,
		Interpretation: interpretation(name, nil, level),
		ItemCount:      itemCount,
	}
}

func interpretation(name string, table map[string]string, level string) string {
	if text, ok := table[level]; ok && text != "" {
		return text
	}
	return fmt.Sprintf("%s: %s.", name, strings.ReplaceAll(level, "_", " "))
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
