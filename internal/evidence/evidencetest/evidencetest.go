// Package evidencetest builds submissions for tests of the scoring components.
package evidencetest

import (
	"math/rand"

	"github.com/jonathan/assessment-engine/internal/types"
)

// Fill returns a submission answering every item of def with fn.
func Fill(def *types.AssessmentDefinition, fn func(i int, item *types.ItemSpec) types.Value) *types.Submission {
	sub := &types.Submission{
		AssessmentID: def.ID,
		Responses:    make([]types.RawResponse, len(def.Items)),
	}
	for i := range def.Items {
		sub.Responses[i] = types.RawResponse{
			QuestionID: def.Items[i].ID,
			Value:      fn(i, &def.Items[i]),
		}
	}
	return sub
}

// Uniform answers every numeric item with rating and every option item with its first option.
// Time estimates are answered exactly on target.
func Uniform(def *types.AssessmentDefinition, rating float64) *types.Submission {
	return Fill(def, func(_ int, item *types.ItemSpec) types.Value {
		switch {
		case item.UsesOptions():
			return types.OptionValue(item.Options[0])
		case item.Kind == types.ItemTimeEstimate:
			return types.NumberValue(item.Target)
		default:
			return types.NumberValue(rating)
		}
	})
}

// Random returns a valid submission with random answers, response times and telemetry.
func Random(def *types.AssessmentDefinition, rng *rand.Rand) *types.Submission {
	sub := Fill(def, func(_ int, item *types.ItemSpec) types.Value {
		return RandomValue(def, item, rng)
	})
	for i := range sub.Responses {
		rt := float64(rng.Intn(60000))
		sub.Responses[i].ResponseTimeMs = &rt
	}
	if tel := def.Validity.Telemetry; tel != nil {
		sub.Telemetry = make(map[string]float64, len(tel.Indicators))
		for _, ind := range tel.Indicators {
			sub.Telemetry[ind.ID] = rng.Float64() * (ind.Max - ind.Min) * 1.2
		}
	}
	return sub
}

// RandomValue returns a random valid answer for item.
func RandomValue(def *types.AssessmentDefinition, item *types.ItemSpec, rng *rand.Rand) types.Value {
	switch {
	case item.UsesOptions():
		return types.OptionValue(item.Options[rng.Intn(len(item.Options))])
	case item.Kind == types.ItemTimeEstimate:
		limit := item.MaxValue
		if limit == 0 {
			limit = item.Target * 3
		}
		return types.NumberValue(rng.Float64() * limit)
	default:
		steps := int(def.Scale.Max - def.Scale.Min)
		return types.NumberValue(def.Scale.Min + float64(rng.Intn(steps+1)))
	}
}

// Timed sets every response time of sub to ms.
func Timed(sub *types.Submission, ms float64) *types.Submission {
	for i := range sub.Responses {
		v := ms
		sub.Responses[i].ResponseTimeMs = &v
	}
	return sub
}
