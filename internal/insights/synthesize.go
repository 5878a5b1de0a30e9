// Package insights turns dimension scores into categorized statements and recommendations.
package insights

import (
	"github.com/jonathan/assessment-engine/internal/types"
)

// Band returns the insight band of a normalized score.
func Band(spec *types.InsightSpec, normalized float64) types.InsightBand {
	switch {
	case normalized >= spec.High:
		return types.BandStrength
	case normalized < spec.Low:
		return types.BandChallenge
	default:
		return types.BandOpportunity
	}
}

// Synthesize categorizes every dimension of scores in declaration order and
// collects the matching recommendations. When the verdict is not valid the
// definition's validity note for that tier is added as a caveat.
func Synthesize(def *types.AssessmentDefinition, scores *types.ScoreSet, verdict *types.ValidityVerdict) types.Insights {
	out := types.Insights{
		Strengths:       []types.Insight{},
		Challenges:      []types.Insight{},
		Opportunities:   []types.Insight{},
		Recommendations: []types.Recommendation{},
		Caveats:         []string{},
	}
	spec := &def.Insights

	for _, d := range scores.Dimensions {
		table, ok := def.DimensionInsight(d.Dimension)
		if !ok {
			continue
		}
		band := Band(spec, d.Normalized)
		statement, recs := pick(table, band)
		insight := types.Insight{Dimension: d.Dimension, Band: band, Statement: statement}

		switch band {
		case types.BandStrength:
			out.Strengths = append(out.Strengths, insight)
		case types.BandChallenge:
			out.Challenges = append(out.Challenges, insight)
		default:
			out.Opportunities = append(out.Opportunities, insight)
		}
		for _, text := range recs {
			out.Recommendations = append(out.Recommendations, types.Recommendation{
				Dimension: d.Dimension,
				Band:      band,
				Text:      text,
			})
		}
	}

	if verdict != nil && verdict.Reliability != types.ReliabilityValid {
		if note := spec.ValidityNotes[string(verdict.Reliability)]; note != "" {
			out.Caveats = append(out.Caveats, note)
		}
	}
	return out
}

func pick(table *types.DimensionInsights, band types.InsightBand) (string, []string) {
	switch band {
	case types.BandStrength:
		return table.Statements.Strength, table.Recommendations.Strength
	case types.BandChallenge:
		return table.Statements.Challenge, table.Recommendations.Challenge
	default:
		return table.Statements.Opportunity, table.Recommendations.Opportunity
	}
}
