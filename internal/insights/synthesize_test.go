package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/types"
)

func builtin(t *testing.T, id string) *types.AssessmentDefinition {
	t.Helper()
	for _, def := range definitions.MustBuiltin() {
		if def.ID == id {
			return def
		}
	}
	t.Fatalf("no built-in assessment %q", id)
	return nil
}

// scoresAt gives every dimension of def the same normalized score.
func scoresAt(def *types.AssessmentDefinition, normalized float64) *types.ScoreSet {
	set := &types.ScoreSet{}
	for _, d := range def.Dimensions {
		set.Dimensions = append(set.Dimensions, types.DimensionScore{Dimension: d.ID, Normalized: normalized})
	}
	return set
}

func dimensionsOf(list []types.Insight) []string {
	out := make([]string, 0, len(list))
	for _, in := range list {
		out = append(out, in.Dimension)
	}
	return out
}

func TestBand(t *testing.T) {
	spec := &types.InsightSpec{High: 70, Low: 40}
	tests := []struct {
		normalized float64
		want       types.InsightBand
	}{
		{100, types.BandStrength},
		{70, types.BandStrength},
		{69.99, types.BandOpportunity},
		{40, types.BandOpportunity},
		{39.99, types.BandChallenge},
		{0, types.BandChallenge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Band(spec, tt.normalized), "normalized %v", tt.normalized)
	}
}

func TestSynthesize_UniformBands(t *testing.T) {
	def := builtin(t, "technology_integration")
	valid := &types.ValidityVerdict{Reliability: types.ReliabilityValid}
	ids := []string{"digital_boundaries", "mindful_usage", "tech_life_balance", "digital_wellbeing"}

	high := Synthesize(def, scoresAt(def, 85), valid)
	assert.Equal(t, ids, dimensionsOf(high.Strengths))
	assert.Empty(t, high.Challenges)
	assert.Empty(t, high.Opportunities)

	low := Synthesize(def, scoresAt(def, 10), valid)
	assert.Equal(t, ids, dimensionsOf(low.Challenges))
	assert.Equal(t, "Devices currently reach into times you would rather keep free.", low.Challenges[0].Statement)

	mid := Synthesize(def, scoresAt(def, 50), valid)
	assert.Equal(t, ids, dimensionsOf(mid.Opportunities))
	assert.Empty(t, mid.Caveats)
	assert.NotNil(t, mid.Caveats)
}

func TestSynthesize_MixedBandsKeepOrder(t *testing.T) {
	def := builtin(t, "technology_integration")
	set := &types.ScoreSet{Dimensions: []types.DimensionScore{
		{Dimension: "digital_boundaries", Normalized: 20},
		{Dimension: "mindful_usage", Normalized: 90},
		{Dimension: "tech_life_balance", Normalized: 10},
		{Dimension: "digital_wellbeing", Normalized: 55},
	}}
	out := Synthesize(def, set, nil)

	assert.Equal(t, []string{"mindful_usage"}, dimensionsOf(out.Strengths))
	assert.Equal(t, []string{"digital_boundaries", "tech_life_balance"}, dimensionsOf(out.Challenges))
	assert.Equal(t, []string{"digital_wellbeing"}, dimensionsOf(out.Opportunities))

	require.NotEmpty(t, out.Recommendations)
	first := out.Recommendations[0]
	assert.Equal(t, "digital_boundaries", first.Dimension)
	assert.Equal(t, types.BandChallenge, first.Band)
	assert.Equal(t, "Pick one device-free hour each day and protect it.", first.Text)
	assert.Equal(t, "Move chargers out of the bedroom.", out.Recommendations[1].Text)
}

func TestSynthesize_Caveats(t *testing.T) {
	def := builtin(t, "work_style_validity")
	for _, r := range []types.Reliability{types.ReliabilityQuestionable, types.ReliabilityInvalid} {
		out := Synthesize(def, scoresAt(def, 50), &types.ValidityVerdict{Reliability: r})
		require.Len(t, out.Caveats, 1, r)
		assert.Equal(t, def.Insights.ValidityNotes[string(r)], out.Caveats[0])
	}
}

func TestSynthesize_CoverageOnBuiltins(t *testing.T) {
	for _, def := range definitions.MustBuiltin() {
		for _, n := range []float64{0, 50, 100} {
			out := Synthesize(def, scoresAt(def, n), &types.ValidityVerdict{Reliability: types.ReliabilityValid})
			total := len(out.Strengths) + len(out.Challenges) + len(out.Opportunities)
			assert.Equal(t, len(def.Dimensions), total, "%s at %v", def.ID, n)
			assert.GreaterOrEqual(t, len(out.Recommendations), len(def.Dimensions), "%s at %v", def.ID, n)
			for _, list := range [][]types.Insight{out.Strengths, out.Challenges, out.Opportunities} {
				for _, in := range list {
					assert.NotEmpty(t, in.Statement, "%s/%s", def.ID, in.Dimension)
				}
			}
		}
	}
}
