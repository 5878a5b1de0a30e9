package evidence

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/evidence/evidencetest"
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

func TestNormalize_Aligned(t *testing.T) {
	def := builtin(t, "technology_integration")
	sub := evidencetest.Timed(evidencetest.Uniform(def, 4), 5000)

	vec, err := Normalize(def, sub)
	require.NoError(t, err)
	require.Len(t, vec.Entries, 25)

	assert.Equal(t, "technology_integration", vec.AssessmentID)
	for i, e := range vec.Entries {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, def.Items[i].ID, e.ItemID)
		assert.Equal(t, types.NumberValue(4), e.Value)
		require.NotNil(t, e.ResponseTimeMs)
		assert.Equal(t, 5000.0, *e.ResponseTimeMs)
	}

	// response times are copied, not shared
	*sub.Responses[0].ResponseTimeMs = 1
	assert.Equal(t, 5000.0, *vec.Entries[0].ResponseTimeMs)
}

func TestNormalize_QuestionIDsOptional(t *testing.T) {
	def := builtin(t, "technology_integration")
	sub := evidencetest.Uniform(def, 2)
	for i := range sub.Responses {
		sub.Responses[i].QuestionID = ""
	}

	vec, err := Normalize(def, sub)
	require.NoError(t, err)
	assert.Equal(t, "tb1", vec.Entries[0].ItemID)
}

func TestNormalize_ShapeErrors(t *testing.T) {
	tech := builtin(t, "technology_integration")
	lead := builtin(t, "leadership_style")

	tests := []struct {
		name   string
		def    *types.AssessmentDefinition
		modify func(sub *types.Submission) *types.Submission
		index  int
	}{
		{
			name: "too few responses",
			def:  tech,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses = sub.Responses[:24]
				return sub
			},
			index: -1,
		},
		{
			name: "too many responses",
			def:  tech,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses = append(sub.Responses, types.RawResponse{Value: types.NumberValue(3)})
				return sub
			},
			index: -1,
		},
		{
			name: "misaligned question id",
			def:  tech,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses[3].QuestionID = "tb5"
				return sub
			},
			index: 3,
		},
		{
			name: "missing value",
			def:  tech,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses[7].Value = types.Value{}
				return sub
			},
			index: 7,
		},
		{
			name: "option for rating item",
			def:  tech,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses[0].Value = types.OptionValue("A")
				return sub
			},
			index: 0,
		},
		{
			name: "number for scenario item",
			def:  lead,
			modify: func(sub *types.Submission) *types.Submission {
				sub.Responses[2].Value = types.NumberValue(2)
				return sub
			},
			index: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.modify(evidencetest.Uniform(tt.def, 3))
			vec, err := Normalize(tt.def, sub)
			require.Error(t, err)
			assert.Nil(t, vec)

			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr), "expected ShapeError, got %T", err)
			assert.Equal(t, tt.index, shapeErr.Index)
			assert.True(t, IsRejection(err))
			assert.Equal(t, "shape", Kind(err))
		})
	}
}

func TestNormalize_RangeErrors(t *testing.T) {
	tech := builtin(t, "technology_integration")
	lead := builtin(t, "leadership_style")
	wellness := builtin(t, "digital_wellness")
	negative := -5.0

	tests := []struct {
		name   string
		def    *types.AssessmentDefinition
		modify func(sub *types.Submission)
		item   string
	}{
		{
			name:   "rating above scale",
			def:    tech,
			modify: func(sub *types.Submission) { sub.Responses[0].Value = types.NumberValue(6) },
			item:   "tb1",
		},
		{
			name:   "rating below scale",
			def:    tech,
			modify: func(sub *types.Submission) { sub.Responses[1].Value = types.NumberValue(0) },
			item:   "tb2",
		},
		{
			name:   "fractional rating",
			def:    tech,
			modify: func(sub *types.Submission) { sub.Responses[2].Value = types.NumberValue(3.5) },
			item:   "tb3",
		},
		{
			name:   "NaN rating",
			def:    tech,
			modify: func(sub *types.Submission) { sub.Responses[2].Value = types.NumberValue(math.NaN()) },
			item:   "tb3",
		},
		{
			name:   "unknown option",
			def:    lead,
			modify: func(sub *types.Submission) { sub.Responses[0].Value = types.OptionValue("E") },
			item:   "ls1",
		},
		{
			name:   "negative response time",
			def:    tech,
			modify: func(sub *types.Submission) { sub.Responses[4].ResponseTimeMs = &negative },
			item:   "tb5",
		},
		{
			name:   "negative time estimate",
			def:    wellness,
			modify: func(sub *types.Submission) { sub.Responses[13].Value = types.NumberValue(-1) },
			item:   "te1",
		},
		{
			name:   "time estimate above maximum",
			def:    wellness,
			modify: func(sub *types.Submission) { sub.Responses[13].Value = types.NumberValue(601) },
			item:   "te1",
		},
		{
			name:   "negative telemetry",
			def:    wellness,
			modify: func(sub *types.Submission) { sub.Telemetry = map[string]float64{"daily_pickups": -3} },
		},
		{
			name:   "infinite telemetry",
			def:    wellness,
			modify: func(sub *types.Submission) { sub.Telemetry = map[string]float64{"screen_time_hours": math.Inf(1)} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := evidencetest.Uniform(tt.def, 3)
			tt.modify(sub)

			_, err := Normalize(tt.def, sub)
			require.Error(t, err)

			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr), "expected RangeError, got %T: %v", err, err)
			assert.Equal(t, tt.item, rangeErr.ItemID)
			assert.True(t, IsRejection(err))
			assert.Equal(t, "range", Kind(err))
		})
	}
}

func TestNormalize_AcceptsRandomValidSubmissions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, def := range definitions.MustBuiltin() {
		t.Run(def.ID, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				vec, err := Normalize(def, evidencetest.Random(def, rng))
				require.NoError(t, err)
				assert.Len(t, vec.Entries, def.ExpectedItemCount)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	def := builtin(t, "technology_integration")
	vec, err := Normalize(def, evidencetest.Uniform(def, 3))
	require.NoError(t, err)
	assert.NoError(t, Check(def, vec))

	vec.Entries[5].ItemID = "other"
	err = Check(def, vec)
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 5, shapeErr.Index)

	vec.Entries = vec.Entries[:3]
	assert.Error(t, Check(def, vec))
}

func TestIsRejection(t *testing.T) {
	assert.False(t, IsRejection(nil))
	assert.False(t, IsRejection(errors.New("boom")))
	wrapped := fmt.Errorf("scoring: %w", &RangeError{Message: "x", Index: -1})
	assert.True(t, IsRejection(wrapped))
	assert.Equal(t, "", Kind(errors.New("boom")))
}

func TestErrorMessages(t *testing.T) {
	shape := &ShapeError{Message: "response count does not match the assessment", Expected: "25", Got: "24", Index: -1}
	assert.Equal(t, "shape error: response count does not match the assessment (expected 25, got 24)", shape.Error())

	rangeErr := &RangeError{Message: "rating 6 is outside the scale 1-5", ItemID: "tb1", Index: 0}
	assert.Equal(t, "range error on item tb1 (response 0): rating 6 is outside the scale 1-5", rangeErr.Error())
}
