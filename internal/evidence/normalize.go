package evidence

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jonathan/assessment-engine/internal/types"
)

// Normalize validates a submission against a definition and returns the
// aligned response vector. It never modifies its inputs.
func Normalize(def *types.AssessmentDefinition, sub *types.Submission) (*types.ResponseVector, error) {
	if len(sub.Responses) != def.ExpectedItemCount {
		return nil, &ShapeError{
			Message:  "response count does not match the assessment",
			Expected: strconv.Itoa(def.ExpectedItemCount),
			Got:      strconv.Itoa(len(sub.Responses)),
			Index:    -1,
		}
	}

	entries := make([]types.Entry, len(sub.Responses))
	for i, resp := range sub.Responses {
		item := &def.Items[i]
		if err := checkResponse(def, item, i, resp); err != nil {
			return nil, err
		}
		entries[i] = types.Entry{
			Index:          i,
			ItemID:         item.ID,
			Kind:           item.Kind,
			Value:          resp.Value,
			ResponseTimeMs: copyFloat(resp.ResponseTimeMs),
			Timestamp:      resp.Timestamp,
		}
	}

	telemetry, err := checkTelemetry(sub.Telemetry)
	if err != nil {
		return nil, err
	}

	return &types.ResponseVector{
		AssessmentID: def.ID,
		Entries:      entries,
		Telemetry:    telemetry,
	}, nil
}

// Check verifies that a response vector still matches def. Components that
// accept vectors directly use it to guard against hand-built input.
func Check(def *types.AssessmentDefinition, vec *types.ResponseVector) error {
	if len(vec.Entries) != len(def.Items) {
		return &ShapeError{
			Message:  "response vector does not match the assessment",
			Expected: strconv.Itoa(len(def.Items)),
			Got:      strconv.Itoa(len(vec.Entries)),
			Index:    -1,
		}
	}
	for i, e := range vec.Entries {
		if e.ItemID != def.Items[i].ID {
			return &ShapeError{
				Message:  "entry is not aligned with the assessment items",
				Expected: def.Items[i].ID,
				Got:      e.ItemID,
				Index:    i,
			}
		}
	}
	return nil
}

func checkResponse(def *types.AssessmentDefinition, item *types.ItemSpec, i int, resp types.RawResponse) error {
	if resp.QuestionID != "" && resp.QuestionID != item.ID {
		return &ShapeError{
			Message:  "question id does not match the item at this position",
			Expected: item.ID,
			Got:      resp.QuestionID,
			Index:    i,
		}
	}

	if resp.ResponseTimeMs != nil {
		rt := *resp.ResponseTimeMs
		if math.IsNaN(rt) || math.IsInf(rt, 0) || rt < 0 {
			return &RangeError{Message: fmt.Sprintf("response time %g ms is not a non-negative number", rt), ItemID: item.ID, Index: i}
		}
	}

	v := resp.Value
	if v.Kind == types.ValueMissing {
		return &ShapeError{Message: "response has no value", Expected: expectedKind(item), Got: "null", Index: i}
	}

	if item.UsesOptions() {
		if v.Kind != types.ValueOption {
			return &ShapeError{Message: "value kind does not match the item", Expected: expectedKind(item), Got: "number " + v.String(), Index: i}
		}
		if !item.HasOption(v.Option) {
			return &RangeError{Message: fmt.Sprintf("option %s is not one of %v", v.String(), item.Options), ItemID: item.ID, Index: i}
		}
		return nil
	}

	if v.Kind != types.ValueNumber {
		return &ShapeError{Message: "value kind does not match the item", Expected: expectedKind(item), Got: "option " + v.String(), Index: i}
	}
	n := v.Number
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return &RangeError{Message: "value is not a finite number", ItemID: item.ID, Index: i}
	}

	if item.Kind == types.ItemTimeEstimate {
		if n < 0 {
			return &RangeError{Message: fmt.Sprintf("time estimate %g is negative", n), ItemID: item.ID, Index: i}
		}
		if item.MaxValue > 0 && n > item.MaxValue {
			return &RangeError{Message: fmt.Sprintf("time estimate %g exceeds the maximum %g", n, item.MaxValue), ItemID: item.ID, Index: i}
		}
		return nil
	}

	if n != math.Trunc(n) {
		return &RangeError{Message: fmt.Sprintf("rating %g is not a whole number", n), ItemID: item.ID, Index: i}
	}
	if !def.Scale.Contains(n) {
		return &RangeError{Message: fmt.Sprintf("rating %g is outside the scale %g-%g", n, def.Scale.Min, def.Scale.Max), ItemID: item.ID, Index: i}
	}
	return nil
}

func checkTelemetry(in map[string]float64) (map[string]float64, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(in))
	for id, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, &RangeError{Message: fmt.Sprintf("telemetry %s value %g is not a non-negative number", id, v), Index: -1}
		}
		out[id] = v
	}
	return out, nil
}

func expectedKind(item *types.ItemSpec) string {
	switch {
	case item.UsesOptions():
		return fmt.Sprintf("option of %v", item.Options)
	case item.Kind == types.ItemTimeEstimate:
		return "time estimate"
	default:
		return "rating"
	}
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
