package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDefinition = `{
	"id": "mini",
	"version": "1.0.0",
	"name": "Mini",
	"family": "likert",
	"expected_item_count": 1,
	"scale": {"min": 1, "max": 5},
	"items": [{"id": "q1", "kind": "likert"}],
	"dimensions": [{"id": "d1", "name": "D1", "window": {"start": 0, "end": 1}}],
	"overall": {"mode": "mean"},
	"levels": [{"min": 0, "level": "low"}],
	"profiles": [{"key": "p", "label": "P"}],
	"classification": {"mode": "cascade", "cascade": {"metric": "overall", "bands": [{"min": 3, "profile": "p"}], "default": "p"}},
	"validity": {"score_max": 10, "weights": {}, "tiers": {"invalid": {}, "questionable": {}}},
	"insights": {"high": 75, "low": 40, "dimensions": []}
}`

func TestSchemas_AreValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(DefinitionSchema()), &v))
	assert.Equal(t, "AssessmentDefinition", v["title"])

	require.NoError(t, json.Unmarshal([]byte(SubmissionSchema()), &v))
	assert.Equal(t, "Submission", v["title"])
}

func TestValidateDefinition_Minimal(t *testing.T) {
	err := ValidateDefinition([]byte(minimalDefinition))
	assert.NoError(t, err)
}

func TestValidateDefinition_MissingField(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(minimalDefinition), &doc))
	delete(doc, "items")
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	err = ValidateDefinition(data)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
	assert.Contains(t, validationErr.Error(), "items")
}

func TestValidateDefinition_UnknownItemKind(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(minimalDefinition), &doc))
	doc["items"] = []any{map[string]any{"id": "q1", "kind": "essay"}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	err = ValidateDefinition(data)
	require.Error(t, err)
	_, ok := err.(*ValidationError)
	assert.True(t, ok, "error should be ValidationError type")
}

func TestValidateDefinition_UnknownTopLevelField(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(minimalDefinition), &doc))
	doc["scoring_script"] = "return 1"
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.Error(t, ValidateDefinition(data))
}

func TestValidateDefinition_MalformedJSON(t *testing.T) {
	err := ValidateDefinition([]byte("{ invalid json }"))
	require.Error(t, err)

	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "malformed input should surface as SchemaLoadError")
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name:      "numbers and options",
			json:      `{"assessment_id": "a", "responses": [{"value": 3}, {"value": "B", "response_time_ms": 4200}]}`,
			wantError: false,
		},
		{
			name:      "with telemetry",
			json:      `{"assessment_id": "a", "responses": [{"value": 1}], "telemetry": {"screen_time_hours": 6.5}}`,
			wantError: false,
		},
		{
			name:      "missing assessment id",
			json:      `{"responses": []}`,
			wantError: true,
		},
		{
			name:      "boolean value",
			json:      `{"assessment_id": "a", "responses": [{"value": true}]}`,
			wantError: true,
		},
		{
			name:      "non numeric telemetry",
			json:      `{"assessment_id": "a", "responses": [], "telemetry": {"pickups": "many"}}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission([]byte(tt.json))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "ok"}`))

	err := ValidateJSONString(schema, `{"other": 1}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.NotEmpty(t, validationErr.Errors[0].Field)
	assert.Contains(t, validationErr.Error(), "name")
}
