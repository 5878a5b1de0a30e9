// Package types provides type definitions for structured data used throughout the assessment engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueKind tells which member of a Value is populated.
type ValueKind int

// Value kinds
const (
	ValueMissing ValueKind = iota
	ValueNumber
	ValueOption
)

// Value is a raw answer: a number (Likert rating, time estimate) or a discrete option id.
// On the wire it is a JSON number or a JSON string.
type Value struct {
	Kind   ValueKind
	Number float64
	Option string
}

// NumberValue returns a numeric Value.
func NumberValue(v float64) Value {
	return Value{Kind: ValueNumber, Number: v}
}

// OptionValue returns an option Value.
func OptionValue(option string) Value {
	return Value{Kind: ValueOption, Option: option}
}

// String renders the value for error messages.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueOption:
		return strconv.Quote(v.Option)
	default:
		return "<missing>"
	}
}

// MarshalJSON encodes the value as a JSON number, string or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Number)
	case ValueOption:
		return json.Marshal(v.Option)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = OptionValue(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("value must be a number or a string: %w", err)
	}
	*v = NumberValue(n)
	return nil
}

// Submission is the raw evidence of one respondent for one assessment.
type Submission struct {
	AssessmentID string             `json:"assessment_id" validate:"required"`
	Responses    []RawResponse      `json:"responses"`
	Telemetry    map[string]float64 `json:"telemetry,omitempty"`
}

// RawResponse is one answer as received from a quiz flow or API request.
type RawResponse struct {
	QuestionID     string     `json:"question_id,omitempty"`
	Value          Value      `json:"value"`
	ResponseTimeMs *float64   `json:"response_time_ms,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// ResponseVector is a validated submission aligned 1:1 with a definition's items.
type ResponseVector struct {
	AssessmentID string             `json:"assessment_id"`
	Entries      []Entry            `json:"entries"`
	Telemetry    map[string]float64 `json:"telemetry,omitempty"`
}

// Entry is one aligned answer.
type Entry struct {
	Index          int        `json:"index"`
	ItemID         string     `json:"item_id"`
	Kind           ItemKind   `json:"kind"`
	Value          Value      `json:"value"`
	ResponseTimeMs *float64   `json:"response_time_ms,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}
