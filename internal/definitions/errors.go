// Package definitions loads, checks and serves assessment definitions.
package definitions

import (
	"fmt"
	"strings"
)

// LoadError represents an error during file I/O or document decoding
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an internally inconsistent assessment definition.
// Every problem found in one pass is reported together.
type ConfigError struct {
	AssessmentID string
	Problems     []string
}

func (e *ConfigError) Error() string {
	id := e.AssessmentID
	if id == "" {
		id = "(unnamed)"
	}
	return fmt.Sprintf("config error in assessment %s: %s", id, strings.Join(e.Problems, "; "))
}
