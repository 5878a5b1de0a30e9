package pipeline

import "fmt"

// UnknownAssessmentError is returned when a submission names an assessment that is not loaded.
type UnknownAssessmentError struct {
	ID string
}

func (e *UnknownAssessmentError) Error() string {
	if e.ID == "" {
		return "unknown assessment: submission has no assessment_id"
	}
	return fmt.Sprintf("unknown assessment %q", e.ID)
}
