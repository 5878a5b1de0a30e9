package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadBody indicates a request body that could not be decoded
type ErrBadBody struct {
	Cause error
}

func (e *ErrBadBody) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Cause)
}

func (e *ErrBadBody) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var unknown *pipeline.UnknownAssessmentError
	var validation *ErrValidation
	var badBody *ErrBadBody
	switch {
	case evidence.IsRejection(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &badBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names the error class reported next to the message.
func errorKind(err error) string {
	var validation *ErrValidation
	var badBody *ErrBadBody
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &badBody):
		return "bad_request"
	default:
		return pipeline.ErrorKind(err)
	}
}
