package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/assessment-engine/internal/pipeline"
	"github.com/jonathan/assessment-engine/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// AssessmentSummary is one entry of GET /assessments
type AssessmentSummary struct {
	ID         string       `json:"id"`
	Version    string       `json:"version"`
	Name       string       `json:"name"`
	Family     types.Family `json:"family"`
	ItemCount  int          `json:"item_count"`
	Dimensions []string     `json:"dimensions"`
	Profiles   []string     `json:"profiles"`
}

// BatchRequest is the body of POST /assessments/{id}/score/batch
type BatchRequest struct {
	Submissions []*types.Submission `json:"submissions" validate:"required,min=1,dive,required"`
	Workers     int                 `json:"workers,omitempty" validate:"gte=0,lte=64"`
}

// BatchResponse is the response of a batch request
type BatchResponse struct {
	AssessmentID string               `json:"assessment_id"`
	Scored       int                  `json:"scored"`
	Failed       int                  `json:"failed"`
	Items        []pipeline.BatchItem `json:"items"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"assessments": s.engine.Registry().Len(),
	})
}

// handleListAssessments lists the loaded assessment definitions
func (s *Server) handleListAssessments(w http.ResponseWriter, _ *http.Request) {
	defs := s.engine.Registry().List()
	out := make([]AssessmentSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, summarize(def))
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGetAssessment returns one full assessment definition
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	def, ok := s.engine.Registry().Get(id)
	if !ok {
		s.scoringError(w, &pipeline.UnknownAssessmentError{ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, def)
}

// handleScore scores one submission
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.engine.Registry().Get(id); !ok {
		s.scoringError(w, &pipeline.UnknownAssessmentError{ID: id})
		return
	}

	var sub types.Submission
	if err := s.decodeBody(w, r, &sub); err != nil {
		s.scoringError(w, err)
		return
	}
	if err := bindAssessment(&sub, id, "assessment_id"); err != nil {
		s.scoringError(w, err)
		return
	}

	res, err := s.engine.Score(&sub)
	if err != nil {
		log.Printf("[score] %s rejected: %v", id, err)
		s.scoringError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleScoreBatch scores many submissions of one assessment concurrently
func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.engine.Registry().Get(id); !ok {
		s.scoringError(w, &pipeline.UnknownAssessmentError{ID: id})
		return
	}

	var req BatchRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.scoringError(w, err)
		return
	}
	for i, sub := range req.Submissions {
		if sub == nil {
			continue
		}
		if err := bindAssessment(sub, id, fmt.Sprintf("submissions[%d].assessment_id", i)); err != nil {
			s.scoringError(w, err)
			return
		}
	}
	if err := s.validator.Struct(req); err != nil {
		s.scoringError(w, validationError(err))
		return
	}
	if len(req.Submissions) > s.maxBatchSize {
		s.scoringError(w, &ErrValidation{
			Field:   "submissions",
			Message: fmt.Sprintf("at most %d submissions per batch", s.maxBatchSize),
		})
		return
	}

	workers := req.Workers
	if workers == 0 {
		workers = s.batchWorkers
	}
	items, err := s.engine.ScoreBatch(r.Context(), req.Submissions, workers)
	if err != nil {
		log.Printf("[score] batch for %s interrupted: %v", id, err)
	}

	resp := BatchResponse{AssessmentID: id, Items: items}
	for _, item := range items {
		if item.Err != nil {
			resp.Failed++
		} else {
			resp.Scored++
		}
	}
	log.Printf("[score] batch for %s: %d scored, %d failed", id, resp.Scored, resp.Failed)
	s.jsonResponse(w, http.StatusOK, resp)
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrBadBody{Cause: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &ErrBadBody{Cause: errors.New("body must contain a single JSON document")}
	}
	return nil
}

// bindAssessment fills an empty assessment id from the path and rejects a conflicting one.
func bindAssessment(sub *types.Submission, id, field string) error {
	switch sub.AssessmentID {
	case "":
		sub.AssessmentID = id
	case id:
	default:
		return &ErrValidation{
			Field:   field,
			Message: fmt.Sprintf("%q does not match assessment %q in the path", sub.AssessmentID, id),
		}
	}
	return nil
}

// validationError converts validator errors into an ErrValidation for the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return &ErrValidation{Field: ve.Namespace(), Message: fmt.Sprintf("failed %q validation", ve.Tag())}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func summarize(def *types.AssessmentDefinition) AssessmentSummary {
	sum := AssessmentSummary{
		ID:         def.ID,
		Version:    def.Version,
		Name:       def.Name,
		Family:     def.Family,
		ItemCount:  len(def.Items),
		Dimensions: make([]string, 0, len(def.Dimensions)),
		Profiles:   make([]string, 0, len(def.Profiles)),
	}
	for _, d := range def.Dimensions {
		sum.Dimensions = append(sum.Dimensions, d.ID)
	}
	for _, p := range def.Profiles {
		sum.Profiles = append(sum.Profiles, p.Key)
	}
	return sum
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message, kind string) {
	s.jsonResponse(w, status, map[string]string{"error": message, "kind": kind})
}

// scoringError maps err to its status and writes it
func (s *Server) scoringError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
	}
	s.errorResponse(w, status, message, errorKind(err))
}
