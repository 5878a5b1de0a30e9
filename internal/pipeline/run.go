// Package pipeline runs submissions through the scoring stages.
package pipeline

import (
	"fmt"

	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/insights"
	"github.com/jonathan/assessment-engine/internal/profile"
	"github.com/jonathan/assessment-engine/internal/scoring"
	"github.com/jonathan/assessment-engine/internal/types"
	"github.com/jonathan/assessment-engine/internal/validity"
)

// Stage names reported through ProgressCallback
const (
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageClassify  = "classify"
	StageValidity  = "validity"
	StageInsights  = "insights"
)

// ProgressEvent represents one completed stage of a run
type ProgressEvent struct {
	Stage        string `json:"stage"`
	AssessmentID string `json:"assessment_id"`
	Message      string `json:"message"`
}

// ProgressCallback is called after each stage completes
type ProgressCallback func(event ProgressEvent)

// Run scores one submission against def. Identical inputs always produce identical results.
func Run(def *types.AssessmentDefinition, sub *types.Submission) (*types.Result, error) {
	return RunWithProgress(def, sub, nil)
}

// RunWithProgress is Run with a callback invoked after each stage.
func RunWithProgress(def *types.AssessmentDefinition, sub *types.Submission, onProgress ProgressCallback) (*types.Result, error) {
	emit := func(stage, format string, args ...any) {
		if onProgress != nil {
			onProgress(ProgressEvent{Stage: stage, AssessmentID: def.ID, Message: fmt.Sprintf(format, args...)})
		}
	}

	vec, err := evidence.Normalize(def, sub)
	if err != nil {
		return nil, err
	}
	emit(StageNormalize, "%d responses aligned", len(vec.Entries))

	scores, err := scoring.Aggregate(def, vec)
	if err != nil {
		return nil, err
	}
	emit(StageAggregate, "overall %.2f across %d dimensions", scores.Overall.Score, len(scores.Dimensions))

	prof := profile.Classify(def, scores)
	emit(StageClassify, "profile %s (confidence %.1f)", prof.Key, prof.Confidence)

	verdict, err := validity.Analyze(def, vec)
	if err != nil {
		return nil, err
	}
	emit(StageValidity, "reliability %s, score %.1f/%.0f", verdict.Reliability, verdict.Score, verdict.ScoreMax)

	ins := insights.Synthesize(def, scores, &verdict)
	emit(StageInsights, "%d strengths, %d challenges, %d opportunities",
		len(ins.Strengths), len(ins.Challenges), len(ins.Opportunities))

	return &types.Result{
		AssessmentID: def.ID,
		Version:      def.Version,
		Scores:       *scores,
		Profile:      prof,
		Validity:     verdict,
		Insights:     ins,
	}, nil
}
