package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/evidence"
	"github.com/jonathan/assessment-engine/internal/types"
)

// DefaultWorkers bounds batch concurrency when no worker count is given.
const DefaultWorkers = 4

// Recorder observes completed scoring runs.
type Recorder interface {
	ObserveRun(assessmentID string, res *types.Result, err error, elapsed time.Duration)
}

// Engine scores submissions against the definitions of a registry.
type Engine struct {
	registry *definitions.Registry
	recorder Recorder
}

// NewEngine creates an engine backed by registry. recorder may be nil.
func NewEngine(registry *definitions.Registry, recorder Recorder) *Engine {
	return &Engine{registry: registry, recorder: recorder}
}

// Registry returns the registry the engine reads definitions from.
func (e *Engine) Registry() *definitions.Registry {
	return e.registry
}

// Score looks up the submission's assessment and runs it.
func (e *Engine) Score(sub *types.Submission) (*types.Result, error) {
	if sub == nil {
		return e.score(nil, nil)
	}
	def, _ := e.registry.Get(sub.AssessmentID)
	return e.score(def, sub)
}

// score runs sub against def, the definition resolved for it (nil when unknown).
func (e *Engine) score(def *types.AssessmentDefinition, sub *types.Submission) (*types.Result, error) {
	if sub == nil {
		return nil, &evidence.ShapeError{Message: "missing submission", Expected: "object", Got: "null", Index: -1}
	}
	if def == nil {
		return nil, &UnknownAssessmentError{ID: sub.AssessmentID}
	}

	start := time.Now()
	res, err := Run(def, sub)
	if e.recorder != nil {
		e.recorder.ObserveRun(def.ID, res, err, time.Since(start))
	}
	return res, err
}

// resolve looks up the definition of every submission up front, so a registry
// reload during a batch cannot mix definition versions.
func (e *Engine) resolve(subs []*types.Submission) []*types.AssessmentDefinition {
	defs := make([]*types.AssessmentDefinition, len(subs))
	byID := make(map[string]*types.AssessmentDefinition)
	for i, sub := range subs {
		if sub == nil {
			continue
		}
		def, seen := byID[sub.AssessmentID]
		if !seen {
			def, _ = e.registry.Get(sub.AssessmentID)
			byID[sub.AssessmentID] = def
		}
		defs[i] = def
	}
	return defs
}

// BatchItem is the outcome of one submission of a batch.
type BatchItem struct {
	ID     string        `json:"id"`
	Index  int           `json:"index"`
	Result *types.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	Kind   string        `json:"kind,omitempty"`
	Err    error         `json:"-"`
}

// ScoreBatch scores independent submissions concurrently with at most workers
// in flight. Items come back in input order; a failing submission is reported
// on its own item and never affects the others. The returned error is set only
// when ctx ends before every submission was scored.
func (e *Engine) ScoreBatch(ctx context.Context, subs []*types.Submission, workers int) ([]BatchItem, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	defs := e.resolve(subs)
	items := make([]BatchItem, len(subs))
	done := make([]bool, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sub := range subs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := e.score(defs[i], sub)
			items[i] = newBatchItem(i, res, err)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := range items {
			if !done[i] {
				items[i] = newBatchItem(i, nil, err)
			}
		}
		return items, err
	}
	return items, nil
}

func newBatchItem(index int, res *types.Result, err error) BatchItem {
	item := BatchItem{ID: uuid.NewString(), Index: index, Result: res}
	if err != nil {
		item.Err = err
		item.Error = err.Error()
		item.Kind = ErrorKind(err)
	}
	return item
}

// ErrorKind classifies a scoring error for API responses.
func ErrorKind(err error) string {
	var unknown *UnknownAssessmentError
	var configErr *definitions.ConfigError
	switch {
	case err == nil:
		return ""
	case evidence.IsRejection(err):
		return evidence.Kind(err)
	case errors.As(err, &unknown):
		return "unknown_assessment"
	case errors.As(err, &configErr):
		return "config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
