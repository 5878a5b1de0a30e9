package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/evidence"
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

func TestRun_TechnologyIntegrationAllThrees(t *testing.T) {
	def := builtin(t, "technology_integration")
	res, err := Run(def, evidencetest.Timed(evidencetest.Uniform(def, 3), 6000))
	require.NoError(t, err)

	assert.Equal(t, "technology_integration", res.AssessmentID)
	assert.Equal(t, def.Version, res.Version)
	assert.InDelta(t, 3.0, res.Scores.Overall.Score, 1e-9)
	assert.Equal(t, "boundary_building_learner", res.Profile.Key)
	assert.Equal(t, "Boundary Building Learner", res.Profile.Label)
	// identical answers are straight-lining
	assert.Equal(t, types.ReliabilityQuestionable, res.Validity.Reliability)
	assert.Len(t, res.Insights.Opportunities, 4)
	assert.Len(t, res.Insights.Caveats, 1)
}

func TestRun_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for _, def := range definitions.MustBuiltin() {
		sub := evidencetest.Random(def, rng)
		first, err := Run(def, sub)
		require.NoError(t, err)
		second, err := Run(def, sub)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), def.ID)
	}
}

func TestRunWithProgress_StageOrder(t *testing.T) {
	def := builtin(t, "leadership_style")
	var stages []string
	_, err := RunWithProgress(def, evidencetest.Uniform(def, 0), func(ev ProgressEvent) {
		assert.Equal(t, def.ID, ev.AssessmentID)
		assert.NotEmpty(t, ev.Message)
		stages = append(stages, ev.Stage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StageNormalize, StageAggregate, StageClassify, StageValidity, StageInsights}, stages)
}

func TestRun_RejectsBadSubmission(t *testing.T) {
	def := builtin(t, "technology_integration")
	sub := evidencetest.Uniform(def, 3)
	sub.Responses = sub.Responses[:24]

	res, err := Run(def, sub)
	assert.Nil(t, res)
	var shapeErr *evidence.ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

type recorded struct {
	id  string
	err error
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []recorded
}

func (f *fakeRecorder) ObserveRun(id string, _ *types.Result, err error, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, recorded{id: id, err: err})
}

func newEngine(t *testing.T, rec Recorder) *Engine {
	t.Helper()
	reg, err := definitions.NewRegistry(definitions.MustBuiltin())
	require.NoError(t, err)
	return NewEngine(reg, rec)
}

func TestEngine_Score(t *testing.T) {
	rec := &fakeRecorder{}
	engine := newEngine(t, rec)
	def := builtin(t, "work_style_validity")

	res, err := engine.Score(evidencetest.Uniform(def, 0))
	require.NoError(t, err)
	assert.Equal(t, def.ID, res.AssessmentID)

	_, err = engine.Score(&types.Submission{AssessmentID: "nope"})
	var unknown *UnknownAssessmentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.ID)
	assert.Equal(t, "unknown_assessment", ErrorKind(err))

	_, err = engine.Score(nil)
	assert.True(t, evidence.IsRejection(err))

	require.Len(t, rec.runs, 1, "only runs against a known definition are recorded")
	assert.Equal(t, def.ID, rec.runs[0].id)
}

func TestEngine_ScoreBatchKeepsOrder(t *testing.T) {
	engine := newEngine(t, nil)
	rng := rand.New(rand.NewSource(4))
	defs := definitions.MustBuiltin()

	var subs []*types.Submission
	for i := 0; i < 40; i++ {
		def := defs[i%len(defs)]
		sub := evidencetest.Random(def, rng)
		switch i % 10 {
		case 3:
			sub.Responses = sub.Responses[1:]
		case 7:
			sub.AssessmentID = "missing"
		}
		subs = append(subs, sub)
	}

	items, err := engine.ScoreBatch(context.Background(), subs, 3)
	require.NoError(t, err)
	require.Len(t, items, len(subs))

	ids := map[string]bool{}
	for i, item := range items {
		assert.Equal(t, i, item.Index)
		assert.NotEmpty(t, item.ID)
		ids[item.ID] = true
		switch i % 10 {
		case 3:
			assert.Equal(t, "shape", item.Kind)
			assert.Nil(t, item.Result)
		case 7:
			assert.Equal(t, "unknown_assessment", item.Kind)
		default:
			require.NoError(t, item.Err)
			assert.Equal(t, subs[i].AssessmentID, item.Result.AssessmentID)
		}
	}
	assert.Len(t, ids, len(subs))
}

func TestEngine_ScoreBatchMatchesSequential(t *testing.T) {
	engine := newEngine(t, nil)
	def := builtin(t, "digital_wellness")
	rng := rand.New(rand.NewSource(15))
	subs := make([]*types.Submission, 25)
	for i := range subs {
		subs[i] = evidencetest.Random(def, rng)
	}

	items, err := engine.ScoreBatch(context.Background(), subs, 0)
	require.NoError(t, err)
	for i, sub := range subs {
		want, err := Run(def, sub)
		require.NoError(t, err)
		assert.Equal(t, want, items[i].Result)
	}
}

// reloadingRecorder swaps the registry contents after the first recorded run.
type reloadingRecorder struct {
	once   sync.Once
	reload func()
}

func (r *reloadingRecorder) ObserveRun(string, *types.Result, error, time.Duration) {
	r.once.Do(r.reload)
}

func TestEngine_ScoreBatchUsesOneDefinitionVersion(t *testing.T) {
	def := builtin(t, "digital_wellness")
	reg, err := definitions.NewRegistry(definitions.MustBuiltin())
	require.NoError(t, err)

	next := *def
	next.Version = def.Version + "-next"
	rec := &reloadingRecorder{reload: func() {
		assert.NoError(t, reg.Replace([]*types.AssessmentDefinition{&next}))
	}}
	engine := NewEngine(reg, rec)

	rng := rand.New(rand.NewSource(21))
	subs := make([]*types.Submission, 6)
	for i := range subs {
		subs[i] = evidencetest.Random(def, rng)
	}

	items, err := engine.ScoreBatch(context.Background(), subs, 1)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, item.Err)
		assert.Equal(t, def.Version, item.Result.Version)
	}

	current, ok := reg.Get(def.ID)
	require.True(t, ok)
	assert.Equal(t, next.Version, current.Version, "the reload took effect for later calls")

	res, err := engine.Score(subs[0])
	require.NoError(t, err)
	assert.Equal(t, next.Version, res.Version)
}

func TestEngine_ScoreBatchCanceled(t *testing.T) {
	engine := newEngine(t, nil)
	def := builtin(t, "technology_integration")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := engine.ScoreBatch(ctx, []*types.Submission{evidencetest.Uniform(def, 1), evidencetest.Uniform(def, 1)}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "canceled", item.Kind)
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "range", ErrorKind(&evidence.RangeError{Message: "x", Index: -1}))
	assert.Equal(t, "config", ErrorKind(&definitions.ConfigError{AssessmentID: "a"}))
	assert.Equal(t, "internal", ErrorKind(errors.New("boom")))
}
