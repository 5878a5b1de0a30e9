// Package types provides type definitions for structured data used throughout the assessment engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ItemKind identifies the answer format of an assessment item.
type ItemKind string

// Item kinds
const (
	ItemLikert       ItemKind = "likert"
	ItemForcedChoice ItemKind = "forced_choice"
	ItemScenario     ItemKind = "scenario"
	ItemTimeEstimate ItemKind = "time_estimate"
	ItemTrap         ItemKind = "trap"
)

// TrapType identifies which distortion a trap item is designed to catch.
type TrapType string

// Trap types
const (
	TrapFakeGood    TrapType = "fake_good"
	TrapFakeBad     TrapType = "fake_bad"
	TrapRandomCheck TrapType = "random_check"
)

// Family groups assessments that share a validity score range and signal set.
type Family string

// Assessment families
const (
	FamilyLikert       Family = "likert"
	FamilyForcedChoice Family = "forced_choice"
	FamilyMultiSource  Family = "multi_source"
)

// DimensionScoring selects how item values are turned into a dimension mean.
type DimensionScoring string

// Dimension scoring modes
const (
	ScoringMean          DimensionScoring = "mean"
	ScoringEffectiveness DimensionScoring = "effectiveness"
)

// OverallMode selects how the overall composite is computed.
type OverallMode string

// Overall composite modes
const (
	OverallMean     OverallMode = "mean"
	OverallWeighted OverallMode = "weighted"
)

// ClassificationMode selects the profile classifier strategy.
type ClassificationMode string

// Classification modes
const (
	ClassifyCascade ClassificationMode = "cascade"
	ClassifyRank    ClassificationMode = "rank"
)

// OverallID is the reserved dimension id of the overall composite score.
const OverallID = "overall"

// AssessmentDefinition is the static, versioned configuration of one assessment type.
// Definitions are loaded once and never mutated afterwards.
type AssessmentDefinition struct {
	ID                string              `json:"id" validate:"required"`
	Version           string              `json:"version" validate:"required"`
	Name              string              `json:"name" validate:"required"`
	Family            Family              `json:"family" validate:"required,oneof=likert forced_choice multi_source"`
	ExpectedItemCount int                 `json:"expected_item_count" validate:"required,gt=0"`
	Scale             Scale               `json:"scale"`
	Items             []ItemSpec          `json:"items" validate:"required,min=1,dive"`
	Dimensions        []DimensionSpec     `json:"dimensions" validate:"required,min=1,dive"`
	Overall           OverallSpec         `json:"overall"`
	Levels            []LevelBand         `json:"levels" validate:"required,min=1,dive"`
	Effectiveness     *EffectivenessTable `json:"effectiveness,omitempty"`
	Profiles          []ProfileSpec       `json:"profiles" validate:"required,min=1,dive"`
	Classification    ClassificationSpec  `json:"classification"`
	Validity          ValiditySpec        `json:"validity"`
	Insights          InsightSpec         `json:"insights"`
}

// Scale is a closed numeric range.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max" validate:"gtfield=Min"`
}

// Contains reports whether v lies within the scale bounds.
func (s Scale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// ItemSpec describes a single item of an assessment.
type ItemSpec struct {
	ID        string   `json:"id" validate:"required"`
	Text      string   `json:"text,omitempty"`
	Dimension string   `json:"dimension,omitempty"`
	Kind      ItemKind `json:"kind" validate:"required,oneof=likert forced_choice scenario time_estimate trap"`
	Reversed  bool     `json:"reversed,omitempty"`
	// Options lists the allowed option ids for forced-choice, scenario and option-format trap items.
	Options      []string           `json:"options,omitempty"`
	OptionValues map[string]float64 `json:"option_values,omitempty"`
	// Target and MaxValue apply to time-estimate items.
	Target   float64   `json:"target,omitempty" validate:"gte=0"`
	MaxValue float64   `json:"max_value,omitempty" validate:"gte=0"`
	Trap     *TrapSpec `json:"trap,omitempty"`
}

// UsesOptions reports whether the item is answered with a discrete option id.
func (i *ItemSpec) UsesOptions() bool {
	return len(i.Options) > 0
}

// HasOption reports whether option is one of the item's declared options.
func (i *ItemSpec) HasOption(option string) bool {
	for _, o := range i.Options {
		if o == option {
			return true
		}
	}
	return false
}

// TrapSpec marks which answers to a trap item are suspicious.
// Exactly one of the four lists is set.
type TrapSpec struct {
	Type              TrapType  `json:"type" validate:"required,oneof=fake_good fake_bad random_check"`
	SuspiciousOptions []string  `json:"suspicious_options,omitempty"`
	SuspiciousValues  []float64 `json:"suspicious_values,omitempty"`
	ExpectedOptions   []string  `json:"expected_options,omitempty"`
	ExpectedValues    []float64 `json:"expected_values,omitempty"`
}

// Window is a half-open range [Start, End) of item indices.
type Window struct {
	Start int `json:"start" validate:"gte=0"`
	End   int `json:"end" validate:"gte=0"`
}

// DimensionSpec describes one scored trait. Members come from Window, Indices,
// or (when neither is set) the items tagged with the dimension id.
type DimensionSpec struct {
	ID              string            `json:"id" validate:"required"`
	Name            string            `json:"name" validate:"required"`
	Window          *Window           `json:"window,omitempty"`
	Indices         []int             `json:"indices,omitempty"`
	Scoring         DimensionScoring  `json:"scoring,omitempty" validate:"omitempty,oneof=mean effectiveness"`
	ScaleFactor     float64           `json:"scale_factor,omitempty" validate:"gte=0"`
	Interpretations map[string]string `json:"interpretations,omitempty"`
}

// OverallSpec configures the overall composite.
type OverallSpec struct {
	Name    string             `json:"name,omitempty"`
	Mode    OverallMode        `json:"mode" validate:"required,oneof=mean weighted"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

// LevelBand maps normalized scores at or above Min to a qualitative level.
type LevelBand struct {
	Min   float64 `json:"min" validate:"gte=0,lte=100"`
	Level string  `json:"level" validate:"required"`
}

// EffectivenessTable maps (question, option) to a per-dimension effectiveness weight vector.
type EffectivenessTable struct {
	Scale   Scale                `json:"scale"`
	Entries []EffectivenessEntry `json:"entries" validate:"required,min=1,dive"`
}

// EffectivenessEntry is one row of an effectiveness table.
type EffectivenessEntry struct {
	Question string             `json:"question" validate:"required"`
	Option   string             `json:"option" validate:"required"`
	Weights  map[string]float64 `json:"weights" validate:"required"`
}

// Lookup returns the weight of option for question on dimension.
func (t *EffectivenessTable) Lookup(question, option, dimension string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	for _, e := range t.Entries {
		if e.Question == question && e.Option == option {
			w, ok := e.Weights[dimension]
			return w, ok
		}
	}
	return 0, false
}

// ProfileSpec is one member of an assessment's closed set of profiles.
type ProfileSpec struct {
	Key         string `json:"key" validate:"required"`
	Label       string `json:"label" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ClassificationSpec configures the profile classifier.
type ClassificationSpec struct {
	Mode    ClassificationMode `json:"mode" validate:"required,oneof=cascade rank"`
	Cascade *CascadeSpec       `json:"cascade,omitempty"`
	Rank    *RankSpec          `json:"rank,omitempty"`
}

// CascadeSpec is an ordered set of threshold bands over one metric.
// Bands are strictly descending by Min; scores below the last band get Default.
type CascadeSpec struct {
	Metric  string `json:"metric" validate:"required"`
	Bands   []Band `json:"bands" validate:"required,min=1,dive"`
	Default string `json:"default"`
}

// Band assigns Profile to metric values at or above Min.
type Band struct {
	Min     float64 `json:"min"`
	Profile string  `json:"profile" validate:"required"`
}

// RankSpec classifies by the top-scoring dimension; ties go to the dimension
// declared first. When MinMargin is set and the normalized lead of the top
// dimension is below it, Default is assigned. Secondary is always the
// runner-up's profile.
type RankSpec struct {
	Dimensions []string          `json:"dimensions" validate:"required,min=1"`
	Profiles   map[string]string `json:"profiles" validate:"required"`
	Default    string            `json:"default"`
	MinMargin  float64           `json:"min_margin,omitempty" validate:"gte=0,lte=100"`
}

// ValiditySpec holds every calibration constant of the validity analyzer.
type ValiditySpec struct {
	ScoreMax           float64             `json:"score_max" validate:"required,gt=0"`
	Timing             TimingSpec          `json:"timing"`
	ContradictionPairs []ContradictionPair `json:"contradiction_pairs,omitempty" validate:"dive"`
	StraightLining     *StraightLiningSpec `json:"straight_lining,omitempty"`
	Telemetry          *TelemetrySpec      `json:"telemetry,omitempty"`
	Weights            ValidityWeights     `json:"weights"`
	FlagThresholds     FlagThresholds      `json:"flag_thresholds"`
	Tiers              TierSpec            `json:"tiers"`
	Labels             ReliabilityLabels   `json:"labels"`
}

// TimingSpec holds the mean response-time bounds in milliseconds.
type TimingSpec struct {
	TooFastMs float64 `json:"too_fast_ms" validate:"gte=0"`
	TooSlowMs float64 `json:"too_slow_ms" validate:"gte=0"`
}

// ContradictionPair declares two items that cannot both be agreed with.
type ContradictionPair struct {
	Label        string   `json:"label,omitempty"`
	Items        []string `json:"items" validate:"len=2"`
	AgreeOptions []string `json:"agree_options,omitempty"`
	AgreeMin     float64  `json:"agree_min,omitempty"`
}

// StraightLiningSpec flags self-report answers with too little variance.
type StraightLiningSpec struct {
	MaxVariance float64 `json:"max_variance" validate:"gt=0"`
	MinItems    int     `json:"min_items" validate:"gte=2"`
}

// TelemetrySpec configures the self-report vs behavioral telemetry cross-check.
type TelemetrySpec struct {
	Indicators          []TelemetryIndicator `json:"indicators" validate:"required,min=1,dive"`
	SelfReportItems     []string             `json:"self_report_items" validate:"required,min=1"`
	DivergenceThreshold float64              `json:"divergence_threshold" validate:"gt=0,lte=100"`
}

// TelemetryIndicator normalizes one observed behavior onto 0-100.
type TelemetryIndicator struct {
	ID   string  `json:"id" validate:"required"`
	Name string  `json:"name,omitempty"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max" validate:"gtfield=Min"`
}

// ValidityWeights are the per-unit contributions to the distortion score.
type ValidityWeights struct {
	FakeGood            float64 `json:"fake_good" validate:"gte=0"`
	FakeBad             float64 `json:"fake_bad" validate:"gte=0"`
	Inconsistency       float64 `json:"inconsistency" validate:"gte=0"`
	RandomCheck         float64 `json:"random_check" validate:"gte=0"`
	TimeProfile         float64 `json:"time_profile" validate:"gte=0"`
	StraightLining      float64 `json:"straight_lining" validate:"gte=0"`
	TelemetryDivergence float64 `json:"telemetry_divergence" validate:"gte=0"`
}

// FlagThresholds are the counter values at which a named flag is raised.
type FlagThresholds struct {
	FakeGood      int `json:"fake_good" validate:"gte=0"`
	FakeBad       int `json:"fake_bad" validate:"gte=0"`
	Inconsistency int `json:"inconsistency" validate:"gte=0"`
	RandomCheck   int `json:"random_check" validate:"gte=0"`
}

// TierSpec holds the OR-rules for the two non-valid reliability tiers.
type TierSpec struct {
	Invalid      TierRule `json:"invalid"`
	Questionable TierRule `json:"questionable"`
}

// TierRule matches when any of its set criteria is met. Zero values are unset.
type TierRule struct {
	TotalFlags          int      `json:"total_flags,omitempty" validate:"gte=0"`
	FakeGood            int      `json:"fake_good,omitempty" validate:"gte=0"`
	FakeBad             int      `json:"fake_bad,omitempty" validate:"gte=0"`
	Inconsistency       int      `json:"inconsistency,omitempty" validate:"gte=0"`
	RandomCheck         int      `json:"random_check,omitempty" validate:"gte=0"`
	Score               float64  `json:"score,omitempty" validate:"gte=0"`
	TimeProfileAbnormal bool     `json:"time_profile_abnormal,omitempty"`
	Flags               []string `json:"flags,omitempty"`
}

// IsEmpty reports whether no criterion of the rule is set.
func (r TierRule) IsEmpty() bool {
	return r.TotalFlags == 0 && r.FakeGood == 0 && r.FakeBad == 0 && r.Inconsistency == 0 &&
		r.RandomCheck == 0 && r.Score == 0 && !r.TimeProfileAbnormal && len(r.Flags) == 0
}

// ReliabilityLabels are the assessment-specific names of the reliability tiers.
type ReliabilityLabels struct {
	Valid        string `json:"valid,omitempty"`
	Questionable string `json:"questionable,omitempty"`
	Invalid      string `json:"invalid,omitempty"`
}

// InsightSpec holds the statement and recommendation tables of the insight synthesizer.
type InsightSpec struct {
	High          float64             `json:"high" validate:"gte=0,lte=100"`
	Low           float64             `json:"low" validate:"gte=0,lte=100"`
	Dimensions    []DimensionInsights `json:"dimensions" validate:"dive"`
	ValidityNotes map[string]string   `json:"validity_notes,omitempty"`
}

// DimensionInsights is the per-dimension entry of the insight tables.
type DimensionInsights struct {
	Dimension       string              `json:"dimension" validate:"required"`
	Statements      BandText            `json:"statements"`
	Recommendations BandRecommendations `json:"recommendations"`
}

// BandText holds one statement per insight band.
type BandText struct {
	Strength    string `json:"strength"`
	Challenge   string `json:"challenge"`
	Opportunity string `json:"opportunity"`
}

// BandRecommendations holds the recommendation list per insight band.
type BandRecommendations struct {
	Strength    []string `json:"strength"`
	Challenge   []string `json:"challenge"`
	Opportunity []string `json:"opportunity"`
}

// Dimension returns the dimension with the given id and its declaration index.
func (d *AssessmentDefinition) Dimension(id string) (*DimensionSpec, int) {
	for i := range d.Dimensions {
		if d.Dimensions[i].ID == id {
			return &d.Dimensions[i], i
		}
	}
	return nil, -1
}

// Profile returns the profile with the given key.
func (d *AssessmentDefinition) Profile(key string) (*ProfileSpec, bool) {
	for i := range d.Profiles {
		if d.Profiles[i].Key == key {
			return &d.Profiles[i], true
		}
	}
	return nil, false
}

// ItemIndex returns the position of the item with the given id, or -1.
func (d *AssessmentDefinition) ItemIndex(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// DimensionInsight returns the insight table entry for a dimension.
func (d *AssessmentDefinition) DimensionInsight(id string) (*DimensionInsights, bool) {
	for i := range d.Insights.Dimensions {
		if d.Insights.Dimensions[i].Dimension == id {
			return &d.Insights.Dimensions[i], true
		}
	}
	return nil, false
}

// MemberIndices resolves the item indices of a dimension in item order.
// Trap items are included; callers that score domain traits skip them.
func (d *AssessmentDefinition) MemberIndices(dim *DimensionSpec) []int {
	switch {
	case dim.Window != nil:
		out := make([]int, 0, dim.Window.End-dim.Window.Start)
		for i := dim.Window.Start; i < dim.Window.End && i < len(d.Items); i++ {
			if i >= 0 {
				out = append(out, i)
			}
		}
		return out
	case len(dim.Indices) > 0:
		out := make([]int, 0, len(dim.Indices))
		for _, i := range dim.Indices {
			if i >= 0 && i < len(d.Items) {
				out = append(out, i)
			}
		}
		return out
	default:
		var out []int
		for i := range d.Items {
			if d.Items[i].Dimension == dim.ID {
				out = append(out, i)
			}
		}
		return out
	}
}

// ScoringMode returns the dimension's scoring mode, defaulting to mean.
func (dim *DimensionSpec) ScoringMode() DimensionScoring {
	if dim.Scoring == "" {
		return ScoringMean
	}
	return dim.Scoring
}

// Factor returns the dimension's scale factor, defaulting to 1.
func (dim *DimensionSpec) Factor() float64 {
	if dim.ScaleFactor == 0 {
		return 1
	}
	return dim.ScaleFactor
}

// Default response-time bounds in milliseconds.
const (
	DefaultTooFastMs = 3000
	DefaultTooSlowMs = 30000
)

// Bounds returns the too-fast and too-slow thresholds, falling back to the defaults.
func (t TimingSpec) Bounds() (tooFast, tooSlow float64) {
	tooFast, tooSlow = t.TooFastMs, t.TooSlowMs
	if tooFast == 0 {
		tooFast = DefaultTooFastMs
	}
	if tooSlow == 0 {
		tooSlow = DefaultTooSlowMs
	}
	return tooFast, tooSlow
}

// WithDefaults returns the thresholds with unset (zero) entries raised to 1.
func (f FlagThresholds) WithDefaults() FlagThresholds {
	orOne := func(v int) int {
		if v <= 0 {
			return 1
		}
		return v
	}
	return FlagThresholds{
		FakeGood:      orOne(f.FakeGood),
		FakeBad:       orOne(f.FakeBad),
		Inconsistency: orOne(f.Inconsistency),
		RandomCheck:   orOne(f.RandomCheck),
	}
}

// Label returns the assessment-specific name of a reliability tier.
func (l ReliabilityLabels) Label(r Reliability) string {
	var label string
	switch r {
	case ReliabilityValid:
		label = l.Valid
	case ReliabilityQuestionable:
		label = l.Questionable
	case ReliabilityInvalid:
		label = l.Invalid
	}
	if label == "" {
		return string(r)
	}
	return label
}

// DimensionRange returns the range of a dimension's raw mean.
func (d *AssessmentDefinition) DimensionRange(dim *DimensionSpec) Scale {
	if dim.ScoringMode() == ScoringEffectiveness && d.Effectiveness != nil {
		return d.Effectiveness.Scale
	}
	return d.Scale
}

// DimensionScoreRange returns the range of a dimension's scaled score.
func (d *AssessmentDefinition) DimensionScoreRange(dim *DimensionSpec) Scale {
	r := d.DimensionRange(dim)
	return Scale{Min: r.Min * dim.Factor(), Max: r.Max * dim.Factor()}
}

// ScoreRange returns the canonical score range of a dimension id or of OverallID.
func (d *AssessmentDefinition) ScoreRange(metric string) (Scale, bool) {
	if metric != OverallID {
		dim, _ := d.Dimension(metric)
		if dim == nil {
			return Scale{}, false
		}
		return d.DimensionScoreRange(dim), true
	}

	var lo, hi float64
	switch d.Overall.Mode {
	case OverallWeighted:
		for i := range d.Dimensions {
			w := d.Overall.Weights[d.Dimensions[i].ID]
			r := d.DimensionScoreRange(&d.Dimensions[i])
			lo += w * r.Min
			hi += w * r.Max
		}
	default:
		if len(d.Dimensions) == 0 {
			return Scale{}, false
		}
		for i := range d.Dimensions {
			r := d.DimensionScoreRange(&d.Dimensions[i])
			lo += r.Min
			hi += r.Max
		}
		lo /= float64(len(d.Dimensions))
		hi /= float64(len(d.Dimensions))
	}
	return Scale{Min: lo, Max: hi}, true
}
