// Package types provides type definitions for structured data used throughout the assessment engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DimensionScore is the derived score of one dimension (or of the overall composite).
type DimensionScore struct {
	Dimension      string  `json:"dimension"`
	Name           string  `json:"name"`
	Raw            float64 `json:"raw"`
	Score          float64 `json:"score"`
	Normalized     float64 `json:"normalized"`
	Level          string  `json:"level"`
	Interpretation string  `json:"interpretation"`
	ItemCount      int     `json:"item_count"`
}

// ScoreSet is every dimension score of one run in declaration order plus the overall composite.
type ScoreSet struct {
	Dimensions []DimensionScore `json:"dimensions"`
	Overall    DimensionScore   `json:"overall"`
}

// Get returns the score of a dimension id, or the overall composite for OverallID.
func (s *ScoreSet) Get(id string) (DimensionScore, bool) {
	if id == OverallID {
		return s.Overall, true
	}
	for _, d := range s.Dimensions {
		if d.Dimension == id {
			return d, true
		}
	}
	return DimensionScore{}, false
}

// Reliability is the categorical validity tier.
type Reliability string

// Reliability tiers
const (
	ReliabilityValid        Reliability = "valid"
	ReliabilityQuestionable Reliability = "questionable"
	ReliabilityInvalid      Reliability = "invalid"
)

// TimeProfile classifies the mean response time.
type TimeProfile string

// Time profiles
const (
	TimeTooFast TimeProfile = "too_fast"
	TimeNormal  TimeProfile = "normal"
	TimeTooSlow TimeProfile = "too_slow"
	TimeUnknown TimeProfile = "unknown"
)

// Abnormal reports whether the profile should count against validity.
func (p TimeProfile) Abnormal() bool {
	return p == TimeTooFast || p == TimeTooSlow
}

// Named validity flags
const (
	FlagSocialDesirability  = "high social desirability"
	FlagExaggeratedDistress = "exaggerated distress"
	FlagRandomResponding    = "random responding"
	FlagInconsistent        = "inconsistent responding"
	FlagTooFast             = "rapid responding"
	FlagTooSlow             = "slow responding"
	FlagStraightLining      = "straight-lining"
	FlagUnderreporting      = "underreporting"
	FlagOverclaiming        = "overclaiming"
)

// ResponseTimeStats summarizes response times across timed items.
type ResponseTimeStats struct {
	MeanMs     float64     `json:"mean_ms"`
	SDMs       float64     `json:"sd_ms"`
	TimedItems int         `json:"timed_items"`
	Profile    TimeProfile `json:"profile"`
}

// ValidityComponents are the sub-scores fused into a validity verdict.
type ValidityComponents struct {
	FakeGood            int               `json:"fake_good"`
	FakeBad             int               `json:"fake_bad"`
	Inconsistency       int               `json:"inconsistency"`
	RandomCheck         int               `json:"random_check"`
	StraightLining      bool              `json:"straight_lining"`
	SelfReportVariance  float64           `json:"self_report_variance"`
	SelfReportIndex     *float64          `json:"self_report_index,omitempty"`
	BehavioralIndex     *float64          `json:"behavioral_index,omitempty"`
	TelemetryDivergence float64           `json:"telemetry_divergence"`
	ResponseTime        ResponseTimeStats `json:"response_time"`
}

// ValidityVerdict is the reliability judgement of one submission.
type ValidityVerdict struct {
	Score            float64            `json:"score"`
	ScoreMax         float64            `json:"score_max"`
	Reliability      Reliability        `json:"reliability"`
	ReliabilityLabel string             `json:"reliability_label"`
	Flags            []string           `json:"flags"`
	TotalFlags       int                `json:"total_flags"`
	Components       ValidityComponents `json:"components"`
}

// RankedDimension is one entry of the ranked dimension list of a profile result.
type RankedDimension struct {
	Dimension  string  `json:"dimension"`
	Score      float64 `json:"score"`
	Normalized float64 `json:"normalized"`
	Rank       int     `json:"rank"`
}

// ProfileResult is the discrete profile assigned to a score set.
type ProfileResult struct {
	Key            string             `json:"key"`
	Label          string             `json:"label"`
	Mode           ClassificationMode `json:"mode"`
	Confidence     float64            `json:"confidence"`
	Percentile     float64            `json:"percentile"`
	Secondary      string             `json:"secondary,omitempty"`
	SecondaryLabel string             `json:"secondary_label,omitempty"`
	Ranked         []RankedDimension  `json:"ranked"`
}

// InsightBand is the band a dimension score falls into.
type InsightBand string

// Insight bands
const (
	BandStrength    InsightBand = "strength"
	BandChallenge   InsightBand = "challenge"
	BandOpportunity InsightBand = "opportunity"
)

// Insight is one categorized statement about a dimension.
type Insight struct {
	Dimension string      `json:"dimension"`
	Band      InsightBand `json:"band"`
	Statement string      `json:"statement"`
}

// Recommendation is one actionable strategy for a dimension.
type Recommendation struct {
	Dimension string      `json:"dimension"`
	Band      InsightBand `json:"band"`
	Text      string      `json:"text"`
}

// Insights are the categorized statements and recommendations of one run.
type Insights struct {
	Strengths       []Insight        `json:"strengths"`
	Challenges      []Insight        `json:"challenges"`
	Opportunities   []Insight        `json:"opportunities"`
	Recommendations []Recommendation `json:"recommendations"`
	Caveats         []string         `json:"caveats"`
}

// Result is the plain record produced by one scoring run.
type Result struct {
	AssessmentID string          `json:"assessment_id"`
	Version      string          `json:"version"`
	Scores       ScoreSet        `json:"scores"`
	Profile      ProfileResult   `json:"profile"`
	Validity     ValidityVerdict `json:"validity"`
	Insights     Insights        `json:"insights"`
}
