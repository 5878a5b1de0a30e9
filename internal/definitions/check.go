package definitions

import (
	"fmt"
	"math"

	"github.com/jonathan/assessment-engine/internal/types"
)

// weightSumTolerance is the allowed deviation of overall weights from 1.0.
const weightSumTolerance = 1e-6

// knownFlags are the flag names a tier rule may reference.
var knownFlags = map[string]bool{
	types.FlagSocialDesirability:  true,
	types.FlagExaggeratedDistress: true,
	types.FlagRandomResponding:    true,
	types.FlagInconsistent:        true,
	types.FlagTooFast:             true,
	types.FlagTooSlow:             true,
	types.FlagStraightLining:      true,
	types.FlagUnderreporting:      true,
	types.FlagOverclaiming:        true,
}

// Check cross-validates a definition and returns a *ConfigError listing every
// inconsistency, or nil. It never mutates the definition.
func Check(def *types.AssessmentDefinition) error {
	c := &checker{def: def}

	c.checkItems()
	c.checkDimensions()
	c.checkOverall()
	c.checkLevels()
	c.checkProfiles()
	c.checkClassification()
	c.checkValidity()
	c.checkInsights()

	if len(c.problems) == 0 {
		return nil
	}
	return &ConfigError{AssessmentID: def.ID, Problems: c.problems}
}

type checker struct {
	def      *types.AssessmentDefinition
	problems []string
	// reserved is set when a dimension claims the overall id; metric ranges are then ambiguous.
	reserved bool
}

func (c *checker) addf(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

func (c *checker) checkItems() {
	def := c.def
	if def.ExpectedItemCount != len(def.Items) {
		c.addf("expected_item_count is %d but %d items are declared", def.ExpectedItemCount, len(def.Items))
	}
	if def.Scale.Max <= def.Scale.Min {
		c.addf("scale max %g must be greater than min %g", def.Scale.Max, def.Scale.Min)
	}

	seen := make(map[string]bool, len(def.Items))
	for i := range def.Items {
		item := &def.Items[i]
		if item.ID == "" {
			c.addf("item %d has no id", i)
			continue
		}
		if seen[item.ID] {
			c.addf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true

		if item.Dimension != "" {
			if dim, _ := def.Dimension(item.Dimension); dim == nil {
				c.addf("item %q is tagged with unknown dimension %q", item.ID, item.Dimension)
			}
		}
		for option := range item.OptionValues {
			if !item.HasOption(option) {
				c.addf("item %q has option_values for undeclared option %q", item.ID, option)
			}
		}

		switch item.Kind {
		case types.ItemLikert:
			if item.UsesOptions() {
				c.addf("likert item %q must not declare options", item.ID)
			}
		case types.ItemForcedChoice, types.ItemScenario:
			if len(item.Options) < 2 {
				c.addf("%s item %q needs at least two options", item.Kind, item.ID)
			}
		case types.ItemTimeEstimate:
			if item.Target <= 0 {
				c.addf("time_estimate item %q needs a positive target", item.ID)
			}
			if item.MaxValue != 0 && item.MaxValue < item.Target {
				c.addf("time_estimate item %q has max_value below its target", item.ID)
			}
			if item.Reversed {
				c.addf("time_estimate item %q cannot be reversed", item.ID)
			}
		case types.ItemTrap:
			c.checkTrap(item)
		}
		if item.Kind != types.ItemTrap && item.Trap != nil {
			c.addf("item %q declares a trap spec but is of kind %s", item.ID, item.Kind)
		}
	}
}

func (c *checker) checkTrap(item *types.ItemSpec) {
	if item.Trap == nil {
		c.addf("trap item %q has no trap spec", item.ID)
		return
	}
	if item.Reversed {
		c.addf("trap item %q cannot be reversed", item.ID)
	}
	t := item.Trap
	set := 0
	for _, n := range []int{len(t.SuspiciousOptions), len(t.SuspiciousValues), len(t.ExpectedOptions), len(t.ExpectedValues)} {
		if n > 0 {
			set++
		}
	}
	if set != 1 {
		c.addf("trap item %q must declare exactly one of suspicious_options, suspicious_values, expected_options, expected_values", item.ID)
		return
	}

	options := append(append([]string{}, t.SuspiciousOptions...), t.ExpectedOptions...)
	values := append(append([]float64{}, t.SuspiciousValues...), t.ExpectedValues...)
	if len(options) > 0 {
		if !item.UsesOptions() {
			c.addf("trap item %q lists options but declares none", item.ID)
		}
		for _, o := range options {
			if !item.HasOption(o) {
				c.addf("trap item %q references undeclared option %q", item.ID, o)
			}
		}
	}
	if len(values) > 0 {
		if item.UsesOptions() {
			c.addf("trap item %q lists values but is answered with options", item.ID)
		}
		for _, v := range values {
			if !c.def.Scale.Contains(v) {
				c.addf("trap item %q value %g is outside the scale", item.ID, v)
			}
		}
	}
}

func (c *checker) checkDimensions() {
	def := c.def
	seen := make(map[string]bool, len(def.Dimensions))
	for i := range def.Dimensions {
		dim := &def.Dimensions[i]
		if dim.ID == types.OverallID {
			c.addf("dimension id %q is reserved", types.OverallID)
			c.reserved = true
		}
		if seen[dim.ID] {
			c.addf("duplicate dimension id %q", dim.ID)
		}
		seen[dim.ID] = true

		if dim.Window != nil && len(dim.Indices) > 0 {
			c.addf("dimension %q declares both a window and indices", dim.ID)
		}
		if w := dim.Window; w != nil {
			if w.Start < 0 || w.End > len(def.Items) || w.Start >= w.End {
				c.addf("dimension %q has invalid window [%d, %d) for %d items", dim.ID, w.Start, w.End, len(def.Items))
				continue
			}
		}
		dupIdx := make(map[int]bool, len(dim.Indices))
		for _, idx := range dim.Indices {
			if idx < 0 || idx >= len(def.Items) {
				c.addf("dimension %q index %d is out of range", dim.ID, idx)
			}
			if dupIdx[idx] {
				c.addf("dimension %q lists index %d twice", dim.ID, idx)
			}
			dupIdx[idx] = true
		}

		scorable := 0
		for _, idx := range def.MemberIndices(dim) {
			item := &def.Items[idx]
			if item.Kind == types.ItemTrap {
				continue
			}
			scorable++
			c.checkMember(dim, item)
		}
		if scorable == 0 {
			c.addf("dimension %q has no scorable items", dim.ID)
		}

		if dim.ScoringMode() == types.ScoringEffectiveness && def.Effectiveness == nil {
			c.addf("dimension %q uses effectiveness scoring but no effectiveness table is declared", dim.ID)
		}
		for level := range dim.Interpretations {
			if !c.hasLevel(level) {
				c.addf("dimension %q has an interpretation for unknown level %q", dim.ID, level)
			}
		}
	}

	if t := def.Effectiveness; t != nil {
		if t.Scale.Max <= t.Scale.Min {
			c.addf("effectiveness scale max %g must be greater than min %g", t.Scale.Max, t.Scale.Min)
		}
		type key struct{ question, option string }
		rows := make(map[key]bool, len(t.Entries))
		for _, e := range t.Entries {
			k := key{e.Question, e.Option}
			if rows[k] {
				c.addf("effectiveness table has duplicate row (%s, %s)", e.Question, e.Option)
			}
			rows[k] = true
			idx := def.ItemIndex(e.Question)
			if idx < 0 {
				c.addf("effectiveness table references unknown question %q", e.Question)
				continue
			}
			if !def.Items[idx].HasOption(e.Option) {
				c.addf("effectiveness table references undeclared option %q of question %q", e.Option, e.Question)
			}
			for dimID := range e.Weights {
				if dim, _ := def.Dimension(dimID); dim == nil {
					c.addf("effectiveness row (%s, %s) weights unknown dimension %q", e.Question, e.Option, dimID)
				}
			}
		}
	}
}

// checkMember verifies that every answer to item yields a value for dim.
func (c *checker) checkMember(dim *types.DimensionSpec, item *types.ItemSpec) {
	def := c.def
	if dim.ScoringMode() == types.ScoringEffectiveness {
		if !item.UsesOptions() {
			c.addf("dimension %q uses effectiveness scoring but item %q has no options", dim.ID, item.ID)
			return
		}
		for _, option := range item.Options {
			w, ok := def.Effectiveness.Lookup(item.ID, option, dim.ID)
			if !ok {
				c.addf("effectiveness table has no weight for (%s, %s) on dimension %q", item.ID, option, dim.ID)
				continue
			}
			if !def.Effectiveness.Scale.Contains(w) {
				c.addf("effectiveness weight %g for (%s, %s) is outside the effectiveness scale", w, item.ID, option)
			}
		}
		return
	}

	if item.UsesOptions() {
		for _, option := range item.Options {
			v, ok := item.OptionValues[option]
			if !ok {
				c.addf("item %q in dimension %q has no option_value for %q", item.ID, dim.ID, option)
				continue
			}
			if !def.Scale.Contains(v) {
				c.addf("item %q option_value %g for %q is outside the scale", item.ID, v, option)
			}
		}
	}
}

func (c *checker) hasLevel(level string) bool {
	for _, l := range c.def.Levels {
		if l.Level == level {
			return true
		}
	}
	return false
}

func (c *checker) checkOverall() {
	def := c.def
	switch def.Overall.Mode {
	case types.OverallWeighted:
		sum := 0.0
		for id, w := range def.Overall.Weights {
			if dim, _ := def.Dimension(id); dim == nil {
				c.addf("overall weight references unknown dimension %q", id)
			}
			if w < 0 {
				c.addf("overall weight for %q is negative", id)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightSumTolerance {
			c.addf("overall weights sum to %g, want 1.0", sum)
		}
	case types.OverallMean:
		if len(def.Overall.Weights) > 0 {
			c.addf("overall mode mean does not take weights")
		}
	default:
		c.addf("unknown overall mode %q", def.Overall.Mode)
	}
}

func (c *checker) checkLevels() {
	levels := c.def.Levels
	if len(levels) == 0 {
		c.addf("no level bands declared")
		return
	}
	seen := make(map[string]bool, len(levels))
	for i, l := range levels {
		if seen[l.Level] {
			c.addf("duplicate level %q", l.Level)
		}
		seen[l.Level] = true
		if i > 0 && l.Min >= levels[i-1].Min {
			c.addf("level bands must be strictly descending: %q (%g) follows %q (%g)", l.Level, l.Min, levels[i-1].Level, levels[i-1].Min)
		}
	}
	if last := levels[len(levels)-1]; last.Min != 0 {
		c.addf("lowest level band %q must start at 0, starts at %g", last.Level, last.Min)
	}
}

func (c *checker) checkProfiles() {
	seen := make(map[string]bool, len(c.def.Profiles))
	for _, p := range c.def.Profiles {
		if seen[p.Key] {
			c.addf("duplicate profile key %q", p.Key)
		}
		seen[p.Key] = true
	}
}

func (c *checker) checkProfileRef(where, key string) {
	if key == "" {
		c.addf("%s has no profile", where)
		return
	}
	if _, ok := c.def.Profile(key); !ok {
		c.addf("%s references unknown profile %q", where, key)
	}
}

func (c *checker) checkClassification() {
	def := c.def
	switch def.Classification.Mode {
	case types.ClassifyCascade:
		cascade := def.Classification.Cascade
		if cascade == nil {
			c.addf("cascade classification has no cascade block")
			return
		}
		var r types.Scale
		ok := false
		if !c.reserved {
			r, ok = def.ScoreRange(cascade.Metric)
			if !ok {
				c.addf("cascade metric %q is neither %q nor a dimension", cascade.Metric, types.OverallID)
			}
		}
		if len(cascade.Bands) == 0 {
			c.addf("cascade has no bands")
		}
		for i, b := range cascade.Bands {
			c.checkProfileRef(fmt.Sprintf("cascade band %d", i), b.Profile)
			if i > 0 && b.Min >= cascade.Bands[i-1].Min {
				c.addf("cascade bands must be strictly descending: band %d (%g) follows %g", i, b.Min, cascade.Bands[i-1].Min)
			}
			if ok && b.Min > r.Max {
				c.addf("cascade band %d (%g) is unreachable above the metric maximum %g", i, b.Min, r.Max)
			}
		}
		c.checkProfileRef("cascade default", cascade.Default)
	case types.ClassifyRank:
		rank := def.Classification.Rank
		if rank == nil {
			c.addf("rank classification has no rank block")
			return
		}
		seen := make(map[string]bool, len(rank.Dimensions))
		for _, id := range rank.Dimensions {
			if dim, _ := def.Dimension(id); dim == nil {
				c.addf("rank references unknown dimension %q", id)
			}
			if seen[id] {
				c.addf("rank lists dimension %q twice", id)
			}
			seen[id] = true
			c.checkProfileRef(fmt.Sprintf("rank dimension %q", id), rank.Profiles[id])
		}
		for id := range rank.Profiles {
			if !seen[id] {
				c.addf("rank profile mapping for %q is not a ranked dimension", id)
			}
		}
		c.checkProfileRef("rank default", rank.Default)
	default:
		c.addf("unknown classification mode %q", def.Classification.Mode)
	}
}

func (c *checker) checkValidity() {
	def := c.def
	v := def.Validity
	if v.ScoreMax <= 0 {
		c.addf("validity score_max must be positive")
	}
	fast, slow := v.Timing.Bounds()
	if fast >= slow {
		c.addf("timing too_fast_ms (%g) must be below too_slow_ms (%g)", fast, slow)
	}

	for i, pair := range v.ContradictionPairs {
		if len(pair.Items) != 2 {
			c.addf("contradiction pair %d must name exactly two items", i)
			continue
		}
		if pair.Items[0] == pair.Items[1] {
			c.addf("contradiction pair %d names item %q twice", i, pair.Items[0])
		}
		if len(pair.AgreeOptions) == 0 && pair.AgreeMin == 0 {
			c.addf("contradiction pair %d needs agree_options or agree_min", i)
		}
		for _, id := range pair.Items {
			idx := def.ItemIndex(id)
			if idx < 0 {
				c.addf("contradiction pair %d references unknown item %q", i, id)
				continue
			}
			item := &def.Items[idx]
			for _, o := range pair.AgreeOptions {
				if !item.HasOption(o) {
					c.addf("contradiction pair %d agree option %q is not an option of %q", i, o, id)
				}
			}
			if len(pair.AgreeOptions) == 0 && item.UsesOptions() {
				c.addf("contradiction pair %d item %q is answered with options but the pair has no agree_options", i, id)
			}
		}
	}

	if sl := v.StraightLining; sl != nil {
		if sl.MaxVariance <= 0 {
			c.addf("straight_lining max_variance must be positive")
		}
		if sl.MinItems < 2 {
			c.addf("straight_lining min_items must be at least 2")
		}
	}

	if tel := v.Telemetry; tel != nil {
		seen := make(map[string]bool, len(tel.Indicators))
		for _, ind := range tel.Indicators {
			if seen[ind.ID] {
				c.addf("duplicate telemetry indicator %q", ind.ID)
			}
			seen[ind.ID] = true
			if ind.Max <= ind.Min {
				c.addf("telemetry indicator %q max must be greater than min", ind.ID)
			}
		}
		if len(tel.SelfReportItems) == 0 {
			c.addf("telemetry cross-check has no self_report_items")
		}
		for _, id := range tel.SelfReportItems {
			idx := def.ItemIndex(id)
			if idx < 0 {
				c.addf("telemetry self-report item %q does not exist", id)
				continue
			}
			if def.Items[idx].Kind != types.ItemLikert {
				c.addf("telemetry self-report item %q must be a likert item", id)
			}
		}
		if tel.DivergenceThreshold <= 0 || tel.DivergenceThreshold > 100 {
			c.addf("telemetry divergence_threshold must be in (0, 100]")
		}
	}

	for name, rule := range map[string]types.TierRule{"invalid": v.Tiers.Invalid, "questionable": v.Tiers.Questionable} {
		for _, f := range rule.Flags {
			if !knownFlags[f] {
				c.addf("%s tier references unknown flag %q", name, f)
			}
		}
		if rule.Score > v.ScoreMax {
			c.addf("%s tier score %g exceeds score_max %g", name, rule.Score, v.ScoreMax)
		}
	}
}

func (c *checker) checkInsights() {
	def := c.def
	in := def.Insights
	if in.High <= in.Low {
		c.addf("insight high threshold (%g) must be above low threshold (%g)", in.High, in.Low)
	}

	seen := make(map[string]bool, len(in.Dimensions))
	for _, entry := range in.Dimensions {
		if dim, _ := def.Dimension(entry.Dimension); dim == nil {
			c.addf("insight table references unknown dimension %q", entry.Dimension)
		}
		if seen[entry.Dimension] {
			c.addf("insight table lists dimension %q twice", entry.Dimension)
		}
		seen[entry.Dimension] = true
	}

	for i := range def.Dimensions {
		id := def.Dimensions[i].ID
		entry, ok := def.DimensionInsight(id)
		if !ok {
			c.addf("insight table has no entry for dimension %q", id)
			continue
		}
		bands := []struct {
			band      types.InsightBand
			statement string
			recs      []string
		}{
			{types.BandStrength, entry.Statements.Strength, entry.Recommendations.Strength},
			{types.BandChallenge, entry.Statements.Challenge, entry.Recommendations.Challenge},
			{types.BandOpportunity, entry.Statements.Opportunity, entry.Recommendations.Opportunity},
		}
		for _, b := range bands {
			if b.statement == "" {
				c.addf("insight table for %q has no %s statement", id, b.band)
			}
			if len(b.recs) == 0 {
				c.addf("insight table for %q has no %s recommendations", id, b.band)
			}
		}
	}

	for _, r := range []types.Reliability{types.ReliabilityQuestionable, types.ReliabilityInvalid} {
		if in.ValidityNotes[string(r)] == "" {
			c.addf("insight validity_notes has no entry for %q", r)
		}
	}
}
