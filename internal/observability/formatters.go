// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/assessment-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs every section of a scoring result.
func (p *Printer) PrintResult(res *types.Result) {
	if res == nil {
		return
	}
	p.PrintScores(&res.Scores)
	p.PrintProfile(&res.Profile)
	p.PrintValidity(&res.Validity)
	p.PrintInsights(&res.Insights)
}

// PrintScores outputs the dimension scores and the overall composite.
func (p *Printer) PrintScores(set *types.ScoreSet) {
	if set == nil || len(set.Dimensions) == 0 {
		return
	}

	var sb strings.Builder
	for _, d := range set.Dimensions {
		sb.WriteString(fmt.Sprintf("%-28s %7.2f  %5.1f%%  %s\n", d.Name, d.Score, d.Normalized, d.Level))
	}
	sb.WriteString("\n")
	o := set.Overall
	sb.WriteString(fmt.Sprintf("%-28s %7.2f  %5.1f%%  %s", o.Name, o.Score, o.Normalized, o.Level))

	p.printBox("DIMENSION SCORES", sb.String())
}

// PrintProfile outputs the assigned profile with its confidence and runner-up.
func (p *Printer) PrintProfile(prof *types.ProfileResult) {
	if prof == nil || prof.Key == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:     %s\n", prof.Label))
	sb.WriteString(fmt.Sprintf("Mode:        %s\n", prof.Mode))
	sb.WriteString(fmt.Sprintf("Confidence:  %.1f\n", prof.Confidence))
	sb.WriteString(fmt.Sprintf("Percentile:  %.1f", prof.Percentile))
	if prof.SecondaryLabel != "" {
		sb.WriteString(fmt.Sprintf("\nRunner-up:   %s", prof.SecondaryLabel))
	}
	if len(prof.Ranked) > 0 {
		sb.WriteString("\n\nRanked:\n")
		count := min(len(prof.Ranked), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := prof.Ranked[i]
			sb.WriteString(fmt.Sprintf("  #%d %s (%.2f)\n", r.Rank, r.Dimension, r.Score))
		}
		if len(prof.Ranked) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(prof.Ranked)-maxItemsToShow))
		}
	}

	p.printBox("PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidity outputs the reliability verdict and its components.
func (p *Printer) PrintValidity(v *types.ValidityVerdict) {
	if v == nil || v.Reliability == "" {
		return
	}

	c := v.Components
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reliability: %s (%s)\n", v.Reliability, v.ReliabilityLabel))
	sb.WriteString(fmt.Sprintf("Score:       %.1f / %.0f\n", v.Score, v.ScoreMax))
	sb.WriteString(fmt.Sprintf("Flags:       %d\n\n", v.TotalFlags))
	sb.WriteString(fmt.Sprintf("Fake good: %d  Fake bad: %d  Random: %d  Inconsistent: %d\n",
		c.FakeGood, c.FakeBad, c.RandomCheck, c.Inconsistency))
	sb.WriteString(fmt.Sprintf("Response time: %s (mean %.0fms over %d items)\n",
		c.ResponseTime.Profile, c.ResponseTime.MeanMs, c.ResponseTime.TimedItems))
	if c.StraightLining {
		sb.WriteString(fmt.Sprintf("Straight-lining: variance %.3f\n", c.SelfReportVariance))
	}
	if c.SelfReportIndex != nil && c.BehavioralIndex != nil {
		sb.WriteString(fmt.Sprintf("Telemetry: self %.1f vs observed %.1f\n", *c.SelfReportIndex, *c.BehavioralIndex))
	}
	for _, f := range v.Flags {
		sb.WriteString(fmt.Sprintf("  ⚠ %s\n", f))
	}

	p.printBox("VALIDITY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsights outputs strengths, challenges, opportunities and recommendations.
func (p *Printer) PrintInsights(ins *types.Insights) {
	if ins == nil {
		return
	}
	total := len(ins.Strengths) + len(ins.Challenges) + len(ins.Opportunities)
	if total == 0 && len(ins.Caveats) == 0 {
		return
	}

	var sb strings.Builder
	section := func(title string, list []types.Insight) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for _, in := range list {
			sb.WriteString(fmt.Sprintf("  • %s\n", in.Statement))
		}
		sb.WriteString("\n")
	}
	section("Strengths", ins.Strengths)
	section("Challenges", ins.Challenges)
	section("Opportunities", ins.Opportunities)

	if len(ins.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		count := min(len(ins.Recommendations), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, ins.Recommendations[i].Text))
		}
		if len(ins.Recommendations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(ins.Recommendations)-maxItemsToShow))
		}
	}
	for _, c := range ins.Caveats {
		sb.WriteString(fmt.Sprintf("\nNote: %s\n", c))
	}

	p.printBox("INSIGHTS", strings.TrimSpace(sb.String()))
}

// PrintDefinition outputs a summary of an assessment definition.
func (p *Printer) PrintDefinition(def *types.AssessmentDefinition) {
	if def == nil {
		return
	}

	traps := 0
	for _, item := range def.Items {
		if item.Kind == types.ItemTrap {
			traps++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:          %s (v%s)\n", def.ID, def.Version))
	sb.WriteString(fmt.Sprintf("Family:      %s\n", def.Family))
	sb.WriteString(fmt.Sprintf("Items:       %d (%d traps)\n", len(def.Items), traps))
	sb.WriteString(fmt.Sprintf("Scale:       %g-%g\n", def.Scale.Min, def.Scale.Max))
	sb.WriteString(fmt.Sprintf("Classifier:  %s, %d profiles\n\n", def.Classification.Mode, len(def.Profiles)))
	sb.WriteString("Dimensions:\n")
	for _, d := range def.Dimensions {
		sb.WriteString(fmt.Sprintf("  • %s\n", d.Name))
	}

	p.printBox(strings.ToUpper(def.Name), strings.TrimSuffix(sb.String(), "\n"))
}
