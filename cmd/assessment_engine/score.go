package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/assessment-engine/internal/observability"
	"github.com/jonathan/assessment-engine/internal/pipeline"
	"github.com/jonathan/assessment-engine/internal/schemas"
	"github.com/jonathan/assessment-engine/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one submission",
	Long: `Reads a Submission JSON file, validates it against the submission schema and runs the
scoring pipeline: normalize -> aggregate -> classify -> validity -> insights. The Result JSON is
written to --out, or to stdout when --out is not given.`,
	RunE: runScore,
}

var (
	scoreInput      string
	scoreOutput     string
	scoreAssessment string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "input", "i", "", "Path to Submission JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output Result JSON file (default stdout)")
	scoreCmd.Flags().StringVarP(&scoreAssessment, "assessment", "a", "", "Assessment id (overrides the submission's assessment_id)")

	if err := scoreCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// 1. Load and validate the submission
	content, err := os.ReadFile(scoreInput)
	if err != nil {
		return fmt.Errorf("failed to read submission file %s: %w", scoreInput, err)
	}
	if err := schemas.ValidateSubmission(content); err != nil {
		return fmt.Errorf("submission %s: %w", scoreInput, err)
	}

	var sub types.Submission
	if err := json.Unmarshal(content, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal submission JSON: %w", err)
	}
	if scoreAssessment != "" {
		sub.AssessmentID = scoreAssessment
	}

	// 2. Resolve the definition
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	def, ok := registry.Get(sub.AssessmentID)
	if !ok {
		return &pipeline.UnknownAssessmentError{ID: sub.AssessmentID}
	}

	// 3. Run the pipeline
	var onProgress pipeline.ProgressCallback
	if cfg.Verbose {
		stderr := cmd.ErrOrStderr()
		onProgress = func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(stderr, "[%s] %s\n", event.Stage, event.Message)
		}
	}
	result, err := pipeline.RunWithProgress(def, &sub, onProgress)
	if err != nil {
		return fmt.Errorf("failed to score submission: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResult(result)
	}

	// 4. Write the result
	if err := writeJSON(cmd.OutOrStdout(), scoreOutput, result); err != nil {
		return err
	}
	if scoreOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Scored %s (%s, %s) to %s\n",
			result.AssessmentID, result.Profile.Label, result.Validity.Reliability, scoreOutput)
	}
	return nil
}
