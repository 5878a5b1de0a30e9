package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/assessment-engine/internal/pipeline"
	"github.com/jonathan/assessment-engine/internal/schemas"
	"github.com/jonathan/assessment-engine/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score many submissions concurrently",
	Long: `Reads submissions from a JSON array file or a JSON Lines file (one submission per line)
and scores them with a bounded worker pool. Items keep their input order; a submission that
cannot be scored is reported in its item instead of failing the batch.`,
	RunE: runBatch,
}

var (
	batchInput   string
	batchOutput  string
	batchWorkers int
	batchStrict  bool
)

// BatchOutput is the document written by the batch command.
type BatchOutput struct {
	Scored int                  `json:"scored"`
	Failed int                  `json:"failed"`
	Items  []pipeline.BatchItem `json:"items"`
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Path to submissions file, JSON array or JSON Lines (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent submissions (defaults to batch_workers config)")
	batchCmd.Flags().BoolVar(&batchStrict, "strict", false, "Exit with an error when any submission fails")

	if err := batchCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.BatchWorkers = batchWorkers
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	content, err := os.ReadFile(batchInput)
	if err != nil {
		return fmt.Errorf("failed to read submissions file %s: %w", batchInput, err)
	}
	subs, err := parseSubmissions(content)
	if err != nil {
		return fmt.Errorf("%s: %w", batchInput, err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("%s contains no submissions", batchInput)
	}

	engine, err := loadEngine(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	items, err := engine.ScoreBatch(ctx, subs, cfg.BatchWorkers)
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	out := BatchOutput{Items: items}
	for _, item := range items {
		if item.Err != nil {
			out.Failed++
			if cfg.Verbose {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "[batch] item %d: %s: %v\n", item.Index, item.Kind, item.Err)
			}
			continue
		}
		out.Scored++
	}

	if err := writeJSON(cmd.OutOrStdout(), batchOutput, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Scored %d of %d submissions (%d failed)\n", out.Scored, len(items), out.Failed)

	if batchStrict && out.Failed > 0 {
		return fmt.Errorf("%d submission(s) could not be scored", out.Failed)
	}
	return nil
}

// parseSubmissions accepts a JSON array of submissions or one submission per
// line. Every record is checked against the submission schema.
func parseSubmissions(content []byte) ([]*types.Submission, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submissions array: %w", err)
		}
		subs := make([]*types.Submission, 0, len(records))
		for i, record := range records {
			sub, err := parseSubmission(record)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			subs = append(subs, sub)
		}
		return subs, nil
	}

	var subs []*types.Submission
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		sub, err := parseSubmission(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		subs = append(subs, sub)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return subs, nil
}

func parseSubmission(record []byte) (*types.Submission, error) {
	var sub types.Submission
	if err := json.Unmarshal(record, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission JSON: %w", err)
	}
	if err := schemas.ValidateSubmission(record); err != nil {
		return nil, err
	}
	return &sub, nil
}
