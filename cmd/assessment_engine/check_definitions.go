package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/observability"
	"github.com/jonathan/assessment-engine/internal/types"
)

var checkDefinitionsCmd = &cobra.Command{
	Use:   "check-definitions [path...]",
	Short: "Validate assessment definition files",
	Long: `Loads every given definition file, or every *.json, *.yaml and *.yml file of a given
directory, and runs schema validation plus the consistency checks applied at startup. Without
arguments the embedded catalog is checked.`,
	RunE: runCheckDefinitions,
}

func init() {
	rootCmd.AddCommand(checkDefinitionsCmd)
}

func runCheckDefinitions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	if len(args) == 0 {
		defs, err := definitions.Builtin()
		if err != nil {
			_, _ = fmt.Fprintf(out, "✗ built-in catalog: %v\n", err)
			return errors.New("built-in catalog is invalid")
		}
		reportDefinitions(cmd, printer, "built-in", defs)
		return nil
	}

	failed := 0
	var all []*types.AssessmentDefinition
	for _, path := range args {
		defs, err := loadPath(path)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "✗ %s\n    %v\n", path, err)
			continue
		}
		reportDefinitions(cmd, printer, path, defs)
		all = append(all, defs...)
	}

	// Ids must stay unique across everything that was checked together.
	if failed == 0 && len(all) > 0 {
		if _, err := definitions.NewRegistry(all); err != nil {
			_, _ = fmt.Fprintf(out, "✗ combined set: %v\n", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d path(s) failed validation", failed)
	}
	_, _ = fmt.Fprintf(out, "Validation passed: %d definition(s)\n", len(all))
	return nil
}

func loadPath(path string) ([]*types.AssessmentDefinition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return definitions.LoadDir(path)
	}
	def, err := definitions.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*types.AssessmentDefinition{def}, nil
}

func reportDefinitions(cmd *cobra.Command, printer *observability.Printer, source string, defs []*types.AssessmentDefinition) {
	for _, def := range defs {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s v%s (%d items, %d dimensions)\n",
			source, def.ID, def.Version, len(def.Items), len(def.Dimensions))
		if verbose {
			printer.PrintDefinition(def)
		}
	}
}
