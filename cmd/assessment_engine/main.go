// Package main provides the entry point for the assessment engine CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	definitionsDir string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "assessment_engine",
	Short: "Psychometric scoring and validity engine",
	Long: `Scores assessment submissions against data-driven definitions: per-dimension scores,
a profile, a validity verdict and insights, from the command line or over REST.

Configuration can be loaded from a JSON file using --config. Environment variables fill
values the file leaves unset, and command-line flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().StringVarP(&definitionsDir, "definitions", "d", "", "Directory of extra or overriding assessment definitions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed stage output to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
