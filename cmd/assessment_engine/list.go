package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available assessments",
	Long:  "Lists every assessment in the embedded catalog, overlaid with the definitions directory when one is configured.",
	RunE:  runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the full definitions as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	defs := registry.List()
	if listJSON {
		return writeJSON(cmd.OutOrStdout(), "", defs)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tVERSION\tFAMILY\tITEMS\tCLASSIFIER\tNAME")
	for _, def := range defs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			def.ID, def.Version, def.Family, len(def.Items), def.Classification.Mode, def.Name)
	}
	return tw.Flush()
}
