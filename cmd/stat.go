package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/polint/polint/catalog"
	"github.com/polint/polint/internal/report"
)

func statCmd() *cobra.Command {
	var jsonOut bool
	c := &cobra.Command{
		Use:   "stat <po-file>...",
		Short: "Print translated/fuzzy/untranslated counts for one or more PO catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return NewErrorWithUsage("stat requires at least one PO file")
			}
			counts := make([]report.Count, 0, len(args))
			for _, path := range args {
				cat, err := catalog.LoadFile(path, catalog.LoadOptions{})
				if err != nil {
					return NewStandardErrorF("%s: %v", path, err)
				}
				counts = append(counts, report.CountOf(cat))
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(counts)
			}
			report.PrintCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}
	c.Flags().BoolVar(&jsonOut, "json", false, "emit counts as JSON instead of text")
	return c
}
