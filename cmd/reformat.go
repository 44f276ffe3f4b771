package cmd

import (
	"github.com/spf13/cobra"

	"github.com/polint/polint/catalog"
	"github.com/polint/polint/internal/logging"
)

func reformatCmd() *cobra.Command {
	var (
		wrap      int
		noObsEnd  bool
		fitPlural bool
	)
	c := &cobra.Command{
		Use:   "reformat <po-file>...",
		Short: "Load and re-serialize PO catalogs in place (spec.md §4.2 sync)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return NewErrorWithUsage("reformat requires at least one PO file")
			}

			cfg, err := loadConfig()
			if err != nil {
				return NewStandardErrorF("loading config: %v", err)
			}
			width := wrap
			if width == 0 {
				width = cfg.WrapColumn
			}

			for _, path := range args {
				cat, err := catalog.LoadFile(path, catalog.LoadOptions{Lcache: true})
				if err != nil {
					return NewStandardErrorF("%s: %v", path, err)
				}
				if err := cat.Sync(false); err != nil {
					return NewStandardErrorF("%s: %v", path, err)
				}
				opts := catalog.SyncOptions{
					Wrap:     catalog.WrapOptions{Width: width},
					NoObsEnd: noObsEnd,
					Fit:      fitPlural,
				}
				if err := cat.WriteFile(path, opts); err != nil {
					return NewStandardErrorF("%s: %v", path, err)
				}
				logging.Log().Infof("%s: reformatted", path)
			}
			return nil
		},
	}
	c.Flags().IntVar(&wrap, "wrap", 0, "wrap column for comments and single-line fields (0: use polint.yaml wrap_column)")
	c.Flags().BoolVar(&noObsEnd, "no-obsolete-end", false, "do not hoist out-of-place obsolete entries to the end")
	c.Flags().BoolVar(&fitPlural, "fit-plural", false, "resize all-empty plural msgstr to the header plural count")
	return c
}
