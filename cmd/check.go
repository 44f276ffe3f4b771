package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polint/polint/catalog"
	"github.com/polint/polint/internal/logging"
	"github.com/polint/polint/internal/report"
	"github.com/polint/polint/rules"
)

type checkOptions struct {
	rulesDir string
	env      string
	json     bool
	stat     bool
	nofilter bool
}

// catNameOf derives the "cat" validity constraint value (spec.md §4.5) from
// a catalog's source path: its base name without the .po extension.
func catNameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".po")
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}
	c := &cobra.Command{
		Use:   "check <po-file>...",
		Short: "Apply rule files to one or more PO catalogs and report failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}
	c.Flags().StringVar(&opts.rulesDir, "rules", "", "directory of *.rules files (overrides polint.yaml rule_paths)")
	c.Flags().StringVar(&opts.env, "env", "", "environment to evaluate rules in (overrides polint.yaml default_environment)")
	c.Flags().BoolVar(&opts.json, "json", false, "emit findings as JSON instead of text")
	c.Flags().BoolVar(&opts.stat, "stat", false, "print per-rule call count and cumulative time")
	c.Flags().BoolVar(&opts.nofilter, "nofilter", false, "skip each rule's message filter (messages are assumed pre-filtered)")
	return c
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if len(args) == 0 {
		return NewErrorWithUsage("check requires at least one PO file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return NewStandardErrorF("loading config: %v", err)
	}

	env := opts.env
	if env == "" {
		env = cfg.DefaultEnvironment
	}

	ruleDirs := cfg.RulePaths
	if opts.rulesDir != "" {
		ruleDirs = []string{opts.rulesDir}
	}

	var allRules []*rules.Rule
	for _, dir := range ruleDirs {
		rs, err := rules.LoadDir(dir, rules.LoadOptions{Env: env, Stat: opts.stat})
		if err != nil {
			return NewStandardErrorF("loading rules from %s: %v", dir, err)
		}
		allRules = append(allRules, rs...)
	}

	var allFindings []report.Finding
	for _, path := range args {
		cat, err := catalog.LoadFile(path, catalog.LoadOptions{Lcache: true})
		if err != nil {
			return NewStandardErrorF("%s: %v", path, err)
		}
		catName := catNameOf(path)

		var perCatalog []report.Finding
		for _, e := range cat.Entries() {
			if e.Obsolete() {
				continue
			}
			for _, r := range allRules {
				matches := r.Process(e, catName, env, opts.nofilter)
				if len(matches) == 0 {
					continue
				}
				perCatalog = append(perCatalog, report.FromMatches(catName, r.Ident, r.Hint, e.Key(), matches)...)
			}
		}
		report.Summary(logging.Log(), len(perCatalog), catName)
		allFindings = append(allFindings, perCatalog...)
	}

	if opts.json {
		if err := report.EmitJSON(cmd.OutOrStdout(), allFindings); err != nil {
			return NewStandardErrorF("emitting JSON: %v", err)
		}
	} else {
		report.Print(cmd.OutOrStdout(), allFindings)
	}

	if opts.stat {
		rules.PrintStat(os.Stderr, allRules)
	}

	if len(allFindings) > 0 {
		return NewStandardErrorF("%d failure(s) found", len(allFindings))
	}
	return nil
}
