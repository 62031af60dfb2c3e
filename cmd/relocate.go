package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitefix/internal/config"
	"github.com/ziadkadry99/sitefix/internal/journal"
	"github.com/ziadkadry99/sitefix/internal/relocate"
)

var relocateCmd = &cobra.Command{
	Use:   "relocate [file]",
	Short: "Reorder two marker-delimited sections of a page",
	Long:  `Finds two blocks of lines, each bounded by a start and an end marker,
and swaps them when they are not in the requested order. Everything outside
the blocks, including the lines between them, stays where it is.

With marker flags the blocks are given on the command line and a file is
required. With --rule a single configured rule is applied. Otherwise every
configured rule is applied in order, optionally limited to one file.`,
	Example: `  sitefix relocate
  sitefix relocate --rule testimonials-first
  sitefix relocate index.html --a-start "<!-- Start Most Sold" --a-end "<!-- End Most Sold" \
      --b-start "<!-- Start Testimonila" --b-end "<!-- End Testimonila" --order b-before-a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelocate,
}

func init() {
	relocateCmd.Flags().String("rule", "", "apply only the named rule from the config")
	relocateCmd.Flags().String("a-start", "", "start marker of block A")
	relocateCmd.Flags().String("a-end", "", "end marker of block A")
	relocateCmd.Flags().String("b-start", "", "start marker of block B")
	relocateCmd.Flags().String("b-end", "", "end marker of block B")
	relocateCmd.Flags().String("order", string(relocate.BBeforeA), "desired order: a-before-b or b-before-a")
	rootCmd.AddCommand(relocateCmd)
}

func runRelocate(cmd *cobra.Command, args []string) error {
	rules, err := selectRules(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, rule := range rules {
		if err := applyRule(cmd, out, rule); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d relocations failed", failed, len(rules))
	}
	return nil
}

// selectRules builds the rule list from flags, --rule, or the config.
func selectRules(cmd *cobra.Command, args []string) ([]config.Relocation, error) {
	flags := cmd.Flags()
	markerFlags := []string{"a-start", "a-end", "b-start", "b-end"}
	explicit := false
	for _, name := range markerFlags {
		if flags.Changed(name) {
			explicit = true
		}
	}
	ruleName, _ := flags.GetString("rule")
	orderStr, _ := flags.GetString("order")

	if explicit {
		if ruleName != "" {
			return nil, fmt.Errorf("--rule cannot be combined with marker flags")
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("a file is required when markers are given on the command line")
		}
		order, err := relocate.ParseOrder(orderStr)
		if err != nil {
			return nil, err
		}
		get := func(name string) relocate.Marker {
			v, _ := flags.GetString(name)
			return relocate.Marker(v)
		}
		rule := config.Relocation{
			Name:  "command-line",
			File:  args[0],
			A:     relocate.Block{Start: get("a-start"), End: get("a-end")},
			B:     relocate.Block{Start: get("b-start"), End: get("b-end")},
			Order: order,
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		return []config.Relocation{rule}, nil
	}

	if ruleName != "" {
		rule, ok := cfg.FindRelocation(ruleName)
		if !ok {
			return nil, fmt.Errorf("no relocation rule named %q in %s", ruleName, cfgFile)
		}
		if len(args) == 1 {
			rule.File = args[0]
		}
		if flags.Changed("order") {
			order, err := relocate.ParseOrder(orderStr)
			if err != nil {
				return nil, err
			}
			rule.Order = order
		}
		return []config.Relocation{rule}, nil
	}

	var rules []config.Relocation
	for _, r := range cfg.Relocations {
		if len(args) == 1 && r.File != args[0] {
			continue
		}
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		if len(args) == 1 {
			return nil, fmt.Errorf("no relocation rules configured for %s", args[0])
		}
		return nil, fmt.Errorf("no relocation rules configured; add one to %s or pass marker flags", cfgFile)
	}
	return rules, nil
}

func applyRule(cmd *cobra.Command, out io.Writer, rule config.Relocation) error {
	path := inRoot(rule.File)
	res, err := relocate.RelocateFile(path, rule.A, rule.B, rule.Order, relocate.FileOptions{
		DryRun: dryRun,
		Logger: logger,
	})

	run := journal.Run{Command: "relocate", Target: rule.File}
	fmt.Fprintf(out, "%s: %s\n", rule.Name, rule.File)
	if err == nil || errors.Is(err, relocate.ErrMarkerNotFound) || errors.Is(err, relocate.ErrInvalidBlockOrdering) {
		fmt.Fprintf(out, "  %s\n", res.Positions)
	}

	var nf *relocate.MarkerNotFoundError
	switch {
	case errors.As(err, &nf):
		fmt.Fprintf(out, "  unresolved markers, file not modified:\n")
		for _, role := range nf.Markers {
			fmt.Fprintf(out, "    %s: %q\n", role, nf.Text[role])
		}
		run.Status = journal.StatusFailed
		run.Summary = fmt.Sprintf("%s: %v", rule.Name, err)
	case err != nil:
		fmt.Fprintf(out, "  %v, file not modified\n", err)
		run.Status = journal.StatusFailed
		run.Summary = fmt.Sprintf("%s: %v", rule.Name, err)
	case res.Changed && dryRun:
		fmt.Fprintf(out, "  would reorder to %s (dry run)\n", rule.Order)
	case res.Changed:
		fmt.Fprintf(out, "  reordered: %s\n", rule.Order)
		run.Status = journal.StatusChanged
		run.Summary = fmt.Sprintf("%s: reordered %s", rule.Name, rule.Order)
		run.ChangedFiles = []string{rule.File}
	default:
		fmt.Fprintf(out, "  already in order (%s)\n", rule.Order)
		run.Status = journal.StatusNoop
		run.Summary = fmt.Sprintf("%s: already in order", rule.Name)
	}

	if run.Status != "" {
		recordRun(cmd.Context(), run)
	}
	return err
}
