package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitefix/internal/journal"
	"github.com/ziadkadry99/sitefix/internal/progress"
	"github.com/ziadkadry99/sitefix/internal/promote"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Replace a page with another and repoint links to it",
	Long:  `Copies the content of --from over --to, then rewrites the configured
links (by default href="index-1.html" to href="index.html") in every page
matching the link glob.`,
	Args: cobra.NoArgs,
	RunE: runPromote,
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Copy a page over another without touching links",
	Args:  cobra.NoArgs,
	RunE:  runRestore,
}

func init() {
	for _, c := range []*cobra.Command{promoteCmd, restoreCmd} {
		c.Flags().String("from", "", "page to copy (overrides config)")
		c.Flags().String("to", "", "page to overwrite (overrides config)")
	}
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(restoreCmd)
}

func promoteOptions(cmd *cobra.Command) promote.Options {
	opts := promote.Options{
		Root:     cfg.Root,
		From:     cfg.Promote.From,
		To:       cfg.Promote.To,
		LinkGlob: cfg.Promote.LinkGlob,
		Rewrites: cfg.Promote.Rewrites,
		DryRun:   dryRun,
		Logger:   logger,
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		opts.From = v
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		opts.To = v
	}
	return opts
}

func runPromote(cmd *cobra.Command, args []string) error {
	opts := promoteOptions(cmd)
	opts.Progress = progress.NewReporter("Updating links")
	out := cmd.OutOrStdout()

	res, err := promote.Promote(cmd.Context(), opts)
	run := journal.Run{Command: "promote", Target: opts.To}
	if errors.Is(err, promote.ErrSourceMissing) {
		fmt.Fprintf(out, "Skipped: %s not found, %s left unchanged.\n", opts.From, opts.To)
		run.Status = journal.StatusSkipped
		run.Summary = fmt.Sprintf("%s not found", opts.From)
		recordRun(cmd.Context(), run)
		return nil
	}
	if err != nil {
		return fmt.Errorf("promoting %s: %w", opts.From, err)
	}

	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	fmt.Fprintf(out, "%s %s from %s.\n", verb, opts.To, opts.From)
	for _, m := range res.Modified {
		fmt.Fprintf(out, "  %s (%d links)\n", m.Path, m.Replacements)
	}
	fmt.Fprintf(out, "Finished. Modified %d of %d files.\n", len(res.Modified), res.Scanned)

	run.Status = journal.StatusChanged
	run.Summary = fmt.Sprintf("promoted %s over %s, %d files relinked", opts.From, opts.To, len(res.Modified))
	run.ChangedFiles = res.ChangedFiles(opts.To)
	recordRun(cmd.Context(), run)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	opts := promoteOptions(cmd)
	out := cmd.OutOrStdout()

	_, err := promote.Restore(cmd.Context(), opts)
	run := journal.Run{Command: "restore", Target: opts.To}
	if errors.Is(err, promote.ErrSourceMissing) {
		fmt.Fprintf(out, "Error: %s not found, %s left unchanged.\n", opts.From, opts.To)
		run.Status = journal.StatusSkipped
		run.Summary = fmt.Sprintf("%s not found", opts.From)
		recordRun(cmd.Context(), run)
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring %s: %w", opts.To, err)
	}

	if dryRun {
		fmt.Fprintf(out, "Would restore %s from %s.\n", opts.To, opts.From)
		return nil
	}
	fmt.Fprintf(out, "%s restored from %s.\n", opts.To, opts.From)
	run.Status = journal.StatusChanged
	run.Summary = fmt.Sprintf("restored %s from %s", opts.To, opts.From)
	run.ChangedFiles = []string{opts.To}
	recordRun(cmd.Context(), run)
	return nil
}
