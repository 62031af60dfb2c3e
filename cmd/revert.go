package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitefix/internal/journal"
	"github.com/ziadkadry99/sitefix/internal/progress"
	"github.com/ziadkadry99/sitefix/internal/revert"
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Revert a dynamic-app layout back to a flat static mirror",
	Long:  `Moves template pages back to the mirror root, moves static/assets back
to assets, restores resource links in the root pages, and deletes the backend
files and directories listed in the config. Steps whose input is missing are
skipped and reported.`,
	Args: cobra.NoArgs,
	RunE: runRevert,
}

func init() {
	revertCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	revertCmd.Flags().Bool("force-static", false, "remove the static directory even when it is not empty")
	rootCmd.AddCommand(revertCmd)
}

func runRevert(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	forceStatic, _ := cmd.Flags().GetBool("force-static")
	out := cmd.OutOrStdout()

	if !yes && !dryRun {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Revert %s to a static layout and delete backend files", cfg.Root),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
			return fmt.Errorf("confirmation: %w", err)
		}
	}

	rc := cfg.Revert
	rep, err := revert.Revert(cmd.Context(), revert.Options{
		Root:              cfg.Root,
		TemplatesDir:      rc.TemplatesDir,
		SkipTemplateDirs:  rc.SkipTemplateDirs,
		StaticAssetsDir:   rc.StaticAssetsDir,
		AssetsDir:         rc.AssetsDir,
		StaticDir:         rc.StaticDir,
		ForceRemoveStatic: rc.ForceRemoveStatic || forceStatic,
		LinkGlob:          rc.LinkGlob,
		Rewrites:          rc.Rewrites,
		BackendFiles:      rc.BackendFiles,
		BackendDirs:       rc.BackendDirs,
		DryRun:            dryRun,
		Logger:            logger,
		Progress:          progress.NewReporter("Restoring links"),
	})
	if rep != nil {
		printReport(cmd, rep)
	}
	if err != nil {
		recordRun(cmd.Context(), journal.Run{
			Command:      "revert",
			Target:       cfg.Root,
			Status:       journal.StatusFailed,
			Summary:      err.Error(),
			ChangedFiles: rep.ChangedFiles(),
		})
		return fmt.Errorf("reverting %s: %w", cfg.Root, err)
	}

	changed := rep.ChangedFiles()
	status := journal.StatusChanged
	if len(changed) == 0 {
		status = journal.StatusNoop
	}
	summary := fmt.Sprintf("%d moved, %d removed, %d rewritten, %d skipped",
		rep.Count(revert.ActionMove), rep.Count(revert.ActionRemove),
		rep.Count(revert.ActionRewrite), rep.Count(revert.ActionSkip))
	recordRun(cmd.Context(), journal.Run{
		Command:      "revert",
		Target:       cfg.Root,
		Status:       status,
		Summary:      summary,
		ChangedFiles: changed,
	})

	if dryRun {
		fmt.Fprintln(out, "Dry run, nothing was changed.")
	} else {
		fmt.Fprintln(out, "Reversion to static structure complete.")
	}
	return nil
}

func printReport(cmd *cobra.Command, rep *revert.Report) {
	out := cmd.OutOrStdout()
	for _, s := range rep.Steps {
		line := fmt.Sprintf("  %-7s %s", s.Action, s.Path)
		if s.Target != "" {
			line += " -> " + s.Target
		}
		if s.Detail != "" {
			line += " (" + s.Detail + ")"
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
}
