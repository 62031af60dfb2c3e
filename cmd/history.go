package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitefix/internal/db"
	"github.com/ziadkadry99/sitefix/internal/fileops"
	"github.com/ziadkadry99/sitefix/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded maintenance runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("id", "", "show a single run with its changed files")
	historyCmd.Flags().String("command", "", "only show runs of this command")
	historyCmd.Flags().String("status", "", "only show runs with this status (changed, noop, skipped, failed)")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	command, _ := cmd.Flags().GetString("command")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	path := inRoot(cfg.Journal.Path)
	if !fileops.Exists(path) {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	database, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	store := journal.NewStore(database)
	defer store.Close()

	if id != "" {
		return showRun(cmd, store, id)
	}

	runs, err := store.List(cmd.Context(), journal.Filter{
		Command: command,
		Status:  journal.Status(status),
		Limit:   limit,
	})
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tCOMMAND\tSTATUS\tTARGET\tSUMMARY")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Local().Format(time.DateTime), r.Command, r.Status, r.Target, r.Summary)
		if verbose && len(r.ChangedFiles) > 0 {
			fmt.Fprintf(tw, "\t\t\t\t\t%s\n", strings.Join(r.ChangedFiles, ", "))
		}
	}
	return tw.Flush()
}

func showRun(cmd *cobra.Command, store *journal.Store, id string) error {
	r, err := store.GetByID(cmd.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		return fmt.Errorf("no run with id %q", id)
	}
	if err != nil {
		return fmt.Errorf("reading run: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:     %s\n", r.ID)
	fmt.Fprintf(out, "Time:    %s\n", r.Timestamp.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Command: %s %s\n", r.Command, r.Target)
	fmt.Fprintf(out, "Status:  %s\n", r.Status)
	fmt.Fprintf(out, "Summary: %s\n", r.Summary)
	if len(r.ChangedFiles) == 0 {
		fmt.Fprintln(out, "No files changed.")
		return nil
	}
	fmt.Fprintln(out, "Changed files:")
	for _, f := range r.ChangedFiles {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
