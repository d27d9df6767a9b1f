package cfg

import (
	"context"
	"fmt"

	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/domain/keys"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"github.com/spf13/cobra"
)

// historyCmd shows past download runs from the history database.
func historyCmd(s contracts.Store) *cobra.Command {
	var limit int

	histCmd := &cobra.Command{
		Use:   "history [run-uuid]",
		Short: "Show past download runs.",
		Long:  "Shows recent download runs. Pass a run UUID to show that run's per-item results.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss := s.SessionStore()

			ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
			defer cancel()

			if len(args) == 1 {
				return printRunDetail(ctx, ss, args[0])
			}
			return printRunList(ctx, ss, limit)
		},
	}

	histCmd.Flags().IntVar(&limit, keys.HistoryLimit, 25, "Maximum number of runs to show")
	return histCmd
}

// printRunList prints one line per recorded run, most recent first.
func printRunList(ctx context.Context, ss contracts.SessionStore, limit int) error {
	runs, err := ss.GetSessions(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		logging.I("No download runs recorded yet")
		return nil
	}

	fmt.Printf("\n%-36s  %-10s  %9s  %6s  %7s  %-19s  %s\n",
		"UUID", "STATUS", "COMPLETED", "FAILED", "SKIPPED", "STARTED", "SOURCE")
	for _, r := range runs {
		fmt.Printf("%-36s  %-10s  %9d  %6d  %7d  %-19s  %s\n",
			r.UUID, r.Status, r.Completed, r.Failed, r.Skipped,
			r.StartedAt.Format("2006-01-02 15:04:05"), r.SourceURL)
	}
	fmt.Println()
	return nil
}

// printRunDetail prints one run and its per-item results.
func printRunDetail(ctx context.Context, ss contracts.SessionStore, uuid string) error {
	rec, hasRows, err := ss.GetSession(ctx, uuid)
	if err != nil {
		return err
	}
	if !hasRows {
		return fmt.Errorf("no run found with UUID %q", uuid)
	}

	fmt.Printf("\n%sRun %s%s\nSource: %s\nOutput Directory: %s\nPreset: %s\nConcurrency: %d\nStatus: %s\nStarted: %s\n",
		consts.ColorGreen, rec.UUID, consts.ColorReset,
		rec.SourceURL, rec.OutputDir, rec.Preset, rec.WorkerLimit, rec.Status,
		rec.StartedAt.Format("2006-01-02 15:04:05"))
	if !rec.EndedAt.IsZero() {
		fmt.Printf("Ended: %s (%.1fs)\n",
			rec.EndedAt.Format("2006-01-02 15:04:05"), rec.EndedAt.Sub(rec.StartedAt).Seconds())
	}
	fmt.Printf("Totals: %d completed, %d failed, %d skipped\n\n", rec.Completed, rec.Failed, rec.Skipped)

	items, err := ss.GetSessionItems(ctx, uuid)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Println(itemLine(it))
	}
	fmt.Println()
	return nil
}

// itemLine renders one history item row.
func itemLine(it *models.SessionItemRecord) string {
	label := it.Title
	if label == "" {
		label = it.URL
	}

	line := fmt.Sprintf("  [%s] %d. %s", it.Status, it.PlaylistIndex, label)
	switch {
	case it.ErrorMessage != "":
		line += " - " + it.ErrorMessage
	case it.OutputPath != "":
		line += " -> " + it.OutputPath
	}
	return line
}
