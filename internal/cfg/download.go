package cfg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"playlistarr/internal/app"
	"playlistarr/internal/cookies"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/domain/keys"
	"playlistarr/internal/domain/setup"
	"playlistarr/internal/downloads"
	"playlistarr/internal/file"
	"playlistarr/internal/models"
	"playlistarr/internal/progress"
	"playlistarr/internal/utils/logging"
	"playlistarr/internal/validation"

	"github.com/spf13/cobra"
)

// downloadCmd downloads playlists from URLs, a URL file or a batch file.
func downloadCmd(ctx context.Context, coord *app.Coordinator) *cobra.Command {
	var (
		jf           jobFlags
		urlFile      string
		batchFile    string
		selection    string
		progressMode string
	)

	dlCmd := &cobra.Command{
		Use:   "download [urls...]",
		Short: "Download playlists from URLs, a URL file or a batch file.",
		Long:  "Downloads every entry of the given playlist URLs. URLs come from arguments, from a file with one URL per line, or from a YAML batch file describing multiple jobs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && urlFile == "" && batchFile == "" {
				return errors.New("must enter at least one URL, a URL file or a batch file")
			}
			if err := validation.ValidateProgressMode(progressMode); err != nil {
				return err
			}

			if batchFile != "" {
				if len(args) > 0 || urlFile != "" {
					return errors.New("batch files cannot be combined with URLs or URL files")
				}
				return runBatch(ctx, cmd, coord, batchFile, &jf, selection, progressMode)
			}

			urls := args
			if urlFile != "" {
				lines, err := file.ReadFileLines(urlFile)
				if err != nil {
					return err
				}
				urls = append(urls, lines...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs found in %q", urlFile)
			}

			job := jf.jobConfig()
			return runDownload(ctx, coord, urls, &job, selection, progressMode)
		},
	}

	setJobFlags(dlCmd, &jf)
	dlCmd.Flags().StringVarP(&urlFile, keys.URLFile, "f", "", "File containing one playlist URL per line")
	dlCmd.Flags().StringVarP(&batchFile, keys.BatchFile, "b", "", "YAML batch file of download jobs")
	dlCmd.Flags().StringVar(&selection, keys.Selection, "", "Playlist entries to download (e.g. '1,4-7'), applied per playlist")
	dlCmd.Flags().StringVar(&progressMode, keys.ProgressMode, consts.ProgressBars, "Progress display mode (bars, log, quiet)")

	return dlCmd
}

// runBatch runs every job of a batch file in order. Flags the user set
// explicitly override the batch file's values.
func runBatch(ctx context.Context, cmd *cobra.Command, coord *app.Coordinator, path string, jf *jobFlags, selection, progressMode string) error {
	jobs, err := file.ReadBatchFile(path)
	if err != nil {
		return err
	}

	var errs []error
	for i := range jobs {
		job := jobs[i].JobConfig
		jf.apply(cmd, &job)

		logging.I("Batch job %d/%d: %d URL(s)", i+1, len(jobs), len(jobs[i].SourceURLs()))
		if err := runDownload(ctx, coord, jobs[i].SourceURLs(), &job, selection, progressMode); err != nil {
			if ctx.Err() != nil {
				return err
			}
			errs = append(errs, fmt.Errorf("batch job %d: %w", i+1, err))
			logging.E(0, "Batch job %d/%d failed: %v", i+1, len(jobs), err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d batch job(s) failed: %w", len(errs), len(jobs), errors.Join(errs...))
	}
	return nil
}

// runDownload launches one download session and renders it until it finishes.
func runDownload(ctx context.Context, coord *app.Coordinator, urls []string, job *models.JobConfig, selection, progressMode string) error {
	if err := downloads.CheckAvailable(job.ExternalDownloader); err != nil {
		return err
	}
	exportCookies(ctx, job, urls)

	listCtx, cancel := context.WithTimeout(ctx, consts.ListingTimeout)
	playlists, err := coord.List(listCtx, urls, job)
	cancel()
	if err != nil {
		return err
	}

	if err := applySelection(playlists, selection); err != nil {
		return err
	}

	sess, err := coord.Start(ctx, playlists, job)
	if err != nil {
		return err
	}

	progress.NewConsole(progressMode).Run(sess.Items(), sess.Events())

	totals := sess.Wait()
	switch sess.Status() {
	case consts.SessionFailed:
		return sess.Err()
	case consts.SessionCancelled:
		return fmt.Errorf("run cancelled after %d of %d item(s) completed", totals.Completed, len(sess.Items()))
	}
	if totals.Failed > 0 {
		return fmt.Errorf("%d of %d item(s) failed to download", totals.Failed, len(sess.Items()))
	}
	return nil
}

// applySelection narrows each playlist to the 1-based entry positions in
// expr, as printed by the list command.
func applySelection(playlists []*models.Playlist, expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	for _, p := range playlists {
		sel, err := validation.ParseSelection(expr, len(p.Items))
		if err != nil {
			return err
		}
		for i, item := range p.Items {
			_, keep := sel[i+1]
			item.Selected = keep
		}
		logging.D(1, "Selected entries %v of %q", validation.SelectionIndexes(sel), p.SourceURL)
	}
	return nil
}

// exportCookies writes browser cookies to the shared cookie file when the job
// names a cookie source without a cookie file. When nothing could be exported
// the downloader falls back to its own browser extraction.
func exportCookies(ctx context.Context, job *models.JobConfig, urls []string) {
	if job.CookieSource == "" || job.CookiePath != "" {
		return
	}

	path, err := cookies.NewManager().ExportFile(ctx, setup.CookieFilePath, urls...)
	if err != nil {
		logging.W("Could not export browser cookies: %v", err)
		return
	}
	if path != "" {
		job.CookiePath = path
	}
}
