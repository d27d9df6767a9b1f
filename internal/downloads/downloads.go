// Package downloads runs yt-dlp commands for single playlist items and
// reports their progress.
package downloads

import (
	"context"
	"fmt"
	"os/exec"

	"playlistarr/internal/domain/command"
	"playlistarr/internal/models"
)

// Client executes downloads through the yt-dlp binary.
type Client struct{}

// NewClient returns a download client.
func NewClient() *Client {
	return &Client{}
}

// Download performs one download attempt for a playlist item and returns the
// final file path. Progress fractions (0.0-1.0) are reported through the
// progress callback as command output is parsed. Failures are classified into
// transient, permanent and fatal errors so callers can decide on retries.
func (c *Client) Download(ctx context.Context, item *models.PlaylistItem, job *models.JobConfig, progress func(float64)) (string, error) {
	cmd := buildCommand(ctx, item, job)

	path, err := executeDownload(ctx, cmd, item, job, progress)
	if err != nil {
		return "", Classify(err)
	}
	return path, nil
}

// CheckAvailable verifies the required download binaries exist in PATH.
func CheckAvailable(externalDownloader string) error {
	if _, err := exec.LookPath(command.YTDLP); err != nil {
		return fmt.Errorf("%s binary not found in PATH: %w", command.YTDLP, err)
	}
	if externalDownloader != "" {
		if _, err := exec.LookPath(externalDownloader); err != nil {
			return fmt.Errorf("external downloader %q not found in PATH: %w", externalDownloader, err)
		}
	}
	return nil
}
