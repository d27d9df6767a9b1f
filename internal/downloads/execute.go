package downloads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
)

// executeDownload runs the download command and waits for completion,
// returning the downloaded file path.
func executeDownload(ctx context.Context, cmd *exec.Cmd, item *models.PlaylistItem, job *models.JobConfig, progress func(float64)) (string, error) {
	if cmd == nil {
		return "", fmt.Errorf("no command built for URL %s", item.URL)
	}

	// Set process group to allow killing children processes (e.g. Aria2c)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("stderr pipe error: %w", err)
	}

	lineChan := make(chan string, 100)
	resultChan := make(chan scanResult, 1)

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command: %w", err)
	}

	// Merge stdout and stderr into lineChan, closed at process exit so the
	// scanner below can finish.
	go func() {
		defer close(lineChan)
		scanner := bufio.NewScanner(io.MultiReader(stdout, stderr))
		for scanner.Scan() {
			select {
			case lineChan <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	go scanCommandOutput(lineChan, resultChan, item, job, progress)

	// Wait for completion or cancel
	select {
	case <-ctx.Done():
		// End the command
		if err := cmd.Cancel(); err != nil {
			if err = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
				logging.E(0, "Failed to kill process %v: %v", cmd.Process.Pid, err)
			}
		}
		_ = cmd.Wait()
		return "", ctx.Err()

	case res := <-resultChan:
		if err := cmd.Wait(); err != nil {
			if res.lastError != "" {
				return "", fmt.Errorf("yt-dlp failed: %w: %s", err, res.lastError)
			}
			return "", fmt.Errorf("yt-dlp failed: %w", err)
		}
		if res.filename == "" {
			return "", errors.New("no output filename captured")
		}

		// Ensure file is fully written
		if err := waitForFile(res.filename, consts.FileWaitTimeout); err != nil {
			return "", err
		}
		if err := verifyDownload(res.filename); err != nil {
			return "", err
		}
		return res.filename, nil
	}
}
