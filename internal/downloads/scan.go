package downloads

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"playlistarr/internal/domain/command"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/downloads/downloaders"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
)

// scanResult carries what the output scanner extracted from one command run.
type scanResult struct {
	filename  string
	lastError string
}

// progressPayload matches the compacted progress template JSON lines.
type progressPayload struct {
	PercentStr         string  `json:"percent_str"`
	DownloadedBytes    float64 `json:"downloaded_bytes"`
	TotalBytes         float64 `json:"total_bytes"`
	TotalBytesEstimate float64 `json:"total_bytes_estimate"`
	Speed              float64 `json:"speed"`
}

// scanCommandOutput scans yt-dlp output lines for progress, errors and the
// completed filename, sending one result after the line channel closes.
func scanCommandOutput(lineChan <-chan string, resultChan chan<- scanResult, item *models.PlaylistItem, job *models.JobConfig, progress func(float64)) {
	var (
		res                scanResult
		usingAria          = job.ExternalDownloader == command.DownloaderAria
		totalItems         int
		downloadedItems    int
		currentAriaPercent float64
	)

	for line := range lineChan {
		if line == "" {
			continue
		}
		logging.D(4, "Download terminal output for %q: %q", item.URL, line)

		if strings.Contains(line, "ERROR") {
			res.lastError = line
		}

		// Aria2 progress parsing
		if usingAria {
			gotLine, itemsFound, itemsDone, pct :=
				downloaders.Aria2OutputParser(line, item.URL, totalItems, downloadedItems, currentAriaPercent)

			totalItems = itemsFound
			downloadedItems = itemsDone

			if gotLine {
				currentAriaPercent = pct
				progress(pct / 100.0)
				continue
			}
		} else if strings.HasPrefix(line, "{") {
			if frac, ok := parseProgressLine(line); ok {
				progress(frac)
				continue
			}
		}

		// Detect completed filename
		if res.filename == "" && filepath.IsAbs(line) && isMediaExt(filepath.Ext(line)) {
			res.filename = line
		}
	}

	resultChan <- res
}

// parseProgressLine converts one progress template JSON line into a progress
// fraction. Byte counts are preferred, the rendered percent string is the
// fallback.
func parseProgressLine(line string) (float64, bool) {
	var p progressPayload
	if err := json.Unmarshal([]byte(line), &p); err != nil {
		return 0, false
	}

	total := p.TotalBytes
	if total <= 0 {
		total = p.TotalBytesEstimate
	}
	if total > 0 && p.DownloadedBytes >= 0 {
		return p.DownloadedBytes / total, true
	}

	pctStr := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p.PercentStr), "%"))
	if pct, err := strconv.ParseFloat(pctStr, 64); err == nil {
		return pct / 100.0, true
	}
	return 0, false
}

// isMediaExt reports whether ext matches a known video or audio extension.
func isMediaExt(ext string) bool {
	for _, e := range consts.AllVidExtensions {
		if ext == e {
			return true
		}
	}
	for _, e := range consts.AllAudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
