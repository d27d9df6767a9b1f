package downloads

import (
	"fmt"
	"path/filepath"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"

	"github.com/kennygrant/sanitize"
)

// FormatForPreset maps a quality preset to a yt-dlp format selector.
func FormatForPreset(preset string) string {
	switch preset {
	case consts.PresetBest:
		return "best"
	case consts.PresetBestVA:
		return "bestvideo+bestaudio/best"
	case consts.PresetAudio:
		return "bestaudio"
	}
	if isDigits(preset) {
		return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", preset, preset)
	}
	return "best"
}

// outputTemplate renders the output filename template for one item. Items
// download individually with --no-playlist, so the playlist index from the
// listing phase is baked in rather than left for yt-dlp to resolve.
func outputTemplate(item *models.PlaylistItem) string {
	if item.PlaylistIndex > 0 {
		return fmt.Sprintf("%03d - %s", item.PlaylistIndex, consts.FallbackFilename)
	}
	return consts.FallbackFilename
}

// itemOutputDir returns the directory an item downloads into, appending a
// sanitized per-playlist subfolder when enabled.
func itemOutputDir(job *models.JobConfig, item *models.PlaylistItem) string {
	if job.PlaylistFolders && item.PlaylistTitle != "" {
		return filepath.Join(job.OutputDir, sanitize.BaseName(item.PlaylistTitle))
	}
	return job.OutputDir
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
