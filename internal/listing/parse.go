package listing

import (
	"encoding/json"
	"time"

	"playlistarr/internal/models"

	"github.com/araddon/dateparse"
)

// flatPlaylist matches the top level of yt-dlp's flat playlist JSON output.
type flatPlaylist struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Entries []flatEntry `json:"entries"`
}

// flatEntry matches one entry of the flat playlist output.
type flatEntry struct {
	Type       string  `json:"_type"`
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"upload_date"`
	Timestamp  int64   `json:"timestamp"`
}

// parsePlaylist converts flat playlist JSON into a playlist model. Entries
// without any usable identifier and nested playlist entries are dropped, and
// duplicate identifiers keep their first occurrence.
func parsePlaylist(data []byte, sourceURL string, job *models.JobConfig) (*models.Playlist, error) {
	var flat flatPlaylist
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		SourceURL: sourceURL,
		Title:     flat.Title,
		Items:     make([]*models.PlaylistItem, 0, len(flat.Entries)),
	}

	startIndex := 1
	if job != nil && job.PlaylistStart > 0 {
		startIndex = job.PlaylistStart
	}

	seen := make(map[string]struct{}, len(flat.Entries))
	for _, entry := range flat.Entries {
		if entry.Type == "playlist" {
			continue
		}

		id := firstNonEmpty(entry.ID, entry.URL, entry.WebpageURL)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		item := models.NewPlaylistItem(id, firstNonEmpty(entry.WebpageURL, entry.URL, entry.ID))
		item.Title = firstNonEmpty(entry.Title, id)
		item.Duration = int64(entry.Duration)
		item.UploadDate = parseUploadDate(entry)
		item.PlaylistIndex = startIndex + len(playlist.Items)
		item.PlaylistTitle = flat.Title

		playlist.Items = append(playlist.Items, item)
	}

	return playlist, nil
}

// parseUploadDate resolves an entry's upload time from whichever field the
// extractor filled in.
func parseUploadDate(entry flatEntry) time.Time {
	if entry.UploadDate != "" {
		// yt-dlp renders upload dates as YYYYMMDD
		if t, err := time.Parse("20060102", entry.UploadDate); err == nil {
			return t
		}
		if t, err := dateparse.ParseAny(entry.UploadDate); err == nil {
			return t
		}
	}
	if entry.Timestamp > 0 {
		return time.Unix(entry.Timestamp, 0).UTC()
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
