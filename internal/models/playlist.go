// Package models holds shared data structures.
package models

import (
	"sync"
	"time"

	"playlistarr/internal/domain/consts"
)

// Playlist is the result of listing a source URL.
type Playlist struct {
	SourceURL string          `json:"source_url"`
	Title     string          `json:"title"`
	Items     []*PlaylistItem `json:"items"`
}

// PlaylistItem is one downloadable entry of a playlist.
//
// Identity fields are set once by the lister. Status, progress and error are
// guarded by a mutex since command output scanners report progress from their
// own goroutines.
type PlaylistItem struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Duration      int64     `json:"duration"`
	UploadDate    time.Time `json:"upload_date"`
	PlaylistIndex int       `json:"playlist_index"`
	PlaylistTitle string    `json:"playlist_title"`
	Selected      bool      `json:"selected"`

	mu         sync.RWMutex
	status     consts.DownloadStatus
	progress   float64
	err        error
	outputPath string
}

// NewPlaylistItem returns a pending, selected item.
func NewPlaylistItem(id, url string) *PlaylistItem {
	return &PlaylistItem{
		ID:       id,
		URL:      url,
		Selected: true,
		status:   consts.DLStatusPending,
	}
}

// Status returns the current download status.
func (i *PlaylistItem) Status() consts.DownloadStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

// Progress returns the current progress fraction (0.0-1.0).
func (i *PlaylistItem) Progress() float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.progress
}

// Err returns the last error recorded for the item.
func (i *PlaylistItem) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// OutputPath returns the final file path once the item completed.
func (i *PlaylistItem) OutputPath() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.outputPath
}

// SetProgress records a new progress fraction. Values are clamped to
// [0.0, 1.0] and may never decrease.
func (i *PlaylistItem) SetProgress(frac float64) float64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	if frac < 0.0 {
		frac = 0.0
	}
	if frac > 1.0 {
		frac = 1.0
	}
	if frac > i.progress {
		i.progress = frac
	}
	return i.progress
}

// MarkQueued marks the item as waiting for a worker.
func (i *PlaylistItem) MarkQueued() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = consts.DLStatusQueued
}

// MarkSkipped marks the item as skipped before dispatch (e.g. found in the
// download archive).
func (i *PlaylistItem) MarkSkipped() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = consts.DLStatusSkipped
	i.err = nil
}

// MarkDownloading marks the item as actively transferring.
func (i *PlaylistItem) MarkDownloading() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = consts.DLStatusDownloading
	i.err = nil
}

// MarkCompleted marks the item as finished with its final file path.
func (i *PlaylistItem) MarkCompleted(outputPath string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = consts.DLStatusCompleted
	i.progress = 1.0
	i.err = nil
	i.outputPath = outputPath
}

// MarkFailed marks the item as terminally failed.
func (i *PlaylistItem) MarkFailed(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = consts.DLStatusFailed
	i.err = err
}

// Update returns a status update snapshot of the item.
func (i *PlaylistItem) Update() StatusUpdate {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return StatusUpdate{
		ItemID:     i.ID,
		ItemURL:    i.URL,
		Status:     i.status,
		Progress:   i.progress,
		OutputPath: i.outputPath,
		Err:        i.err,
	}
}

// SelectedItems filters a playlist down to its selected entries.
func SelectedItems(items []*PlaylistItem) []*PlaylistItem {
	selected := make([]*PlaylistItem, 0, len(items))
	for _, item := range items {
		if item != nil && item.Selected {
			selected = append(selected, item)
		}
	}
	return selected
}
