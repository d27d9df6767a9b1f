package models

import (
	"time"

	"playlistarr/internal/domain/consts"
)

// SessionRecord is the database row for one download run.
//
// Matches the order of the DB table, do not alter.
type SessionRecord struct {
	ID          int64                `json:"id" db:"id"`
	UUID        string               `json:"uuid" db:"uuid"`
	SourceURL   string               `json:"source_url" db:"source_url"`
	OutputDir   string               `json:"output_dir" db:"output_dir"`
	Preset      string               `json:"preset" db:"preset"`
	WorkerLimit int                  `json:"worker_limit" db:"worker_limit"`
	Status      consts.SessionStatus `json:"status" db:"status"`
	Completed   int                  `json:"completed" db:"completed"`
	Failed      int                  `json:"failed" db:"failed"`
	Skipped     int                  `json:"skipped" db:"skipped"`
	StartedAt   time.Time            `json:"started_at" db:"started_at"`
	EndedAt     time.Time            `json:"ended_at" db:"ended_at"`
}

// SessionItemRecord is the database row for one item of a run.
//
// Matches the order of the DB table, do not alter.
type SessionItemRecord struct {
	ID            int64                 `json:"id" db:"id"`
	SessionUUID   string                `json:"session_uuid" db:"session_uuid"`
	ItemID        string                `json:"item_id" db:"item_id"`
	URL           string                `json:"url" db:"url"`
	Title         string                `json:"title" db:"title"`
	PlaylistIndex int                   `json:"playlist_index" db:"playlist_index"`
	Status        consts.DownloadStatus `json:"status" db:"status"`
	Progress      float64               `json:"progress" db:"progress"`
	ErrorMessage  string                `json:"error_message" db:"error_message"`
	OutputPath    string                `json:"output_path" db:"output_path"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at" db:"updated_at"`
}

// Record snapshots a playlist item into its database row form.
func (i *PlaylistItem) Record(sessionUUID string) SessionItemRecord {
	i.mu.RLock()
	defer i.mu.RUnlock()

	errMsg := ""
	if i.err != nil {
		errMsg = i.err.Error()
	}

	return SessionItemRecord{
		SessionUUID:   sessionUUID,
		ItemID:        i.ID,
		URL:           i.URL,
		Title:         i.Title,
		PlaylistIndex: i.PlaylistIndex,
		Status:        i.status,
		Progress:      i.progress,
		ErrorMessage:  errMsg,
		OutputPath:    i.outputPath,
	}
}
