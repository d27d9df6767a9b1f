package consts

// Tables
const (
	DBSessions     = "sessions"
	DBSessionItems = "session_items"
)

// Sessions
const (
	QSessID          = "id"
	QSessUUID        = "uuid"
	QSessSourceURL   = "source_url"
	QSessOutputDir   = "output_dir"
	QSessPreset      = "preset"
	QSessWorkerLimit = "worker_limit"
	QSessStatus      = "status"
	QSessCompleted   = "completed"
	QSessFailed      = "failed"
	QSessSkipped     = "skipped"
	QSessStartedAt   = "started_at"
	QSessEndedAt     = "ended_at"
)

// Session items
const (
	QItemID        = "id"
	QItemSessUUID  = "session_uuid"
	QItemItemID    = "item_id"
	QItemURL       = "url"
	QItemTitle     = "title"
	QItemIndex     = "playlist_index"
	QItemStatus    = "status"
	QItemProgress  = "progress"
	QItemError     = "error_message"
	QItemPath      = "output_path"
	QItemCreatedAt = "created_at"
	QItemUpdatedAt = "updated_at"
)

// DownloadStatus holds constant download status strings.
type DownloadStatus string

const (
	DLStatusPending     DownloadStatus = "pending"
	DLStatusSkipped     DownloadStatus = "skipped"
	DLStatusQueued      DownloadStatus = "queued"
	DLStatusDownloading DownloadStatus = "downloading"
	DLStatusCompleted   DownloadStatus = "completed"
	DLStatusFailed      DownloadStatus = "failed"
)

// Terminal reports whether the status is final for an item.
func (s DownloadStatus) Terminal() bool {
	switch s {
	case DLStatusSkipped, DLStatusCompleted, DLStatusFailed:
		return true
	}
	return false
}

// SessionStatus holds constant run session status strings.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionFailed    SessionStatus = "failed"
)
