package models

import "playlistarr/internal/domain/consts"

// StatusUpdate models one status or progress change of a playlist item.
type StatusUpdate struct {
	SessionID  string
	ItemID     string
	ItemURL    string
	Status     consts.DownloadStatus
	Progress   float64
	OutputPath string
	Err        error
}

// Terminal reports whether the update carries a final item status.
func (u StatusUpdate) Terminal() bool {
	return u.Status.Terminal()
}

// SessionTotals aggregates terminal item counts for a run.
type SessionTotals struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
