package models

import (
	"time"

	"playlistarr/internal/domain/consts"
)

// JobConfig holds the immutable configuration of one download run.
type JobConfig struct {
	WorkerLimit     int    `json:"worker_limit" yaml:"concurrency"`
	Preset          string `json:"preset" yaml:"preset"`
	OutputDir       string `json:"output_dir" yaml:"output-dir"`
	PlaylistFolders bool   `json:"playlist_folders" yaml:"playlist-folders"`
	PlaylistStart   int    `json:"playlist_start" yaml:"playlist-start"`
	PlaylistEnd     int    `json:"playlist_end" yaml:"playlist-end"`

	RateLimit   string `json:"rate_limit" yaml:"rate-limit"`
	MaxFilesize string `json:"max_filesize" yaml:"max-filesize"`

	CookieSource string `json:"cookie_source" yaml:"cookie-source"`
	CookiePath   string `json:"cookie_path" yaml:"cookie-file"`

	ArchiveEnabled bool   `json:"archive_enabled" yaml:"archive"`
	ArchivePath    string `json:"archive_path" yaml:"archive-file"`
	ArchiveStrict  bool   `json:"archive_strict" yaml:"archive-strict"`

	MaxAttempts   int           `json:"max_attempts" yaml:"dl-retries"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"dl-retry-interval"`

	ExternalDownloader     string `json:"external_downloader" yaml:"external-downloader"`
	ExternalDownloaderArgs string `json:"external_downloader_args" yaml:"external-downloader-args"`

	MergeOutputExt    string `json:"merge_ext" yaml:"merge-ext"`
	RestrictFilenames bool   `json:"restrict_filenames" yaml:"restrict-filenames"`
}

// DefaultJobConfig returns a job configuration with program defaults applied.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		WorkerLimit:       consts.DefaultConcurrency,
		Preset:            consts.DefaultPreset,
		ArchiveEnabled:    true,
		MaxAttempts:       consts.DefaultMaxAttempts,
		RetryInterval:     consts.DefaultRetryInterval,
		MergeOutputExt:    consts.DefaultMergeExt,
		RestrictFilenames: true,
	}
}

// ApplyDefaults fills zero-valued fields with program defaults.
func (j *JobConfig) ApplyDefaults() {
	if j.WorkerLimit == 0 {
		j.WorkerLimit = consts.DefaultConcurrency
	}
	if j.Preset == "" {
		j.Preset = consts.DefaultPreset
	}
	if j.MaxAttempts == 0 {
		j.MaxAttempts = consts.DefaultMaxAttempts
	}
	if j.RetryInterval == 0 {
		j.RetryInterval = consts.DefaultRetryInterval
	}
	if j.MergeOutputExt == "" {
		j.MergeOutputExt = consts.DefaultMergeExt
	}
}
