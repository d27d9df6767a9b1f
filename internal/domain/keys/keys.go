// Package keys holds various keys for software operations, such as terminal input keys and internal Viper keys.
package keys

// Source input.
const (
	URLs      string = "urls"
	URLFile   string = "url-file"
	BatchFile string = "batch-file"
	Selection string = "select"
)

// Files and directories.
const (
	OutputDir       string = "output-dir"
	PlaylistFolders string = "playlist-folders"
	ConfigFile      string = "config-file"
)

// Archive.
const (
	ArchiveEnabled string = "archive"
	ArchivePath    string = "archive-file"
	ArchiveStrict  string = "archive-strict"
)

// Downloading.
const (
	Concurrency            string = "concurrency"
	Preset                 string = "preset"
	MergeOutputExt         string = "merge-ext"
	RateLimit              string = "rate-limit"
	PlaylistStart          string = "playlist-start"
	PlaylistEnd            string = "playlist-end"
	DLRetries              string = "dl-retries"
	DLRetryInterval        string = "dl-retry-interval"
	CookieSource           string = "cookie-source"
	CookiePath             string = "cookie-file"
	ExternalDownloader     string = "external-downloader"
	ExternalDownloaderArgs string = "external-downloader-args"
	RestrictFilenames      string = "restrict-filenames"
	MaxFilesize            string = "max-filesize"
)

// Display.
const (
	ProgressMode string = "progress"
	HistoryLimit string = "limit"
)

// Logging
const (
	DebugLevel string = "debug"
)

// Serve mode.
const (
	ServerPort string = "port"
)
