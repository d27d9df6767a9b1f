// Package command holds constant argument strings for external programs.
package command

// General
const (
	AfterMove            = "after_move:%(filepath)s"
	CookiesFromBrowser   = "--cookies-from-browser"
	CookiePath           = "--cookies"
	ExternalDLer         = "--external-downloader"
	ExternalDLArgs       = "--external-downloader-args"
	Format               = "-f"
	LimitRate            = "--limit-rate"
	MaxFilesize          = "--max-filesize"
	NewLine              = "--newline"
	NoCheckCert          = "--no-check-certificates"
	NoColors             = "--no-colors"
	NoPlaylist           = "--no-playlist"
	Output               = "-o"
	PlaylistItems        = "--playlist-items"
	Print                = "--print"
	ProgressTemplate     = "--progress-template"
	RestrictFilenames    = "--restrict-filenames"
	YTDLP                = "yt-dlp"
	YtDLPOutputExtension = "--merge-output-format"
)

// Listing
const (
	YtDLPFlatPlaylist = "--flat-playlist"
	OutputJSON        = "-J"
)

// ProgressJSON renders one JSON object per progress line. Compact before use,
// yt-dlp templates must not contain newlines.
const ProgressJSON = `download:
{
	"percent_str":"%(progress._percent_str)s",
	"downloaded_bytes":%(progress.downloaded_bytes|0)s,
	"total_bytes":%(progress.total_bytes|0)s,
	"total_bytes_estimate":%(progress.total_bytes_estimate|0)s,
	"speed":%(progress.speed|0)s
}`

var (
	RandomizeRequests = []string{"-t", "sleep"}
)

// Downloaders

// Aria2c:
const (
	DownloaderAria = "aria2c"
)

const (
	AriaLog         = "--console-log-level=notice"
	AriaLogFile     = "--log=-"
	AriaInterval    = "--summary-interval=1"
	AriaNoColor     = "--enable-color=false"
	AriaNoRPC       = "--enable-rpc=false"
	AriaShowConsole = "--show-console=true"
)
