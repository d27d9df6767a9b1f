// Package consts holds various global, unchanging values.
package consts

// Quality presets selectable for downloads.
const (
	PresetBest       = "best"
	PresetBestVA     = "bestvideo+bestaudio"
	Preset1080       = "1080"
	Preset720        = "720"
	Preset480        = "480"
	PresetAudio      = "audio"
	DefaultPreset    = PresetBest
	DefaultMergeExt  = "mp4"
	FallbackFilename = "%(title)s.%(ext)s"
)

// ValidPresets holds the selectable quality presets.
var ValidPresets = map[string]bool{
	PresetBest:   true,
	PresetBestVA: true,
	Preset1080:   true,
	Preset720:    true,
	Preset480:    true,
	PresetAudio:  true,
}

// Archive file defaults.
const (
	DefaultArchiveName = "downloaded.txt"
)

// DefaultServerPort is the port the HTTP API listens on.
const DefaultServerPort = "8837"

// Concurrency bounds.
const (
	MinConcurrency     = 1
	MaxConcurrency     = 12
	DefaultConcurrency = 3
)

// AllVidExtensions is a list of video file extensions.
var AllVidExtensions = [...]string{".3gp", ".avi", ".f4v", ".flv", ".m4v", ".mkv",
	".mov", ".mp4", ".mpeg", ".mpg", ".ogm", ".ogv",
	".ts", ".vob", ".webm", ".wmv"}

// AllAudioExtensions is a list of audio file extensions.
var AllAudioExtensions = [...]string{".aac", ".flac", ".m4a", ".mp3", ".ogg",
	".opus", ".wav"}

// Progress display modes.
const (
	ProgressBars  = "bars"
	ProgressLog   = "log"
	ProgressQuiet = "quiet"
)

// ValidProgressModes holds the selectable progress display modes.
var ValidProgressModes = map[string]bool{
	ProgressBars:  true,
	ProgressLog:   true,
	ProgressQuiet: true,
}

// ValidMergeExts holds the container formats yt-dlp can remux into.
var ValidMergeExts = map[string]bool{
	"avi":  true,
	"flv":  true,
	"mkv":  true,
	"mov":  true,
	"mp4":  true,
	"webm": true,
}
