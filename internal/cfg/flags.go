package cfg

import (
	"time"

	"playlistarr/internal/domain/keys"
	"playlistarr/internal/models"

	"github.com/spf13/cobra"
)

// jobFlags holds the download job flag values for one command.
type jobFlags struct {
	concurrency     int
	preset          string
	outputDir       string
	playlistFolders bool
	playlistStart   int
	playlistEnd     int

	rateLimit   string
	maxFilesize string

	cookieSource string
	cookiePath   string

	archiveEnabled bool
	archivePath    string
	archiveStrict  bool

	maxAttempts   int
	retryInterval time.Duration

	externalDownloader     string
	externalDownloaderArgs string
	mergeOutputExt         string
	restrictFilenames      bool
}

// setJobFlags registers the job config flags on cmd with program defaults.
func setJobFlags(cmd *cobra.Command, jf *jobFlags) {
	def := models.DefaultJobConfig()
	f := cmd.Flags()

	f.IntVarP(&jf.concurrency, keys.Concurrency, "l", def.WorkerLimit, "Maximum concurrent downloads for this run")
	f.StringVarP(&jf.preset, keys.Preset, "p", def.Preset, "Quality preset (best, bestva, 1080, 720, 480, audio)")
	f.StringVarP(&jf.outputDir, keys.OutputDir, "o", "", "Directory downloads are written into")
	f.BoolVar(&jf.playlistFolders, keys.PlaylistFolders, def.PlaylistFolders, "Write each playlist into a subfolder named after it")
	f.IntVar(&jf.playlistStart, keys.PlaylistStart, def.PlaylistStart, "First playlist entry to include (1-based)")
	f.IntVar(&jf.playlistEnd, keys.PlaylistEnd, def.PlaylistEnd, "Last playlist entry to include (inclusive)")

	f.StringVar(&jf.rateLimit, keys.RateLimit, def.RateLimit, "Download rate limit (e.g. '4.2M')")
	f.StringVar(&jf.maxFilesize, keys.MaxFilesize, def.MaxFilesize, "Skip files larger than this size (e.g. '300m')")

	f.StringVar(&jf.cookieSource, keys.CookieSource, def.CookieSource, "Browser to source cookies from (e.g. 'firefox')")
	f.StringVar(&jf.cookiePath, keys.CookiePath, def.CookiePath, "Path to a Netscape format cookie file")

	f.BoolVar(&jf.archiveEnabled, keys.ArchiveEnabled, def.ArchiveEnabled, "Skip and record downloads using the download archive")
	f.StringVar(&jf.archivePath, keys.ArchivePath, def.ArchivePath, "Download archive path (defaults to downloaded.txt in the output directory)")
	f.BoolVar(&jf.archiveStrict, keys.ArchiveStrict, def.ArchiveStrict, "Abort the run when the download archive is unreadable")

	f.IntVar(&jf.maxAttempts, keys.DLRetries, def.MaxAttempts, "Download attempts per item before marking it failed")
	f.DurationVar(&jf.retryInterval, keys.DLRetryInterval, def.RetryInterval, "Wait between retries of the same item")

	f.StringVar(&jf.externalDownloader, keys.ExternalDownloader, def.ExternalDownloader, "External downloader program (e.g. 'aria2c')")
	f.StringVar(&jf.externalDownloaderArgs, keys.ExternalDownloaderArgs, def.ExternalDownloaderArgs, "Arguments for the external downloader")
	f.StringVar(&jf.mergeOutputExt, keys.MergeOutputExt, def.MergeOutputExt, "Container extension merged downloads end in")
	f.BoolVar(&jf.restrictFilenames, keys.RestrictFilenames, def.RestrictFilenames, "Restrict filenames to safe ASCII characters")
}

// jobConfig builds a job from the current flag values.
func (jf *jobFlags) jobConfig() models.JobConfig {
	job := models.DefaultJobConfig()
	job.WorkerLimit = jf.concurrency
	job.Preset = jf.preset
	job.OutputDir = jf.outputDir
	job.PlaylistFolders = jf.playlistFolders
	job.PlaylistStart = jf.playlistStart
	job.PlaylistEnd = jf.playlistEnd
	job.RateLimit = jf.rateLimit
	job.MaxFilesize = jf.maxFilesize
	job.CookieSource = jf.cookieSource
	job.CookiePath = jf.cookiePath
	job.ArchiveEnabled = jf.archiveEnabled
	job.ArchivePath = jf.archivePath
	job.ArchiveStrict = jf.archiveStrict
	job.MaxAttempts = jf.maxAttempts
	job.RetryInterval = jf.retryInterval
	job.ExternalDownloader = jf.externalDownloader
	job.ExternalDownloaderArgs = jf.externalDownloaderArgs
	job.MergeOutputExt = jf.mergeOutputExt
	job.RestrictFilenames = jf.restrictFilenames
	return job
}

// apply overwrites job fields for every flag the user set explicitly, leaving
// the rest as they came in (e.g. from a batch file).
func (jf *jobFlags) apply(cmd *cobra.Command, job *models.JobConfig) {
	set := cmd.Flags().Changed

	if set(keys.Concurrency) {
		job.WorkerLimit = jf.concurrency
	}
	if set(keys.Preset) {
		job.Preset = jf.preset
	}
	if set(keys.OutputDir) {
		job.OutputDir = jf.outputDir
	}
	if set(keys.PlaylistFolders) {
		job.PlaylistFolders = jf.playlistFolders
	}
	if set(keys.PlaylistStart) {
		job.PlaylistStart = jf.playlistStart
	}
	if set(keys.PlaylistEnd) {
		job.PlaylistEnd = jf.playlistEnd
	}
	if set(keys.RateLimit) {
		job.RateLimit = jf.rateLimit
	}
	if set(keys.MaxFilesize) {
		job.MaxFilesize = jf.maxFilesize
	}
	if set(keys.CookieSource) {
		job.CookieSource = jf.cookieSource
	}
	if set(keys.CookiePath) {
		job.CookiePath = jf.cookiePath
	}
	if set(keys.ArchiveEnabled) {
		job.ArchiveEnabled = jf.archiveEnabled
	}
	if set(keys.ArchivePath) {
		job.ArchivePath = jf.archivePath
	}
	if set(keys.ArchiveStrict) {
		job.ArchiveStrict = jf.archiveStrict
	}
	if set(keys.DLRetries) {
		job.MaxAttempts = jf.maxAttempts
	}
	if set(keys.DLRetryInterval) {
		job.RetryInterval = jf.retryInterval
	}
	if set(keys.ExternalDownloader) {
		job.ExternalDownloader = jf.externalDownloader
	}
	if set(keys.ExternalDownloaderArgs) {
		job.ExternalDownloaderArgs = jf.externalDownloaderArgs
	}
	if set(keys.MergeOutputExt) {
		job.MergeOutputExt = jf.mergeOutputExt
	}
	if set(keys.RestrictFilenames) {
		job.RestrictFilenames = jf.restrictFilenames
	}
}
