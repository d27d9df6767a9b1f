package downloads

import (
	"context"
	"slices"
	"strings"
	"testing"

	"playlistarr/internal/models"
)

// flagValue returns the argument following the given flag, or "".
func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestBuildCommandArgs(t *testing.T) {
	t.Parallel()

	item := models.NewPlaylistItem("vid1", "https://example.com/watch?v=1")
	item.PlaylistIndex = 3

	job := &models.JobConfig{
		OutputDir:         "/downloads",
		Preset:            "720",
		MergeOutputExt:    "mkv",
		RateLimit:         "500K",
		MaxFilesize:       "2G",
		RestrictFilenames: true,
	}

	cmd := buildCommand(context.Background(), item, job)
	args := cmd.Args

	if args[0] != "yt-dlp" {
		t.Errorf("binary: got %q, want yt-dlp", args[0])
	}
	if got := args[len(args)-1]; got != item.URL {
		t.Errorf("target URL must go last, got %q", got)
	}

	if !slices.Contains(args, "--restrict-filenames") {
		t.Error("missing --restrict-filenames")
	}
	if !slices.Contains(args, "--no-playlist") {
		t.Error("missing --no-playlist")
	}
	if got := flagValue(args, "-f"); got != "bestvideo[height<=720]+bestaudio/best[height<=720]" {
		t.Errorf("format selector: got %q", got)
	}
	if got := flagValue(args, "-o"); got != "/downloads/003 - %(title)s.%(ext)s" {
		t.Errorf("output template: got %q", got)
	}
	if got := flagValue(args, "--merge-output-format"); got != "mkv" {
		t.Errorf("merge format: got %q", got)
	}
	if got := flagValue(args, "--limit-rate"); got != "500K" {
		t.Errorf("rate limit: got %q", got)
	}
	if got := flagValue(args, "--max-filesize"); got != "2G" {
		t.Errorf("max filesize: got %q", got)
	}
	if got := flagValue(args, "--print"); got != "after_move:%(filepath)s" {
		t.Errorf("print template: got %q", got)
	}

	tpl := flagValue(args, "--progress-template")
	if strings.ContainsAny(tpl, "\n\t ") {
		t.Errorf("progress template must be compacted, got %q", tpl)
	}
	if !strings.HasPrefix(tpl, "download:{") {
		t.Errorf("progress template must define the download type, got %q", tpl)
	}
}

func TestBuildCommandCookiePrecedence(t *testing.T) {
	t.Parallel()

	item := models.NewPlaylistItem("vid1", "https://example.com/watch?v=1")
	job := &models.JobConfig{
		OutputDir:    "/downloads",
		Preset:       "best",
		CookieSource: "firefox",
		CookiePath:   "/tmp/cookies.txt",
	}

	args := buildCommand(context.Background(), item, job).Args
	if got := flagValue(args, "--cookies"); got != "/tmp/cookies.txt" {
		t.Errorf("cookie file: got %q", got)
	}
	if slices.Contains(args, "--cookies-from-browser") {
		t.Error("cookie file must take precedence over browser source")
	}

	job.CookiePath = ""
	args = buildCommand(context.Background(), item, job).Args
	if got := flagValue(args, "--cookies-from-browser"); got != "firefox" {
		t.Errorf("browser cookie source: got %q", got)
	}
}

func TestBuildCommandAriaArgs(t *testing.T) {
	t.Parallel()

	item := models.NewPlaylistItem("vid1", "https://example.com/watch?v=1")
	job := &models.JobConfig{
		OutputDir:              "/downloads",
		Preset:                 "best",
		ExternalDownloader:     "aria2c",
		ExternalDownloaderArgs: "-x 8",
	}

	args := buildCommand(context.Background(), item, job).Args
	if got := flagValue(args, "--external-downloader"); got != "aria2c" {
		t.Errorf("external downloader: got %q", got)
	}

	ariaArgs := flagValue(args, "--external-downloader-args")
	if !strings.HasPrefix(ariaArgs, "aria2c:-x 8") {
		t.Errorf("aria args must start with the user arguments, got %q", ariaArgs)
	}
	for _, want := range []string{"--summary-interval=1", "--enable-rpc=false", "--enable-color=false"} {
		if !strings.Contains(ariaArgs, want) {
			t.Errorf("aria args missing %q in %q", want, ariaArgs)
		}
	}
}

func TestBuildCommandAudioSkipsMerge(t *testing.T) {
	t.Parallel()

	item := models.NewPlaylistItem("vid1", "https://example.com/watch?v=1")
	job := &models.JobConfig{
		OutputDir:      "/downloads",
		Preset:         "audio",
		MergeOutputExt: "mp4",
	}

	args := buildCommand(context.Background(), item, job).Args
	if slices.Contains(args, "--merge-output-format") {
		t.Error("audio preset must not request a video merge container")
	}
	if got := flagValue(args, "-f"); got != "bestaudio" {
		t.Errorf("format selector: got %q", got)
	}
}
