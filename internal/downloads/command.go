package downloads

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"playlistarr/internal/domain/command"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/net"
	"playlistarr/internal/utils/logging"
)

// templateReplacer compacts multi-line templates, yt-dlp progress templates
// must not contain newlines.
var templateReplacer = strings.NewReplacer("\n", "", "\t", "", " ", "")

// buildCommand builds the yt-dlp command downloading a single playlist item.
func buildCommand(ctx context.Context, item *models.PlaylistItem, job *models.JobConfig) *exec.Cmd {
	args := make([]string, 0, 32)

	// Restrict filenames
	if job.RestrictFilenames {
		args = append(args, command.RestrictFilenames)
	}

	// Output location + filename syntax
	args = append(args,
		command.Output,
		filepath.Join(itemOutputDir(job, item), outputTemplate(item)))

	// Print filename to console upon completion
	args = append(args, command.Print, command.AfterMove)

	// Single item downloads, line-buffered plain output
	args = append(args, command.NoPlaylist, command.NewLine, command.NoColors)

	// Quality format selection
	args = append(args, command.Format, FormatForPreset(job.Preset))

	// Merge output format, not applicable for audio-only downloads
	if job.MergeOutputExt != "" && job.Preset != consts.PresetAudio {
		args = append(args, command.YtDLPOutputExtension, job.MergeOutputExt)
	}

	// Cookie path takes precedence over browser cookie source
	if job.CookiePath != "" {
		args = append(args, command.CookiePath, job.CookiePath)
	} else if job.CookieSource != "" {
		args = append(args, command.CookiesFromBrowser, job.CookieSource)
	}

	// LAN media servers typically use self-signed certificates
	if net.IsPrivateNetwork(item.URL) {
		args = append(args, command.NoCheckCert)
	}

	// Rate limit specified
	if job.RateLimit != "" {
		args = append(args, command.LimitRate, job.RateLimit)
	}

	// Max filesize specified
	if job.MaxFilesize != "" {
		args = append(args, command.MaxFilesize, job.MaxFilesize)
	}

	// External downloaders & arguments
	if job.ExternalDownloader != "" {
		args = append(args, command.ExternalDLer, job.ExternalDownloader)

		switch job.ExternalDownloader {
		case command.DownloaderAria:

			ariaCmd := command.DownloaderAria + ":" +
				job.ExternalDownloaderArgs +
				" " +
				command.AriaLog +
				" " +
				command.AriaNoRPC +
				" " +
				command.AriaNoColor +
				" " +
				command.AriaShowConsole +
				" " +
				command.AriaInterval

			args = append(args, command.ExternalDLArgs, ariaCmd)
		default:
			if job.ExternalDownloaderArgs != "" {
				args = append(args, command.ExternalDLArgs, job.ExternalDownloaderArgs)
			}
		}
	}

	// Machine readable progress lines
	args = append(args, command.ProgressTemplate, templateReplacer.Replace(command.ProgressJSON))

	// Randomize requests (avoid detection as bot)
	args = append(args, command.RandomizeRequests...)

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, item.URL)

	cmd := exec.CommandContext(ctx, command.YTDLP, args...)
	logging.D(1, "Built download command for URL %q:\n%v", item.URL, cmd.String())

	return cmd
}
