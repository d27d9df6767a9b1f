// Package listing fetches playlist metadata without downloading any media.
package listing

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"playlistarr/internal/cookies"
	"playlistarr/internal/domain/command"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/net"
	"playlistarr/internal/utils/logging"

	"golang.org/x/sync/errgroup"
)

// Lister fetches flat playlist metadata through yt-dlp, with a page scrape
// fallback for sites yt-dlp cannot list.
type Lister struct {
	cookieManager *cookies.Manager
}

// New returns a new Lister instance.
func New() *Lister {
	return &Lister{
		cookieManager: cookies.NewManager(),
	}
}

// List fetches the playlist metadata for one source URL.
func (l *Lister) List(ctx context.Context, sourceURL string, job *models.JobConfig) (*models.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.ListingTimeout)
	defer cancel()

	cmd := buildListCommand(ctx, sourceURL, job)
	logging.I("Executing playlist fetch command for URL %q:\n\n%s\n", sourceURL, cmd.String())

	j, err := cmd.Output()
	if err != nil {
		logging.W("yt-dlp listing failed for %q, falling back to page scrape: %v", sourceURL, err)
		return l.scrapePlaylist(ctx, sourceURL)
	}

	logging.D(5, "Retrieved playlist metadata for %q:\n\n%s", sourceURL, string(j))

	playlist, err := parsePlaylist(j, sourceURL, job)
	if err != nil {
		return nil, fmt.Errorf("failed to parse playlist metadata for %q: %w", sourceURL, err)
	}

	if len(playlist.Items) == 0 {
		logging.W("No entries found at %q", sourceURL)
	} else {
		logging.I("Loaded %d items from playlist %q", len(playlist.Items), playlist.Title)
	}
	return playlist, nil
}

// ListAll fetches playlist metadata for multiple source URLs concurrently.
func (l *Lister) ListAll(ctx context.Context, sourceURLs []string, job *models.JobConfig) ([]*models.Playlist, error) {
	if len(sourceURLs) == 0 {
		return nil, errors.New("no source URLs provided")
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]*models.Playlist, len(sourceURLs))

	for i, u := range sourceURLs {
		g.Go(func() error {
			playlist, err := l.List(gctx, u, job)
			if err != nil {
				return fmt.Errorf("listing %q: %w", u, err)
			}
			results[i] = playlist
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildListCommand builds the yt-dlp command fetching flat playlist metadata.
func buildListCommand(ctx context.Context, sourceURL string, job *models.JobConfig) *exec.Cmd {
	args := []string{command.YtDLPFlatPlaylist, command.OutputJSON}

	// Cookie path takes precedence over browser cookie source
	if job.CookiePath != "" {
		args = append(args, command.CookiePath, job.CookiePath)
	} else if job.CookieSource != "" {
		args = append(args, command.CookiesFromBrowser, job.CookieSource)
	}

	if r := playlistRange(job); r != "" {
		args = append(args, command.PlaylistItems, r)
	}

	// LAN media servers typically use self-signed certificates
	if net.IsPrivateNetwork(sourceURL) {
		args = append(args, command.NoCheckCert)
	}

	// Randomize requests (avoid detection as bot)
	args = append(args, command.RandomizeRequests...)

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, sourceURL)

	return exec.CommandContext(ctx, command.YTDLP, args...)
}

// playlistRange renders the --playlist-items range, or "" when unbounded.
func playlistRange(job *models.JobConfig) string {
	switch {
	case job.PlaylistStart > 0 && job.PlaylistEnd > 0:
		return strconv.Itoa(job.PlaylistStart) + ":" + strconv.Itoa(job.PlaylistEnd)
	case job.PlaylistStart > 0:
		return strconv.Itoa(job.PlaylistStart) + ":"
	case job.PlaylistEnd > 0:
		return ":" + strconv.Itoa(job.PlaylistEnd)
	}
	return ""
}
