package cfg

import (
	"context"
	"fmt"
	"time"

	"playlistarr/internal/app"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"

	"github.com/spf13/cobra"
)

// listCmd resolves playlist URLs and prints their entries without downloading.
func listCmd(ctx context.Context, coord *app.Coordinator) *cobra.Command {
	var jf jobFlags

	lsCmd := &cobra.Command{
		Use:   "list urls...",
		Short: "List playlist entries without downloading.",
		Long:  "Resolves each URL and prints the entries a download run would cover, with the positions usable in 'download --select'.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := jf.jobConfig()

			listCtx, cancel := context.WithTimeout(ctx, consts.ListingTimeout)
			defer cancel()

			playlists, err := coord.List(listCtx, args, &job)
			if err != nil {
				return err
			}

			for _, p := range playlists {
				printPlaylist(p)
			}
			return nil
		},
	}

	setJobFlags(lsCmd, &jf)
	return lsCmd
}

// printPlaylist prints one playlist with 1-based entry positions.
func printPlaylist(p *models.Playlist) {
	title := p.Title
	if title == "" {
		title = p.SourceURL
	}
	fmt.Printf("\n%s%s%s (%d entries)\n", consts.ColorGreen, title, consts.ColorReset, len(p.Items))

	for i, item := range p.Items {
		label := item.Title
		if label == "" {
			label = item.URL
		}

		fmt.Printf("%4d. %s", i+1, label)
		if item.Duration > 0 {
			fmt.Printf(" [%s]", formatDuration(item.Duration))
		}
		if !item.UploadDate.IsZero() {
			fmt.Printf(" (%s)", item.UploadDate.Format("2006-01-02"))
		}
		fmt.Println()
	}
	fmt.Println()
}

// formatDuration renders seconds as h:mm:ss, or m:ss under an hour.
func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
