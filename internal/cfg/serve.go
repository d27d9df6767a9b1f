package cfg

import (
	"context"

	"playlistarr/internal/app"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/domain/keys"
	"playlistarr/internal/events"
	"playlistarr/internal/server"

	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API server.
func serveCmd(ctx context.Context, s contracts.Store, coord *app.Coordinator, bus *events.Bus) *cobra.Command {
	var port string

	srvCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Playlistarr HTTP API server.",
		Long:  "Serves the run API and the websocket event stream until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.NewServer(ctx, s, coord, bus).Serve(ctx, port)
		},
	}

	srvCmd.Flags().StringVar(&port, keys.ServerPort, consts.DefaultServerPort, "Port the HTTP API listens on")
	return srvCmd
}
