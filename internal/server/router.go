// Package server exposes the HTTP API for starting and inspecting download runs.
package server

import (
	"context"
	"errors"
	"net/http"

	"playlistarr/internal/app"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/events"
	"playlistarr/internal/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server carries the dependencies of the HTTP API handlers.
type Server struct {
	store contracts.SessionStore
	coord *app.Coordinator
	bus   *events.Bus

	// runCtx parents runs started over HTTP, they must outlive the request
	// that created them.
	runCtx context.Context
}

// NewServer returns a server whose started runs are parented to ctx.
func NewServer(ctx context.Context, s contracts.Store, coord *app.Coordinator, bus *events.Bus) *Server {
	return &Server{
		store:  s.SessionStore(),
		coord:  coord,
		bus:    bus,
		runCtx: ctx,
	}
}

// Router returns the http.Handler serving the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(corsMiddleware.Handler)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Post("/", s.handleStartRun)
			r.Get("/active", s.handleActiveRuns)
			r.Get("/{uuid}", s.handleGetRun)
			r.Get("/{uuid}/items", s.handleGetRunItems)
			r.Delete("/{uuid}", s.handleCancelRun)
		})
	})

	// Live event stream
	r.Get("/ws/events", s.handleEventSocket)

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully and cancels any runs still in flight.
func (s *Server) Serve(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		logging.S(0, "Playlistarr server running on http://localhost:%s", port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.ServerShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.E(0, "Server shutdown did not complete cleanly: %v", err)
	}
	s.coord.CancelAll()

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
