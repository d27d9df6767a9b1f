package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
	"playlistarr/internal/validation"

	"github.com/go-chi/chi/v5"
)

// defaultHistoryLimit bounds GET /runs when no limit parameter is given.
const defaultHistoryLimit = 25

// startRunRequest is the POST /runs body. Job keys not present in the
// request keep their program defaults.
type startRunRequest struct {
	URLs []string         `json:"urls"`
	Job  models.JobConfig `json:"job"`
}

// handleStartRun lists the requested URLs and starts a download run over the
// results. Responds with the new run's record once downloading has begun.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	req := startRunRequest{Job: models.DefaultJobConfig()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		http.Error(w, "no urls provided", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateJob(&req.Job); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	listCtx, cancel := context.WithTimeout(r.Context(), consts.ListingTimeout)
	defer cancel()

	playlists, err := s.coord.List(listCtx, req.URLs, &req.Job)
	if err != nil {
		http.Error(w, "listing failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	// The run is parented to the daemon context, not the request.
	sess, err := s.coord.Start(s.runCtx, playlists, &req.Job)
	if err != nil {
		var cfgErr *models.ConfigError
		if errors.As(err, &cfgErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, sess.Record())
}

// handleActiveRuns returns the currently running sessions.
func (s *Server) handleActiveRuns(w http.ResponseWriter, r *http.Request) {
	sessions := s.coord.ActiveSessions()

	records := make([]models.SessionRecord, 0, len(sessions))
	for _, sess := range sessions {
		records = append(records, sess.Record())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	writeJSON(w, http.StatusOK, records)
}

// handleCancelRun requests cancellation of a running session.
func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	sess, ok := s.coord.ActiveSession(uuid)
	if !ok {
		http.Error(w, "no active run with that id", http.StatusNotFound)
		return
	}

	sess.Cancel()
	writeJSON(w, http.StatusAccepted, sess.Record())
}

// handleListRuns returns run history, most recent first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit "+strconv.Quote(v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	sessions, err := s.store.GetSessions(r.Context(), limit)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []*models.SessionRecord{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

// handleGetRun returns one run from history.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	rec, hasRows, err := s.store.GetSession(r.Context(), uuid)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !hasRows {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleGetRunItems returns the per-item rows of one run.
func (s *Server) handleGetRunItems(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	_, hasRows, err := s.store.GetSession(r.Context(), uuid)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !hasRows {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	items, err := s.store.GetSessionItems(r.Context(), uuid)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*models.SessionItemRecord{}
	}

	writeJSON(w, http.StatusOK, items)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E(0, "Failed to encode response JSON: %v", err)
	}
}
