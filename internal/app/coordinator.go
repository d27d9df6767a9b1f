// Package app contains core application functionality.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"playlistarr/internal/archive"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/events"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
	"playlistarr/internal/validation"
)

// Transferer performs a single download attempt for one playlist item and
// returns the final output path. Progress fractions in [0.0, 1.0] are
// reported through the callback.
type Transferer interface {
	Download(ctx context.Context, item *models.PlaylistItem, job *models.JobConfig, progress func(float64)) (string, error)
}

// Lister resolves source URLs into playlists of downloadable items.
type Lister interface {
	ListAll(ctx context.Context, sourceURLs []string, job *models.JobConfig) ([]*models.Playlist, error)
}

// Coordinator wires listing, archive checks, transfers and run history together.
type Coordinator struct {
	lister   Lister
	transfer Transferer
	store    contracts.SessionStore
	bus      *events.Bus

	mu     sync.Mutex
	active map[string]*Session
}

// NewCoordinator returns a coordinator. The store and bus may be nil, which
// disables run history and event broadcasting respectively.
func NewCoordinator(lister Lister, transfer Transferer, store contracts.SessionStore, bus *events.Bus) *Coordinator {
	return &Coordinator{
		lister:   lister,
		transfer: transfer,
		store:    store,
		bus:      bus,
		active:   make(map[string]*Session),
	}
}

// List resolves the source URLs into playlists without downloading anything.
// Unlike Run it does not require a usable output directory.
func (c *Coordinator) List(ctx context.Context, sourceURLs []string, job *models.JobConfig) ([]*models.Playlist, error) {
	if job == nil {
		return nil, models.NewConfigError("job", "no job configuration provided")
	}
	job.ApplyDefaults()

	return c.lister.ListAll(ctx, sourceURLs, job)
}

// Run lists the source URLs and starts a download session over every selected
// item in the results.
func (c *Coordinator) Run(ctx context.Context, sourceURLs []string, job *models.JobConfig) (*Session, error) {
	if err := validation.ValidateJob(job); err != nil {
		return nil, err
	}

	playlists, err := c.lister.ListAll(ctx, sourceURLs, job)
	if err != nil {
		return nil, err
	}

	return c.Start(ctx, playlists, job)
}

// Start validates the job and launches a download session over the playlists.
// The returned session is already running; consume Events or Wait on it.
func (c *Coordinator) Start(ctx context.Context, playlists []*models.Playlist, job *models.JobConfig) (*Session, error) {
	if err := validation.ValidateJob(job); err != nil {
		return nil, err
	}

	var (
		items   []*models.PlaylistItem
		sources = make([]string, 0, len(playlists))
	)
	for _, p := range playlists {
		if p == nil {
			continue
		}
		sources = append(sources, p.SourceURL)
		items = append(items, models.SelectedItems(p.Items)...)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to download, no items selected from %d playlist(s)", len(playlists))
	}

	arc, err := c.loadArchive(job)
	if err != nil {
		return nil, err
	}

	s := newSession(ctx, sessionParams{
		job:       job,
		items:     items,
		sourceURL: strings.Join(sources, ", "),
		archive:   arc,
		transfer:  c.transfer,
		store:     c.store,
		bus:       c.bus,
	})

	c.persistNewSession(ctx, s)

	if c.bus != nil {
		c.bus.PublishRunState(s.Record())
	}

	c.mu.Lock()
	c.active[s.UUID()] = s
	c.mu.Unlock()

	s.start()

	go func() {
		s.Wait()
		c.mu.Lock()
		delete(c.active, s.UUID())
		c.mu.Unlock()
	}()

	logging.I("Started download run %s: %d item(s), %d worker(s)", s.UUID(), len(items), job.WorkerLimit)
	return s, nil
}

// ActiveSession returns a currently running session by UUID.
func (c *Coordinator) ActiveSession(uuid string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.active[uuid]
	return s, ok
}

// ActiveSessions returns every currently running session.
func (c *Coordinator) ActiveSessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Session, 0, len(c.active))
	for _, s := range c.active {
		out = append(out, s)
	}
	return out
}

// CancelAll requests cancellation of every running session.
func (c *Coordinator) CancelAll() {
	for _, s := range c.ActiveSessions() {
		s.Cancel()
	}
}

// loadArchive opens the download archive when the job enables it. Unreadable
// archives abort in strict mode and otherwise disable skip and append for
// this run.
func (c *Coordinator) loadArchive(job *models.JobConfig) (*archive.Archive, error) {
	if !job.ArchiveEnabled {
		return nil, nil
	}

	arc, err := archive.Load(job.ArchivePath)
	if err != nil {
		if job.ArchiveStrict {
			return nil, fmt.Errorf("download archive unusable in strict mode: %w", err)
		}
		logging.W("Could not read download archive %q, nothing will be skipped or recorded this run: %v", job.ArchivePath, err)
		return nil, nil
	}
	return arc, nil
}

// persistNewSession writes the session row and its item rows. History write
// failures never block the run itself.
func (c *Coordinator) persistNewSession(ctx context.Context, s *Session) {
	if c.store == nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, consts.DatabaseTimeout)
	defer cancel()

	rec := s.Record()
	if _, err := c.store.CreateSession(dbCtx, &rec); err != nil {
		logging.E(0, "Failed to record run %s in history: %v", s.UUID(), err)
		return
	}

	itemRecs := make([]models.SessionItemRecord, 0, len(s.items))
	for _, item := range s.items {
		itemRecs = append(itemRecs, item.Record(s.UUID()))
	}
	if err := c.store.AddSessionItems(dbCtx, s.UUID(), itemRecs); err != nil {
		logging.E(0, "Failed to record %d run item(s) for %s: %v", len(itemRecs), s.UUID(), err)
	}
}
