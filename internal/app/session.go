package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"playlistarr/internal/archive"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/downloads"
	"playlistarr/internal/events"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"github.com/google/uuid"
)

// transitionsPerItem bounds the status transitions one item can go through
// (queued, downloading, terminal). Sizing the public event channel by this
// keeps transition delivery non-blocking even with no consumer attached,
// provided progress updates never occupy slots a transition still needs.
const transitionsPerItem = 3

type sessionParams struct {
	job       *models.JobConfig
	items     []*models.PlaylistItem
	sourceURL string
	archive   *archive.Archive
	transfer  Transferer
	store     contracts.SessionStore
	bus       *events.Bus
}

// Session is one running download run over a fixed set of playlist items.
//
// Item updates flow from the workers through an internal channel into a
// single dispatcher goroutine, which fans them out to the run history store,
// the event bus and the public Events channel.
type Session struct {
	uuid      string
	job       *models.JobConfig
	items     []*models.PlaylistItem
	sourceURL string
	arc       *archive.Archive
	transfer  Transferer
	store     contracts.SessionStore
	bus       *events.Bus
	tracker   *RunTracker

	ctx    context.Context
	cancel context.CancelFunc

	updates chan models.StatusUpdate
	events  chan models.StatusUpdate
	done    chan struct{}

	mu        sync.Mutex
	status    consts.SessionStatus
	totals    models.SessionTotals
	runErr    error
	startedAt time.Time
	endedAt   time.Time
}

func newSession(parent context.Context, p sessionParams) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		uuid:      uuid.NewString(),
		job:       p.job,
		items:     p.items,
		sourceURL: p.sourceURL,
		arc:       p.archive,
		transfer:  p.transfer,
		store:     p.store,
		bus:       p.bus,
		ctx:       ctx,
		cancel:    cancel,
		updates:   make(chan models.StatusUpdate, 100),
		events:    make(chan models.StatusUpdate, transitionsPerItem*len(p.items)),
		done:      make(chan struct{}),
		status:    consts.SessionRunning,
		startedAt: time.Now(),
	}
	if p.store != nil {
		s.tracker = NewRunTracker(p.store, s.uuid)
	}
	return s
}

// start launches the update dispatcher and the worker pool.
func (s *Session) start() {
	if s.tracker != nil {
		s.tracker.Start()
	}
	go s.dispatch()
	go s.run()
}

// UUID returns the unique identifier of the run.
func (s *Session) UUID() string { return s.uuid }

// Items returns the playlist items of the run.
func (s *Session) Items() []*models.PlaylistItem { return s.items }

// Events returns the stream of status and progress updates. The channel
// closes once the run has fully finished.
func (s *Session) Events() <-chan models.StatusUpdate { return s.events }

// Cancel requests cooperative cancellation of the run. In-flight downloads
// are aborted, queued items are left untouched.
func (s *Session) Cancel() { s.cancel() }

// Done returns a channel closed when the run has fully finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the run has fully finished and returns the final totals.
func (s *Session) Wait() models.SessionTotals {
	<-s.done
	return s.Totals()
}

// Status returns the current session status.
func (s *Session) Status() consts.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error that aborted the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Totals returns a snapshot of the terminal item counts.
func (s *Session) Totals() models.SessionTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Record snapshots the session into its database row form.
func (s *Session) Record() models.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionRecord{
		UUID:        s.uuid,
		SourceURL:   s.sourceURL,
		OutputDir:   s.job.OutputDir,
		Preset:      s.job.Preset,
		WorkerLimit: s.job.WorkerLimit,
		Status:      s.status,
		Completed:   s.totals.Completed,
		Failed:      s.totals.Failed,
		Skipped:     s.totals.Skipped,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
	}
}

// run marks skips, feeds the worker pool and collects per-item results.
func (s *Session) run() {
	pending := make([]*models.PlaylistItem, 0, len(s.items))
	seen := make(map[string]struct{}, len(s.items))

	for _, item := range s.items {
		if _, dup := seen[item.ID]; dup {
			logging.D(1, "Item %q appears more than once in this run, skipping the repeat", item.ID)
			item.MarkSkipped()
			s.send(item)
			continue
		}
		seen[item.ID] = struct{}{}

		if s.arc.Contains(item.ID) {
			logging.I("Skipping %q, already recorded in download archive", item.ID)
			item.MarkSkipped()
			s.send(item)
			continue
		}

		item.MarkQueued()
		s.send(item)
		pending = append(pending, item)
	}

	workers := max(s.job.WorkerLimit, 1)
	jobs := make(chan *models.PlaylistItem, len(pending))
	results := make(chan error, len(pending))

	for w := 1; w <= workers; w++ {
		go s.itemJob(w, jobs, results)
	}

	for _, item := range pending {
		jobs <- item
	}
	close(jobs)

	var fatal error
	for range pending {
		err := <-results
		if err == nil || fatal != nil {
			continue
		}
		if downloads.IsFatal(err) {
			fatal = err
			logging.E(0, "Aborting run %s after fatal error: %v", s.uuid, err)
			s.cancel()
		}
	}

	s.finish(fatal)
}

// itemJob is one download worker. Items arriving after cancellation are
// drained without starting and keep their queued status.
func (s *Session) itemJob(workerID int, items <-chan *models.PlaylistItem, results chan<- error) {
	for item := range items {
		if s.ctx.Err() != nil {
			results <- s.ctx.Err()
			continue
		}
		results <- s.downloadItem(workerID, item)
	}
}

// downloadItem runs the attempt loop for one item. Transient failures retry
// up to the configured attempt limit, anything else fails immediately.
func (s *Session) downloadItem(workerID int, item *models.PlaylistItem) error {
	var lastErr error

attempts:
	for attempt := 1; attempt <= s.job.MaxAttempts; attempt++ {
		item.MarkDownloading()
		s.send(item)
		logging.I("Worker %d: download attempt (%d/%d) for URL: %s", workerID, attempt, s.job.MaxAttempts, item.URL)

		path, err := s.transfer.Download(s.ctx, item, s.job, func(frac float64) {
			s.sendProgress(item, frac)
		})
		if err == nil {
			item.MarkCompleted(path)
			archErr := s.appendArchive(item)
			s.send(item)
			logging.S(0, "Successfully downloaded %q to %q", item.URL, path)
			return archErr
		}

		lastErr = err
		logging.E(0, "Download attempt (%d/%d) failed for URL %q: %v", attempt, s.job.MaxAttempts, item.URL, err)

		if s.ctx.Err() != nil || !downloads.IsTransient(err) {
			break
		}
		if attempt == s.job.MaxAttempts {
			break
		}

		logging.D(1, "Retrying URL %q in %s...", item.URL, s.job.RetryInterval)
		select {
		case <-time.After(s.job.RetryInterval):
		case <-s.ctx.Done():
			break attempts
		}
	}

	item.MarkFailed(lastErr)
	s.send(item)
	return lastErr
}

// send snapshots the item and hands it to the dispatcher.
func (s *Session) send(item *models.PlaylistItem) {
	update := item.Update()
	update.SessionID = s.uuid
	s.updates <- update
}

// sendProgress records a progress fraction and emits it only when it advanced.
func (s *Session) sendProgress(item *models.PlaylistItem, frac float64) {
	before := item.Progress()
	if item.SetProgress(frac) > before {
		s.send(item)
	}
}

// appendArchive records a completed item in the download archive. In strict
// mode an append failure aborts the whole run.
func (s *Session) appendArchive(item *models.PlaylistItem) error {
	err := s.arc.Add(item.ID)
	if err == nil {
		return nil
	}
	if s.job.ArchiveStrict {
		return &downloads.FatalError{Err: fmt.Errorf("download archive append failed for %q: %w", item.ID, err)}
	}
	logging.W("Failed to append %q to download archive %q: %v", item.ID, s.arc.Path(), err)
	return nil
}

// finish resolves the final session status and stops the update pipeline.
func (s *Session) finish(fatal error) {
	s.mu.Lock()
	switch {
	case fatal != nil:
		s.status = consts.SessionFailed
		s.runErr = fatal
	case s.ctx.Err() != nil:
		s.status = consts.SessionCancelled
		s.runErr = s.ctx.Err()
	default:
		s.status = consts.SessionCompleted
	}
	s.endedAt = time.Now()
	s.mu.Unlock()

	close(s.updates)
}

// dispatch fans item updates out to history, the event bus and the public
// event channel. Status transitions are always delivered, pure progress
// updates are dropped when delivering them could crowd out a transition.
func (s *Session) dispatch() {
	var (
		lastStatus      = make(map[string]consts.DownloadStatus, len(s.items))
		sentTransitions int
	)

	for update := range s.updates {
		transition := lastStatus[update.ItemID] != update.Status
		lastStatus[update.ItemID] = update.Status

		if transition && update.Terminal() {
			s.countTerminal(update.Status)
		}

		if s.tracker != nil {
			s.tracker.Send(update)
		}
		if s.bus != nil {
			s.bus.PublishItemStatus(update)
		}

		if transition {
			s.events <- update
			sentTransitions++
			continue
		}

		// Progress may only take buffer slots a future transition cannot
		// need, which holds whenever the consumer keeps draining.
		if len(s.events) < sentTransitions {
			s.events <- update
		} else {
			logging.D(5, "Dropped progress update for %q at %.1f%%", update.ItemID, update.Progress*100)
		}
	}

	s.finalize()
	close(s.events)
	close(s.done)
}

// countTerminal tallies a terminal status into the session totals.
func (s *Session) countTerminal(status consts.DownloadStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch status {
	case consts.DLStatusCompleted:
		s.totals.Completed++
	case consts.DLStatusFailed:
		s.totals.Failed++
	case consts.DLStatusSkipped:
		s.totals.Skipped++
	}
}

// finalize flushes remaining history, persists the final session row and
// broadcasts the run result.
func (s *Session) finalize() {
	if s.tracker != nil {
		s.tracker.Stop()
	}

	rec := s.Record()

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
		defer cancel()

		if err := s.store.FinishSession(ctx, s.uuid, rec.Status, s.Totals(), rec.EndedAt); err != nil {
			logging.E(0, "Failed to finalize run %s in history: %v", s.uuid, err)
		}
	}

	if s.bus != nil {
		s.bus.PublishRunState(rec)
	}

	logging.I("Run %s finished (%s): %d completed, %d failed, %d skipped",
		s.uuid, rec.Status, rec.Completed, rec.Failed, rec.Skipped)
}
