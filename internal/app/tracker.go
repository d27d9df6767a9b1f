package app

import (
	"context"
	"time"

	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
)

const (
	trackerQueueSize  = 100
	trackerBatchSize  = 50
	trackerFlushEvery = time.Second
	flushRetries      = 3
)

// RunTracker batches item status updates into the run history store.
//
// Updates for the same item collapse to the newest one between flushes, so
// rapid progress reporting costs at most one row update per flush interval.
type RunTracker struct {
	store       contracts.SessionStore
	sessionUUID string
	updates     chan models.StatusUpdate
	done        chan struct{}
	stopped     chan struct{}
}

// NewRunTracker returns a tracker for one run.
func NewRunTracker(store contracts.SessionStore, sessionUUID string) *RunTracker {
	return &RunTracker{
		store:       store,
		sessionUUID: sessionUUID,
		updates:     make(chan models.StatusUpdate, trackerQueueSize),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Start begins processing updates.
func (t *RunTracker) Start() {
	go t.processUpdates()
}

// Send queues a status update for persistence.
func (t *RunTracker) Send(update models.StatusUpdate) {
	t.updates <- update
}

// Stop flushes pending updates and halts processing. It blocks until the
// final flush finished.
func (t *RunTracker) Stop() {
	close(t.done)
	<-t.stopped
}

func (t *RunTracker) processUpdates() {
	defer close(t.stopped)

	ticker := time.NewTicker(trackerFlushEvery)
	defer ticker.Stop()

	pending := make(map[string]models.StatusUpdate, trackerBatchSize)

	for {
		select {
		case update := <-t.updates:
			pending[update.ItemID] = update
			if len(pending) >= trackerBatchSize {
				t.flushUpdates(pending)
			}
		case <-ticker.C:
			t.flushUpdates(pending)
		case <-t.done:
			t.drainQueued(pending)
			t.flushUpdates(pending)
			return
		}
	}
}

// drainQueued empties whatever is still queued after Stop.
func (t *RunTracker) drainQueued(pending map[string]models.StatusUpdate) {
	for {
		select {
		case update := <-t.updates:
			pending[update.ItemID] = update
		default:
			return
		}
	}
}

// flushUpdates writes the pending batch with small retries, matching the
// short-lived write contention of the SQLite store.
func (t *RunTracker) flushUpdates(pending map[string]models.StatusUpdate) {
	if len(pending) == 0 {
		return
	}

	batch := make([]models.StatusUpdate, 0, len(pending))
	for _, update := range pending {
		batch = append(batch, update)
	}

	ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < flushRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(consts.RetryBackoff * time.Duration(attempt+1))
		}
		if err = t.store.UpdateItemStatuses(ctx, t.sessionUUID, batch); err == nil {
			clear(pending)
			return
		}
		logging.D(2, "Retrying history flush for run %s: %v", t.sessionUUID, err)
	}

	logging.E(0, "Failed to flush %d history update(s) for run %s: %v", len(batch), t.sessionUUID, err)
	clear(pending)
}
