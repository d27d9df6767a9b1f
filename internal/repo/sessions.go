package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"github.com/Masterminds/squirrel"
)

var sessionColumns = []string{
	consts.QSessID,
	consts.QSessUUID,
	consts.QSessSourceURL,
	consts.QSessOutputDir,
	consts.QSessPreset,
	consts.QSessWorkerLimit,
	consts.QSessStatus,
	consts.QSessCompleted,
	consts.QSessFailed,
	consts.QSessSkipped,
	consts.QSessStartedAt,
	consts.QSessEndedAt,
}

var sessionItemColumns = []string{
	consts.QItemID,
	consts.QItemSessUUID,
	consts.QItemItemID,
	consts.QItemURL,
	consts.QItemTitle,
	consts.QItemIndex,
	consts.QItemStatus,
	consts.QItemProgress,
	consts.QItemError,
	consts.QItemPath,
	consts.QItemCreatedAt,
	consts.QItemUpdatedAt,
}

// SessionStore holds a pointer to the sql.DB.
type SessionStore struct {
	DB *sql.DB
}

// GetSessionStore returns a session store instance with injected database.
func GetSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{
		DB: db,
	}
}

// GetDB returns the database.
func (ss *SessionStore) GetDB() *sql.DB {
	return ss.DB
}

// CreateSession inserts the row for a new run and fills in its row ID.
func (ss *SessionStore) CreateSession(ctx context.Context, rec *models.SessionRecord) (int64, error) {
	query := squirrel.
		Insert(consts.DBSessions).
		Columns(
			consts.QSessUUID,
			consts.QSessSourceURL,
			consts.QSessOutputDir,
			consts.QSessPreset,
			consts.QSessWorkerLimit,
			consts.QSessStatus,
			consts.QSessCompleted,
			consts.QSessFailed,
			consts.QSessSkipped,
			consts.QSessStartedAt,
		).
		Values(
			rec.UUID,
			rec.SourceURL,
			rec.OutputDir,
			rec.Preset,
			rec.WorkerLimit,
			rec.Status,
			rec.Completed,
			rec.Failed,
			rec.Skipped,
			rec.StartedAt,
		).
		RunWith(ss.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session %q: %w", rec.UUID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted session ID: %w", err)
	}
	rec.ID = id
	return id, nil
}

// AddSessionItems inserts the item rows of a run. Rows already present for
// the same run and item identifier are left untouched.
func (ss *SessionStore) AddSessionItems(ctx context.Context, sessionUUID string, items []models.SessionItemRecord) (err error) {
	if len(items) == 0 {
		return nil
	}

	tx, err := ss.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E(0, "Panic rollback failed for run %q: %v", sessionUUID, rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E(0, "Rollback failed for run %q (original error: %v): %v", sessionUUID, err, rbErr)
			}
		}
	}()

	now := time.Now()
	for _, item := range items {
		query := squirrel.
			Insert(consts.DBSessionItems).
			Options("OR IGNORE").
			Columns(
				consts.QItemSessUUID,
				consts.QItemItemID,
				consts.QItemURL,
				consts.QItemTitle,
				consts.QItemIndex,
				consts.QItemStatus,
				consts.QItemProgress,
				consts.QItemError,
				consts.QItemPath,
				consts.QItemCreatedAt,
				consts.QItemUpdatedAt,
			).
			Values(
				sessionUUID,
				item.ItemID,
				item.URL,
				item.Title,
				item.PlaylistIndex,
				item.Status,
				item.Progress,
				item.ErrorMessage,
				item.OutputPath,
				now,
				now,
			).
			RunWith(tx)

		if _, err = query.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert item %q for run %q: %w", item.ItemID, sessionUUID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %d item row(s): %w", len(items), err)
	}
	return nil
}

// UpdateItemStatuses writes a batch of item status updates in one transaction.
func (ss *SessionStore) UpdateItemStatuses(ctx context.Context, sessionUUID string, updates []models.StatusUpdate) (err error) {
	if len(updates) == 0 {
		return nil
	}

	tx, err := ss.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E(0, "Panic rollback failed for updates of run %q: %v", sessionUUID, rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E(0, "Failed to rollback updates for run %q (original error: %v): %v", sessionUUID, err, rbErr)
			}
		}
	}()

	now := time.Now()
	for _, update := range updates {
		errMsg := ""
		if update.Err != nil {
			errMsg = update.Err.Error()
		}

		query := squirrel.
			Update(consts.DBSessionItems).
			Set(consts.QItemStatus, update.Status).
			Set(consts.QItemProgress, update.Progress).
			Set(consts.QItemError, errMsg).
			Set(consts.QItemPath, update.OutputPath).
			Set(consts.QItemUpdatedAt, now).
			Where(squirrel.Eq{
				consts.QItemSessUUID: sessionUUID,
				consts.QItemItemID:   update.ItemID,
			}).
			RunWith(tx)

		if _, err = query.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to update status for item %q: %w", update.ItemID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status updates: %w", err)
	}
	return nil
}

// FinishSession writes the final status, totals and end time of a run.
func (ss *SessionStore) FinishSession(ctx context.Context, sessionUUID string, status consts.SessionStatus, totals models.SessionTotals, endedAt time.Time) error {
	query := squirrel.
		Update(consts.DBSessions).
		Set(consts.QSessStatus, status).
		Set(consts.QSessCompleted, totals.Completed).
		Set(consts.QSessFailed, totals.Failed).
		Set(consts.QSessSkipped, totals.Skipped).
		Set(consts.QSessEndedAt, endedAt).
		Where(squirrel.Eq{consts.QSessUUID: sessionUUID}).
		RunWith(ss.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to finalize session %q: %w", sessionUUID, err)
	}
	return nil
}

// GetSession returns one run by UUID.
func (ss *SessionStore) GetSession(ctx context.Context, sessionUUID string) (*models.SessionRecord, bool, error) {
	query := squirrel.
		Select(sessionColumns...).
		From(consts.DBSessions).
		Where(squirrel.Eq{consts.QSessUUID: sessionUUID}).
		RunWith(ss.DB)

	rec, err := scanSession(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query session %q: %w", sessionUUID, err)
	}
	return rec, true, nil
}

// GetSessions returns runs newest first, up to limit when limit is positive.
func (ss *SessionStore) GetSessions(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	builder := squirrel.
		Select(sessionColumns...).
		From(consts.DBSessions).
		OrderBy(consts.QSessStartedAt + " DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	rows, err := builder.RunWith(ss.DB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E(0, "Failed to close session rows: %v", err)
		}
	}()

	var recs []*models.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return recs, nil
}

// GetSessionItems returns the item rows of a run in playlist order.
func (ss *SessionStore) GetSessionItems(ctx context.Context, sessionUUID string) ([]*models.SessionItemRecord, error) {
	query := squirrel.
		Select(sessionItemColumns...).
		From(consts.DBSessionItems).
		Where(squirrel.Eq{consts.QItemSessUUID: sessionUUID}).
		OrderBy(consts.QItemIndex+" ASC", consts.QItemID+" ASC").
		RunWith(ss.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for run %q: %w", sessionUUID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E(0, "Failed to close item rows for run %q: %v", sessionUUID, err)
		}
	}()

	var recs []*models.SessionItemRecord
	for rows.Next() {
		var rec models.SessionItemRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionUUID,
			&rec.ItemID,
			&rec.URL,
			&rec.Title,
			&rec.PlaylistIndex,
			&rec.Status,
			&rec.Progress,
			&rec.ErrorMessage,
			&rec.OutputPath,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows for run %q: %w", sessionUUID, err)
	}
	return recs, nil
}

// ******************************** Private ********************************

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession reads one sessions row. The end time is NULL while a run is
// still in flight.
func scanSession(row rowScanner) (*models.SessionRecord, error) {
	var (
		rec     models.SessionRecord
		endedAt sql.NullTime
	)
	if err := row.Scan(
		&rec.ID,
		&rec.UUID,
		&rec.SourceURL,
		&rec.OutputDir,
		&rec.Preset,
		&rec.WorkerLimit,
		&rec.Status,
		&rec.Completed,
		&rec.Failed,
		&rec.Skipped,
		&rec.StartedAt,
		&endedAt,
	); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		rec.EndedAt = endedAt.Time
	}
	return &rec, nil
}
