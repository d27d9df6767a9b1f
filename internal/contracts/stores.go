// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"context"
	"database/sql"
	"time"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
)

// Store allows access to the main store repo methods.
type Store interface {
	SessionStore() SessionStore
}

// SessionStore allows access to run history repo methods.
type SessionStore interface {
	GetDB() *sql.DB

	// Add operations.
	CreateSession(ctx context.Context, rec *models.SessionRecord) (int64, error)
	AddSessionItems(ctx context.Context, sessionUUID string, items []models.SessionItemRecord) error

	// Update operations.
	UpdateItemStatuses(ctx context.Context, sessionUUID string, updates []models.StatusUpdate) error
	FinishSession(ctx context.Context, sessionUUID string, status consts.SessionStatus, totals models.SessionTotals, endedAt time.Time) error

	// 'Get' operations.
	GetSession(ctx context.Context, sessionUUID string) (rec *models.SessionRecord, hasRows bool, err error)
	GetSessions(ctx context.Context, limit int) ([]*models.SessionRecord, error)
	GetSessionItems(ctx context.Context, sessionUUID string) ([]*models.SessionItemRecord, error)
}
