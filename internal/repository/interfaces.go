package repository

import (
	"context"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so queries work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// EventRepository provides access to the events table.
// Every mutation that affects a row also writes an outbox row in the same transaction.
type EventRepository interface {
	// ListUpcoming returns events with occurs_at >= now, ordered ascending.
	ListUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error)

	// ListPast returns events with occurs_at < now, ordered descending.
	ListPast(ctx context.Context, now time.Time) ([]domain.Event, error)

	// FindByID returns an event, or nil if it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// Create inserts an event; the store assigns the id and timestamps.
	Create(ctx context.Context, fields domain.EventFields) (*domain.Event, error)

	// Update overwrites the mutable fields. Returns the number of rows affected.
	Update(ctx context.Context, id uuid.UUID, fields domain.EventFields) (int64, error)

	// Delete permanently removes an event. Returns the number of rows affected.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// AdminRepository provides access to admin_users.
type AdminRepository interface {
	// FindByUsername returns the account with exactly this username, or nil.
	FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error)

	// FindByID returns the account with this id, or nil.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)

	// List returns all accounts ordered by created_at DESC.
	List(ctx context.Context) ([]domain.AdminUser, error)

	// Create inserts an account. Returns ErrUsernameTaken on a unique violation.
	Create(ctx context.Context, username, passwordHash string, createdBy *string) (*domain.AdminUser, error)

	// CreateIfEmpty inserts the account only when admin_users has no rows.
	CreateIfEmpty(ctx context.Context, username, passwordHash, createdBy string) (bool, error)

	// Delete removes an account unless it is the last one. Returns rows affected.
	Delete(ctx context.Context, id uuid.UUID, actor string) (int64, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox row (within the same transaction as the mutation).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished rows in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps published_at on the given rows.
	MarkPublished(ctx context.Context, db DBTX, seqIDs []int64) error
}

// LoginAttemptRepository provides access to login_attempts.
type LoginAttemptRepository interface {
	// Record inserts a login attempt row.
	Record(ctx context.Context, attempt domain.LoginAttempt) error

	// CountFailures returns failed attempts for username since the given instant.
	CountFailures(ctx context.Context, username string, since time.Time) (int, error)
}
