package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, occurs_at, location, COALESCE(details, '') AS details, created_at, updated_at`

// PgEventRepository implements EventRepository using pgx.
type PgEventRepository struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

// NewPgEventRepository creates a new PgEventRepository.
func NewPgEventRepository(pool *pgxpool.Pool, outbox OutboxRepository) *PgEventRepository {
	return &PgEventRepository{pool: pool, outbox: outbox}
}

func (r *PgEventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error) {
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE occurs_at >= $1
		ORDER BY occurs_at ASC, created_at ASC`, now)
}

func (r *PgEventRepository) ListPast(ctx context.Context, now time.Time) ([]domain.Event, error) {
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE occurs_at < $1
		ORDER BY occurs_at DESC, created_at DESC`, now)
}

func (r *PgEventRepository) list(ctx context.Context, query string, now time.Time) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *PgEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ev, err
}

func (r *PgEventRepository) Create(ctx context.Context, fields domain.EventFields) (*domain.Event, error) {
	var ev *domain.Event
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO events (title, occurs_at, location, details)
			VALUES ($1, $2, $3, $4)
			RETURNING `+eventColumns,
			fields.Title, fields.OccursAt, fields.Location, fields.Details)

		var err error
		ev, err = scanEvent(row)
		if err != nil {
			return err
		}
		return r.outbox.Insert(ctx, tx, domain.NewEventChange(domain.ChangeEventCreated, ev, ev.CreatedAt))
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

func (r *PgEventRepository) Update(ctx context.Context, id uuid.UUID, fields domain.EventFields) (int64, error) {
	var affected int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE events
			SET title = $1, occurs_at = $2, location = $3, details = $4, updated_at = now()
			WHERE id = $5
			RETURNING `+eventColumns,
			fields.Title, fields.OccursAt, fields.Location, fields.Details, id)

		ev, err := scanEvent(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		affected = 1
		return r.outbox.Insert(ctx, tx, domain.NewEventChange(domain.ChangeEventUpdated, ev, ev.UpdatedAt))
	})
	if err != nil {
		return 0, fmt.Errorf("update event: %w", err)
	}
	return affected, nil
}

func (r *PgEventRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		if affected == 0 {
			return nil
		}
		ev := &domain.Event{ID: id}
		return r.outbox.Insert(ctx, tx, domain.NewEventChange(domain.ChangeEventDeleted, ev, time.Now().UTC()))
	})
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	return affected, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	ev := &domain.Event{}
	err := row.Scan(&ev.ID, &ev.Title, &ev.OccursAt, &ev.Location, &ev.Details, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	ev.OccursAt = ev.OccursAt.UTC()
	return ev, nil
}
