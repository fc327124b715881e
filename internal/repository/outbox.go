package repository

import (
	"context"
	"fmt"

	"github.com/campusevents/calendar/internal/domain"
)

// PgOutboxRepository implements OutboxRepository using pgx.
type PgOutboxRepository struct{}

// NewPgOutboxRepository returns a pgx-backed OutboxRepository.
func NewPgOutboxRepository() *PgOutboxRepository {
	return &PgOutboxRepository{}
}

func (r *PgOutboxRepository) Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  (message_id, aggregate_type, aggregate_id, change_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		draft.MessageID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.ChangeType),
		draft.Payload,
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

func (r *PgOutboxRepository) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error) {
	rows, err := db.Query(ctx, `
		SELECT id, message_id, aggregate_type, aggregate_id, change_type, payload, occurred_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished rows: %w", err)
	}
	defer rows.Close()

	var drafts []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		if err := rows.Scan(&d.SeqID, &d.MessageID, &d.AggregateType, &d.AggregateID,
			&d.ChangeType, &d.Payload, &d.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *PgOutboxRepository) MarkPublished(ctx context.Context, db DBTX, seqIDs []int64) error {
	if len(seqIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `UPDATE event_outbox SET published_at = now() WHERE id = ANY($1)`, seqIDs)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
