package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLoginAttemptRepository implements LoginAttemptRepository using pgx.
type PgLoginAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewPgLoginAttemptRepository creates a new PgLoginAttemptRepository.
func NewPgLoginAttemptRepository(pool *pgxpool.Pool) *PgLoginAttemptRepository {
	return &PgLoginAttemptRepository{pool: pool}
}

// Record stores an attempt. A zero CreatedAt falls back to the database clock.
func (r *PgLoginAttemptRepository) Record(ctx context.Context, attempt domain.LoginAttempt) error {
	var createdAt *time.Time
	if !attempt.CreatedAt.IsZero() {
		createdAt = &attempt.CreatedAt
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_attempts (username, ip_address, success, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))`,
		attempt.Username, attempt.IPAddress, attempt.Success, createdAt)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

func (r *PgLoginAttemptRepository) CountFailures(ctx context.Context, username string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE username = $1 AND success = false AND created_at > $2`,
		username, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return count, nil
}
