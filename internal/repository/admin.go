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

// PgAdminRepository implements AdminRepository using pgx.
type PgAdminRepository struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

// NewPgAdminRepository creates a new PgAdminRepository.
func NewPgAdminRepository(pool *pgxpool.Pool, outbox OutboxRepository) *PgAdminRepository {
	return &PgAdminRepository{pool: pool, outbox: outbox}
}

// FindByUsername returns an admin by exact username, or nil if not found.
func (r *PgAdminRepository) FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_by, created_at
		FROM admin_users WHERE username = $1`, username)

	u := &domain.AdminUser{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return u, nil
}

// FindByID returns an admin by id, or nil if not found. The hash is not loaded.
func (r *PgAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	u := &domain.AdminUser{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, created_by, created_at
		FROM admin_users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.CreatedBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return u, nil
}

// List returns all admins without their password hashes.
func (r *PgAdminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, created_by, created_at
		FROM admin_users
		ORDER BY created_at DESC, username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]domain.AdminUser, 0)
	for rows.Next() {
		var u domain.AdminUser
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedBy, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return admins, nil
}

// Create inserts a new admin.
func (r *PgAdminRepository) Create(ctx context.Context, username, passwordHash string, createdBy *string) (*domain.AdminUser, error) {
	u := &domain.AdminUser{Username: username, PasswordHash: passwordHash, CreatedBy: createdBy}
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO admin_users (username, password_hash, created_by)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			username, passwordHash, createdBy).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			return err
		}
		actor := ""
		if createdBy != nil {
			actor = *createdBy
		}
		return r.outbox.Insert(ctx, tx, domain.NewAdminChange(domain.ChangeAdminCreated, u.ID, username, actor, u.CreatedAt))
	})
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return u, nil
}

// CreateIfEmpty seeds an admin when the table is empty. Concurrent callers
// are serialized by an advisory lock so only one row is ever seeded.
func (r *PgAdminRepository) CreateIfEmpty(ctx context.Context, username, passwordHash, createdBy string) (bool, error) {
	var created bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockAdmins(ctx, tx); err != nil {
			return err
		}
		var id uuid.UUID
		var createdAt time.Time
		err := tx.QueryRow(ctx, `
			INSERT INTO admin_users (username, password_hash, created_by)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (SELECT 1 FROM admin_users)
			RETURNING id, created_at`,
			username, passwordHash, createdBy).Scan(&id, &createdAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		created = true
		return r.outbox.Insert(ctx, tx, domain.NewAdminChange(domain.ChangeAdminCreated, id, username, createdBy, createdAt))
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return created, nil
}

// Delete removes an admin by id. The last remaining admin is never removed.
func (r *PgAdminRepository) Delete(ctx context.Context, id uuid.UUID, actor string) (int64, error) {
	var affected int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockAdmins(ctx, tx); err != nil {
			return err
		}
		var username string
		err := tx.QueryRow(ctx, `
			DELETE FROM admin_users
			WHERE id = $1 AND (SELECT COUNT(*) FROM admin_users) > 1
			RETURNING username`, id).Scan(&username)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		affected = 1
		return r.outbox.Insert(ctx, tx, domain.NewAdminChange(domain.ChangeAdminDeleted, id, username, actor, time.Now().UTC()))
	})
	if err != nil {
		return 0, fmt.Errorf("delete admin: %w", err)
	}
	return affected, nil
}
