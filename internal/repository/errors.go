package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUsernameTaken is returned when an insert hits the admin_users username constraint.
var ErrUsernameTaken = errors.New("username already taken")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
