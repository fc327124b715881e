package domain

import (
	"time"

	"github.com/google/uuid"
)

// BootstrapUsername and BootstrapPassword seed the first admin account when
// admin_users is empty. Operators are expected to rotate the password.
const (
	BootstrapUsername  = "admin"
	BootstrapPassword  = "admin123"
	BootstrapCreatedBy = "system"
)

// AdminUser represents an admin_users row.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedBy    *string   `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal returned by a successful login.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// LoginAttempt represents a login_attempts row.
type LoginAttempt struct {
	Username  string
	IPAddress string
	Success   bool
	CreatedAt time.Time
}
