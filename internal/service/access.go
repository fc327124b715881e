package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/campusevents/calendar/internal/auth"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/repository"
	"github.com/google/uuid"
)

// LoginGuard throttles repeated failed logins for a username.
type LoginGuard interface {
	CheckLocked(ctx context.Context, username string) error
	RecordAttempt(ctx context.Context, username, ip string, success bool)
}

// AccessService authenticates admins and manages admin accounts.
type AccessService struct {
	admins repository.AdminRepository
	guard  LoginGuard
	logger *slog.Logger
}

// NewAccessService creates a new AccessService. guard may be nil.
func NewAccessService(admins repository.AdminRepository, guard LoginGuard, logger *slog.Logger) *AccessService {
	return &AccessService{
		admins: admins,
		guard:  guard,
		logger: logger,
	}
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// AddAdminInput holds the add-admin request fields.
type AddAdminInput struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	CreatedBy string `json:"created_by"`
}

// Authenticate verifies credentials. An unknown username and a wrong password
// produce the same error, and both pay for a bcrypt comparison.
func (s *AccessService) Authenticate(ctx context.Context, input LoginInput) (*domain.Identity, error) {
	if err := domain.ValidateCredentials(input.Username, input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if s.guard != nil {
		if err := s.guard.CheckLocked(ctx, input.Username); err != nil {
			return nil, err
		}
	}

	user, err := s.admins.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find admin", err)
	}

	var ok bool
	if user == nil {
		auth.BurnPasswordCheck(input.Password)
	} else {
		ok = auth.CheckPassword(user.PasswordHash, input.Password)
	}

	if s.guard != nil {
		s.guard.RecordAttempt(ctx, input.Username, input.IP, ok)
	}
	if !ok {
		s.logger.Info("admin login rejected", "ip", input.IP)
		return nil, domain.ErrUnauthorized(domain.MsgInvalidCredentials)
	}

	s.logger.Info("admin logged in", "admin_id", user.ID)
	return &domain.Identity{ID: user.ID, Username: user.Username}, nil
}

// ListAdmins returns all admin accounts, newest first, without hashes.
func (s *AccessService) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list admins", err)
	}
	for i := range admins {
		admins[i].PasswordHash = ""
	}
	return admins, nil
}

// AddAdmin creates an admin account. created_by defaults to the requesting admin.
func (s *AccessService) AddAdmin(ctx context.Context, input AddAdminInput, requester domain.Identity) (*domain.AdminUser, error) {
	if err := domain.ValidateCredentials(input.Username, input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.admins.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find admin", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict(domain.MsgUsernameExists)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	createdBy := strings.TrimSpace(input.CreatedBy)
	if createdBy == "" {
		createdBy = requester.Username
	}
	var createdByPtr *string
	if createdBy != "" {
		createdByPtr = &createdBy
	}

	user, err := s.admins.Create(ctx, input.Username, hash, createdByPtr)
	if errors.Is(err, repository.ErrUsernameTaken) {
		return nil, domain.ErrConflict(domain.MsgUsernameExists)
	}
	if err != nil {
		return nil, domain.ErrInternal("create admin", err)
	}
	user.PasswordHash = ""

	s.logger.Info("admin created", "admin_id", user.ID, "created_by", createdBy)
	return user, nil
}

// DeleteAdmin removes an admin account. Deleting one's own account is always
// forbidden, checked before the store is touched.
func (s *AccessService) DeleteAdmin(ctx context.Context, id uuid.UUID, requester domain.Identity) (int64, error) {
	if id == requester.ID {
		return 0, domain.ErrForbidden(domain.MsgCannotDeleteSelf)
	}

	affected, err := s.admins.Delete(ctx, id, requester.Username)
	if err != nil {
		return 0, domain.ErrInternal("delete admin", err)
	}

	s.logger.Info("admin deleted", "admin_id", id, "requested_by", requester.ID, "affected", affected)
	return affected, nil
}

// AdminExists reports whether the account behind a token is still present.
// A token outlives its account when the account is deleted before expiry.
func (s *AccessService) AdminExists(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return false, domain.ErrInternal("find admin", err)
	}
	return user != nil, nil
}

// EnsureBootstrapAdmin seeds the well-known admin account when none exist.
func (s *AccessService) EnsureBootstrapAdmin(ctx context.Context) (bool, error) {
	hash, err := auth.HashPassword(domain.BootstrapPassword)
	if err != nil {
		return false, domain.ErrInternal("hash bootstrap password", err)
	}

	created, err := s.admins.CreateIfEmpty(ctx, domain.BootstrapUsername, hash, domain.BootstrapCreatedBy)
	if err != nil {
		return false, domain.ErrInternal("seed bootstrap admin", err)
	}
	if created {
		s.logger.Warn("seeded bootstrap admin; rotate its password",
			"username", domain.BootstrapUsername)
	}
	return created, nil
}
