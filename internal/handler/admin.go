package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/campusevents/calendar/internal/auth"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AccessService is the subset of service.AccessService the handlers call.
type AccessService interface {
	Authenticate(ctx context.Context, input service.LoginInput) (*domain.Identity, error)
	ListAdmins(ctx context.Context) ([]domain.AdminUser, error)
	AddAdmin(ctx context.Context, input service.AddAdminInput, requester domain.Identity) (*domain.AdminUser, error)
	DeleteAdmin(ctx context.Context, id uuid.UUID, requester domain.Identity) (int64, error)
}

// TokenIssuer mints the identity assertion returned on login.
type TokenIssuer interface {
	GenerateToken(id domain.Identity) (string, time.Time, error)
}

// AdminHandler handles admin login and admin account management.
type AdminHandler struct {
	access AccessService
	tokens TokenIssuer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(access AccessService, tokens TokenIssuer) *AdminHandler {
	return &AdminHandler{access: access, tokens: tokens}
}

type loginResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type deleteAdminRequest struct {
	ID string `json:"id"`
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(w, r, &input); err != nil {
		RespondError(w, err)
		return
	}
	input.IP = ClientIP(r)

	id, err := h.access.Authenticate(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(*id)
	if err != nil {
		RespondError(w, domain.ErrInternal("generate token", err))
		return
	}

	RespondJSON(w, http.StatusOK, loginResponse{
		ID:        id.ID,
		Username:  id.Username,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	admins, err := h.access.ListAdmins(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, nonNil(admins))
}

// AddUser handles POST /admin/users.
func (h *AdminHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no identity in context"))
		return
	}

	var input service.AddAdminInput
	if err := DecodeJSON(w, r, &input); err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.access.AddAdmin(r.Context(), input, requester)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, idResponse{ID: user.ID})
}

// DeleteUser handles DELETE /admin/users/{id} and DELETE /admin/users with body {"id"}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no identity in context"))
		return
	}

	raw := chi.URLParam(r, "id")
	if raw == "" {
		var body deleteAdminRequest
		if err := DecodeJSON(w, r, &body); err != nil {
			RespondError(w, err)
			return
		}
		raw = body.ID
	}
	if raw == "" {
		RespondError(w, domain.ErrValidation("missing id"))
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid admin id"))
		return
	}

	affected, err := h.access.DeleteAdmin(r.Context(), id, requester)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, affectedResponse{AffectedCount: affected})
}
