package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "auth_identity"

// WithIdentity stores the authenticated identity in ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity from request context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// AccountChecker reports whether the admin account named by a token still exists.
type AccountChecker interface {
	AdminExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuthenticateAdmin returns middleware that validates admin JWT tokens and
// rejects tokens whose account has since been deleted.
func AuthenticateAdmin(jwtMgr *JWTManager, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractAndValidate(r, jwtMgr)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			exists, err := accounts.AdminExists(r.Context(), id.ID)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				return
			}
			if !exists {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin account no longer exists")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":  code,
		"error": msg,
	})
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager) (domain.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Identity{}, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return domain.Identity{}, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.IdentityFromToken(strings.TrimSpace(parts[1]))
}
