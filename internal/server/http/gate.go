package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/pkg/httpx"
)

// Gate is the per-request access pipeline at the HTTP boundary: it extracts
// the bearer credential, runs it through the auth service, and attaches the
// resolved user to the request context. Privileged routes chain RequireAdmin
// behind Require.
type Gate struct {
	Auth *service.AuthService
}

// Require authenticates the request and injects the resolved user.
func (g *Gate) Require() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				writeGateError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin users. It must run after Require.
func (g *Gate) RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin {
				writeGateError(w, service.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the authenticated user attached by Require.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(httpx.CtxKeyUser).(domain.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// writeGateError maps pipeline failures to their HTTP shape. 401s carry a
// WWW-Authenticate challenge per RFC 6750.
func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredential):
		writeUnauthorized(w, "missing authentication token")
	case errors.Is(err, service.ErrInvalidToken):
		writeUnauthorized(w, "invalid or expired token")
	case errors.Is(err, service.ErrMalformedPayload):
		writeUnauthorized(w, "invalid token payload")
	case errors.Is(err, service.ErrUserNotFound):
		writeUnauthorized(w, "user not found")
	case errors.Is(err, service.ErrNotWhitelisted):
		httpx.WriteError(w, http.StatusForbidden, "user not in whitelist")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "admin access required")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.WriteError(w, http.StatusUnauthorized, detail)
}
