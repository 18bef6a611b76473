package authz

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/societyhub/societyhub/internal/shared"
)

// PrincipalSource resolves the stored principal (role plus explicit
// permission overrides) for a user ID. Implemented by the users
// repository.
type PrincipalSource interface {
	PrincipalFor(ctx context.Context, userID int64) (Principal, error)
}

// Middleware wires authorization helpers for HTTP handlers. Every guard
// fails closed: a missing session, unknown user, or resolver error
// produces 403, never a pass-through.
type Middleware struct {
	Source PrincipalSource
	Cache  *Cache
	Logger *slog.Logger
}

// RequireAny ensures the current user holds at least one of the
// permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.guard(func(caps Capabilities) bool {
		return caps.HasAny(perms...)
	})
}

// RequireAll ensures the current user holds every permission.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.guard(func(caps Capabilities) bool {
		return caps.HasAll(perms...)
	})
}

// RequireMinimumRole ensures the current user's role meets the minimum
// hierarchy level.
func (m Middleware) RequireMinimumRole(minimum Role) func(http.Handler) http.Handler {
	return m.guard(func(caps Capabilities) bool {
		return caps.AtLeast(minimum)
	})
}

// RequireAuthenticated ensures a resolved principal without any further
// permission requirement.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return m.guard(func(caps Capabilities) bool {
		return caps.IsAuthenticated
	})
}

func (m Middleware) guard(allowed func(Capabilities) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caps, ok := m.resolve(r)
			if !ok || !allowed(caps) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCapabilities(r.Context(), caps)))
		})
	}
}

func (m Middleware) resolve(r *http.Request) (Capabilities, bool) {
	userID, ok := m.currentUserID(r)
	if !ok {
		return Capabilities{}, false
	}
	principal, err := m.Source.PrincipalFor(r.Context(), userID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return Capabilities{}, false
	}
	return m.Cache.For(principal), true
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
