package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

// callerLoader resolves the authenticated user from the registry, so that
// permission checks see the stored role rather than the token claim.
type callerLoader interface {
	Caller(ctx context.Context) (*domain.User, error)
}

// RequirePermission lets the request through when the caller's stored role
// holds at least one of perms.
func RequirePermission(logger *slog.Logger, callers callerLoader, perms ...domain.Permission) Middleware {
	return guard(logger, callers, func(role domain.Role, _ *http.Request) bool {
		return domain.HasAny(role, perms...)
	})
}

// RouteGuard checks the request path against the route permission table.
// Paths the table does not list are open to every authenticated caller.
func RouteGuard(logger *slog.Logger, callers callerLoader) Middleware {
	return guard(logger, callers, func(role domain.Role, r *http.Request) bool {
		return domain.CanAccessRoute(role, r.URL.Path)
	})
}

func guard(logger *slog.Logger, callers callerLoader, allow func(domain.Role, *http.Request) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := callers.Caller(r.Context())
			switch {
			case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			case errors.Is(err, domain.ErrForbidden):
				writeError(w, http.StatusForbidden, "forbidden", "account suspended")
				return
			case err != nil:
				logger.ErrorContext(r.Context(), "load caller", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
				return
			}

			if !allow(caller.Role, r) {
				writeError(w, http.StatusForbidden, "forbidden", "missing permission")
				return
			}

			ctx := ctxutil.WithUserRole(r.Context(), caller.Role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
