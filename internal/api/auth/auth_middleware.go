package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/perkhub/perkhub/internal/api"
	"github.com/perkhub/perkhub/internal/api/user"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser returns the authenticated user stored by the Authenticate middleware.
func CurrentUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok
}

// ContextWithUser returns a context carrying the given user, as stored by the
// Authenticate middleware.
func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// Authenticate validates the bearer token on every request and stores the
// resolved user in the request context.
func Authenticate(svc Service, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				w.Header().Set("WWW-Authenticate", "Bearer")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				w.Header().Set("WWW-Authenticate", "Bearer")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			u, err := svc.Authorize(ctx, headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token authorization failed", slog.Any("error", err))
				w.Header().Set("WWW-Authenticate", "Bearer")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, u)))
		})
	}
}

// RequireActiveUser runs after Authenticate and rejects deactivated users.
func RequireActiveUser(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r.Context())
			if !ok {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			if err := RequireActive(u); err != nil {
				logger.WarnContext(r.Context(), "Deactivated user rejected", slog.String("username", u.Username))
				api.ErrorResponse(w, r, api.StatusForError(err), "Inactive user")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
