package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/54b3r/shopsense-go/internal/identity"
	"github.com/54b3r/shopsense-go/internal/logging"
)

type userContextKey struct{}

// userFromContext returns the authenticated user attached to the request, if
// any. Anonymous requests return ok=false and a zero User.
func userFromContext(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(identity.User)
	return u, ok
}

// authMiddleware resolves the Authorization bearer token to a user and stores
// it in the request context. Requests without a token pass through as
// anonymous; a token that fails to resolve is rejected with 401 so a stale
// session never silently downgrades to anonymous answers.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || s.resolver == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			log := logging.FromContext(r.Context())
			if errors.Is(err, identity.ErrUnauthenticated) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
				return
			}
			log.Error("identity resolution failed", slog.Any("error", err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "authentication temporarily unavailable"})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
