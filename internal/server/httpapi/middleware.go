package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/avoronov/accountd/internal/common"
	"github.com/avoronov/accountd/internal/server/models"
)

type ctxKey string

const sessionUserKey ctxKey = "sessionUser"

// sessionTokenFromRequest extracts the session token from the Authorization
// header (with optional Bearer prefix) or, failing that, the session cookie.
func sessionTokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(common.SessionTokenHeaderName); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}

	if c, err := r.Cookie(common.SessionTokenCookieName); err == nil {
		return c.Value
	}

	return ""
}

// withSession resolves the caller's identity from the presented token and
// stores the owning user on the request context. Requests without a
// resolvable session are rejected before the handler runs.
func (s *HTTPServer) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionTokenFromRequest(r)

		user, err := s.users.ResolveSession(r.Context(), token)
		if err != nil {
			s.logger.Debug(r.Context(), "session rejected", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthenticated"})
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionUser returns the authenticated user placed on the context by
// withSession.
func sessionUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(sessionUserKey).(*models.User)
	return u, ok
}
