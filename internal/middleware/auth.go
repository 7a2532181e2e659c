package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "mercando_session"

const unauthenticatedMessage = "Usuario no autenticado"

// SessionLookup resolves a session token; a nil session means unknown or expired.
type SessionLookup interface {
	GetByToken(ctx context.Context, token string) (*model.Session, error)
}

// SessionToken returns the token from the session cookie or, failing that,
// from an "Authorization: Bearer" header.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireAuth validates the session token and populates AuthContext.
// Requests without a valid session get a JSON 401.
func RequireAuth(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
				return
			}

			sess, err := sessions.GetByToken(r.Context(), token)
			if err != nil || sess == nil {
				writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{
				UserID:    sess.UserID,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
