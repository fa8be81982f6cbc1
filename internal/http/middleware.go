package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storefront"
)

// SessionHeader carries the client session id in both directions.
const SessionHeader = "X-Session-ID"

type ctxKey int

const sessionKey ctxKey = iota

type SessionSource interface {
	NewID() string
	Get(ctx context.Context, id string) (*storefront.Session, error)
}

// SessionMiddleware resolves the client session. A request without a session
// id is given a new one, echoed back in SessionHeader.
func SessionMiddleware(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionHeader))
			if id == "" {
				id = sessions.NewID()
			}

			sess, err := sessions.Get(r.Context(), id)
			if err != nil {
				handleError(w, r, err)
				return
			}

			w.Header().Set(SessionHeader, sess.ID)
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin lets only logged-in admin users through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if !user.Authenticated() {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		if !user.IsAdmin {
			respondError(w, http.StatusForbidden, "permission_denied", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *storefront.Session {
	sess, _ := ctx.Value(sessionKey).(*storefront.Session)
	return sess
}

func currentUser(ctx context.Context) *domain.UserInfo {
	sess := sessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	return sess.User()
}
