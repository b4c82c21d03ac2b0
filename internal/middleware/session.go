package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/service"
	"github.com/chatly/chatweb/internal/session"
)

type contextKey string

const userKey contextKey = "user"

// SessionChecker resolves whether a stored token identifies a logged-in user.
type SessionChecker interface {
	CheckSession(ctx context.Context, store session.TokenStore) service.MountResult
}

// StoreFunc returns the TokenStore of the browser that sent r.
type StoreFunc func(w http.ResponseWriter, r *http.Request) session.TokenStore

// RequireSession returns middleware that lets through only requests whose
// session token the remote API accepts. Anonymous visitors are sent to
// loginPath.
func RequireSession(checker SessionChecker, stores StoreFunc, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := checker.CheckSession(r.Context(), stores(w, r))
			switch res.Status {
			case service.MountAuthenticated:
				ctx := context.WithValue(r.Context(), userKey, res.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			case service.MountError:
				slog.Error("session check failed", "path", r.URL.Path, "error", res.Err)
				http.Error(w, "authentication service unavailable", http.StatusBadGateway)
			default:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			}
		})
	}
}

// UserFromContext extracts the signed-in user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
