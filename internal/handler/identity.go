package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/chatly/chatweb/internal/flash"
	"github.com/chatly/chatweb/internal/service"
	"github.com/chatly/chatweb/internal/session"
)

const (
	stateCookieName = "chatweb_oauth_state"
	stateCookiePath = "/auth/google"
	stateMaxAge     = 600
)

// IdentityHandler serves the federated sign-in flow.
type IdentityHandler struct {
	service  *service.AuthService
	sessions *session.Manager
	notices  *flash.Notices
	secure   bool
}

// NewIdentityHandler creates a new IdentityHandler. secure marks the state
// cookie as HTTPS only.
func NewIdentityHandler(svc *service.AuthService, sessions *session.Manager, notices *flash.Notices, secure bool) *IdentityHandler {
	return &IdentityHandler{service: svc, sessions: sessions, notices: notices, secure: secure}
}

// HandleGoogleStart handles GET /auth/google requests by sending the browser
// to the provider's consent page.
func (h *IdentityHandler) HandleGoogleStart(w http.ResponseWriter, r *http.Request) {
	idc := h.service.Identity()
	if !idc.Enabled() {
		http.NotFound(w, r)
		return
	}
	if err := idc.Init(r.Context()); err != nil {
		slog.Error("identity client init failed", "error", err)
		h.fail(w, r)
		return
	}

	state := newNonce()
	if state == "" {
		h.fail(w, r)
		return
	}
	h.writeState(w, state, stateMaxAge)
	http.Redirect(w, r, idc.AuthCodeURL(state), http.StatusFound)
}

// HandleGoogleCallback handles GET /auth/google/callback requests.
func (h *IdentityHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.service.Identity().Enabled() {
		http.NotFound(w, r)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	h.writeState(w, "", -1)

	query := r.URL.Query()
	if err != nil || !validState(cookie.Value, query.Get("state")) {
		slog.Warn("google callback state mismatch")
		h.fail(w, r)
		return
	}
	if reason := query.Get("error"); reason != "" {
		slog.Info("google sign-in declined", "reason", reason)
		h.fail(w, r)
		return
	}

	store := h.sessions.ForRequest(w, r)
	err = h.service.SignInWithGoogle(r.Context(), store, query.Get("code"))
	h.notices.Write(w, service.GoogleNotice(err))
	if err != nil {
		slog.Error("google sign-in failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.service.ChatsURL(), http.StatusSeeOther)
}

func (h *IdentityHandler) fail(w http.ResponseWriter, r *http.Request) {
	h.notices.Write(w, service.GoogleNotice(service.ErrGoogleRejected))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *IdentityHandler) writeState(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     stateCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func validState(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
