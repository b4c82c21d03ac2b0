// Package flash carries one-time notices across a redirect.
package flash

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatly/chatweb/internal/crypto"
	"github.com/chatly/chatweb/internal/model"
)

const (
	CookieName = "chatweb_flash"

	// maxAge bounds how long a notice waits for the next page render.
	maxAge = time.Minute
)

// Notices reads and writes the signed flash cookie.
type Notices struct {
	secret string
	secure bool
}

// New creates a Notices signing with secret. secure marks the cookie as
// HTTPS only.
func New(secret string, secure bool) *Notices {
	return &Notices{secret: secret, secure: secure}
}

// Write stores notice in a cookie read by the next page render.
func (n *Notices) Write(w http.ResponseWriter, notice model.Notice) {
	normalized, ok := normalize(notice)
	if !ok {
		return
	}
	value, err := crypto.GenerateFlashToken(string(normalized.Kind), normalized.Message, n.secret, maxAge)
	if err != nil {
		slog.Error("failed to sign flash notice", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear returns the pending notice, if any, and expires the cookie.
// Unsigned or tampered cookies are dropped.
func (n *Notices) ReadAndClear(w http.ResponseWriter, r *http.Request) (model.Notice, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.Notice{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return model.Notice{}, false
	}
	claims, err := crypto.ValidateFlashToken(value, n.secret)
	if err != nil {
		return model.Notice{}, false
	}
	return normalize(model.Notice{Kind: model.NoticeKind(claims.Kind), Message: claims.Message})
}

func normalize(notice model.Notice) (model.Notice, bool) {
	notice.Message = strings.TrimSpace(notice.Message)
	if notice.Message == "" {
		return model.Notice{}, false
	}
	notice.Kind = model.NoticeKind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case model.NoticeSuccess, model.NoticeInfo, model.NoticeError:
		return notice, true
	default:
		return model.Notice{}, false
	}
}
