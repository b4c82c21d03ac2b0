package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatly/chatweb/internal/crypto"
	"github.com/google/uuid"
)

// Manager binds TokenStores to request cookies.
type Manager struct {
	backend Backend
	hasher  *crypto.HandleHasher
	secret  string
	ttl     time.Duration
	secure  bool
}

// NewManager creates a Manager. A nil backend selects cookie mode.
func NewManager(backend Backend, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		backend: backend,
		hasher:  crypto.NewHandleHasher(secret),
		secret:  secret,
		ttl:     ttl,
		secure:  secure,
	}
}

// ForRequest returns the TokenStore of the browser that sent r. Writes are
// sent to the browser through w.
func (m *Manager) ForRequest(w http.ResponseWriter, r *http.Request) TokenStore {
	return &requestStore{manager: m, w: w, r: r}
}

type requestStore struct {
	manager *Manager
	w       http.ResponseWriter
	r       *http.Request

	// written is set once Set or Clear ran during this request; later Gets
	// must not read the stale request cookie.
	written bool
	token   string
}

func (s *requestStore) Get(ctx context.Context) (string, error) {
	if s.written {
		if s.token == "" {
			return "", ErrNoToken
		}
		return s.token, nil
	}

	claims, ok := s.readCookie()
	if !ok {
		return "", ErrNoToken
	}
	if s.manager.backend == nil {
		return claims.Token, nil
	}
	if claims.Handle == "" {
		return "", ErrNoToken
	}

	key, err := s.manager.hasher.Hash(claims.Handle)
	if err != nil {
		return "", err
	}
	token, err := s.manager.backend.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("loading session: %w", err)
	}
	return token, nil
}

func (s *requestStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	m := s.manager
	var value string
	var err error
	if m.backend == nil {
		value, err = crypto.GenerateSessionToken("", token, m.secret, m.ttl)
	} else {
		value, err = s.saveHandle(ctx, token)
	}
	if err != nil {
		return err
	}

	s.writeCookie(value, int(m.ttl.Seconds()))
	s.written = true
	s.token = token
	return nil
}

func (s *requestStore) saveHandle(ctx context.Context, token string) (string, error) {
	m := s.manager

	// A fresh handle on every write; the previous entry is dropped so a
	// handle never outlives the token it was issued for.
	s.deletePrevious(ctx)

	handle := uuid.NewString()
	key, err := m.hasher.Hash(handle)
	if err != nil {
		return "", err
	}
	if err := m.backend.Save(ctx, key, token, m.ttl); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return crypto.GenerateSessionToken(handle, "", m.secret, m.ttl)
}

func (s *requestStore) Clear(ctx context.Context) error {
	if s.manager.backend != nil {
		s.deletePrevious(ctx)
	}
	s.writeCookie("", -1)
	s.written = true
	s.token = ""
	return nil
}

func (s *requestStore) deletePrevious(ctx context.Context) {
	if s.written {
		return
	}
	claims, ok := s.readCookie()
	if !ok || claims.Handle == "" {
		return
	}
	key, err := s.manager.hasher.Hash(claims.Handle)
	if err != nil {
		return
	}
	if err := s.manager.backend.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete previous session", "error", err)
	}
}

func (s *requestStore) readCookie() (*crypto.SessionClaims, bool) {
	if s.r == nil {
		return nil, false
	}
	cookie, err := s.r.Cookie(TokenKey)
	if err != nil {
		return nil, false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return nil, false
	}
	claims, err := crypto.ValidateSessionToken(value, s.manager.secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (s *requestStore) writeCookie(value string, maxAge int) {
	if s.w == nil {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     TokenKey,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.manager.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
