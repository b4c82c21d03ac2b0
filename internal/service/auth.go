package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chatly/chatweb/internal/identity"
	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/session"
	"golang.org/x/sync/singleflight"
)

// AuthAPI is the remote authentication API.
type AuthAPI interface {
	Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (model.AuthResponse, error)
	GoogleAuth(ctx context.Context, idToken string) (model.AuthResponse, error)
	ValidUser(ctx context.Context, token string) (model.ValidSessionResponse, error)
}

// MountStatus is the outcome of the page mount effect.
type MountStatus int

const (
	MountPending MountStatus = iota
	MountAuthenticated
	MountAnonymous
	MountError
)

func (s MountStatus) String() string {
	switch s {
	case MountAuthenticated:
		return "authenticated"
	case MountAnonymous:
		return "anonymous"
	case MountError:
		return "error"
	default:
		return "pending"
	}
}

// MountResult is the resolved session check of a page mount.
type MountResult struct {
	Status MountStatus
	User   *model.User
	Err    error
}

// AuthService drives the login and registration flows against the remote API.
type AuthService struct {
	api      AuthAPI
	identity identity.Client
	chatsURL string

	// inflight collapses duplicate submissions and concurrent session checks.
	inflight singleflight.Group
}

// NewAuthService creates a new AuthService. chatsURL is the navigation
// target after a successful sign-in.
func NewAuthService(api AuthAPI, idc identity.Client, chatsURL string) *AuthService {
	return &AuthService{
		api:      api,
		identity: idc,
		chatsURL: chatsURL,
	}
}

// ChatsURL returns the authenticated area every successful flow redirects to.
func (s *AuthService) ChatsURL() string {
	return s.chatsURL
}

// Identity returns the federated identity client.
func (s *AuthService) Identity() identity.Client {
	return s.identity
}

// Mount runs the page initialization effect: it initializes the identity
// client and checks whether the stored token identifies a logged-in user.
func (s *AuthService) Mount(ctx context.Context, store session.TokenStore) MountResult {
	if err := s.identity.Init(ctx); err != nil && !errors.Is(err, identity.ErrNotConfigured) {
		slog.Warn("identity client init failed", "error", err)
	}

	return s.CheckSession(ctx, store)
}

// CheckSession reports whether the stored token identifies a logged-in user.
func (s *AuthService) CheckSession(ctx context.Context, store session.TokenStore) MountResult {
	token, err := store.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return MountResult{Status: MountAnonymous}
		}
		return MountResult{Status: MountError, Err: err}
	}

	v, err := s.share(ctx, "valid:"+token, func(ctx context.Context) (interface{}, error) {
		return s.api.ValidUser(ctx, token)
	})
	if err != nil {
		return MountResult{Status: MountError, Err: err}
	}

	resp := v.(model.ValidSessionResponse)
	if resp.User == nil {
		return MountResult{Status: MountAnonymous}
	}
	return MountResult{Status: MountAuthenticated, User: resp.User}
}

// Logout clears the stored session token.
func (s *AuthService) Logout(ctx context.Context, store session.TokenStore) error {
	return store.Clear(ctx)
}

// once runs call at most once concurrently per nonce. Submissions without a
// nonce are never collapsed.
func (s *AuthService) once(ctx context.Context, key string, call func(context.Context) (model.AuthResponse, error)) (model.AuthResponse, error) {
	if key == "" {
		return call(ctx)
	}
	v, err := s.share(ctx, key, func(ctx context.Context) (interface{}, error) {
		return call(ctx)
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	return v.(model.AuthResponse), nil
}

// share runs fn once per key among concurrent callers. The shared call is
// detached from any single caller's cancellation and is bounded by the API
// client's timeout instead; each caller stops waiting when its own ctx ends.
func (s *AuthService) share(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
