package service

import (
	"context"
	"errors"
	"sync"

	"github.com/chatly/chatweb/internal/identity"
	"github.com/chatly/chatweb/internal/model"
)

var errNetwork = errors.New("dial tcp: connection refused")

type fakeAPI struct {
	mu sync.Mutex

	loginResp    model.AuthResponse
	loginErr     error
	registerResp model.AuthResponse
	registerErr  error
	googleResp   model.AuthResponse
	googleErr    error
	validResp    model.ValidSessionResponse
	validErr     error

	// block, when set, holds every Login/Register call until it is closed.
	block   chan struct{}
	started chan struct{}

	loginCalls    int
	registerCalls int
	validCalls    int
	lastLogin     model.LoginCredentials
	lastRegister  model.RegisterCredentials
	lastIDToken   string
}

// wait honors ctx the way the HTTP client does.
func (f *fakeAPI) wait(ctx context.Context) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error) {
	f.mu.Lock()
	f.loginCalls++
	f.lastLogin = creds
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return model.AuthResponse{}, err
	}
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, creds model.RegisterCredentials) (model.AuthResponse, error) {
	f.mu.Lock()
	f.registerCalls++
	f.lastRegister = creds
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return model.AuthResponse{}, err
	}
	return f.registerResp, f.registerErr
}

func (f *fakeAPI) GoogleAuth(_ context.Context, idToken string) (model.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIDToken = idToken
	return f.googleResp, f.googleErr
}

func (f *fakeAPI) ValidUser(context.Context, string) (model.ValidSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validCalls++
	return f.validResp, f.validErr
}

func (f *fakeAPI) calls() (login, register int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.registerCalls
}

type fakeIdentity struct {
	mu        sync.Mutex
	initCalls int
	initErr   error
	idToken   string
	exchErr   error
}

func (f *fakeIdentity) Init(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return f.initErr
}

func (f *fakeIdentity) Enabled() bool { return true }

func (f *fakeIdentity) AuthCodeURL(state string) string {
	return "https://idp.example/auth?state=" + state
}

func (f *fakeIdentity) Exchange(context.Context, string) (string, error) {
	return f.idToken, f.exchErr
}

var _ identity.Client = (*fakeIdentity)(nil)

func newTestAuthService(api *fakeAPI) (*AuthService, *fakeIdentity) {
	idc := &fakeIdentity{}
	return NewAuthService(api, idc, "/chats"), idc
}
