package service

import (
	"context"
	"errors"
	"testing"

	"github.com/chatly/chatweb/internal/identity"
	"github.com/chatly/chatweb/internal/model"
	"github.com/chatly/chatweb/internal/session"
)

func storeWith(t *testing.T, token string) *session.MemoryStore {
	t.Helper()
	store := &session.MemoryStore{}
	if token != "" {
		if err := store.Set(context.Background(), token); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}
	return store
}

func TestMount_NoTokenIsAnonymous(t *testing.T) {
	api := &fakeAPI{}
	svc, idc := newTestAuthService(api)

	res := svc.Mount(context.Background(), storeWith(t, ""))

	if res.Status != MountAnonymous {
		t.Errorf("Status = %v, want anonymous", res.Status)
	}
	if api.validCalls != 0 {
		t.Errorf("remote validity calls = %d, want 0", api.validCalls)
	}
	if idc.initCalls != 1 {
		t.Errorf("identity init calls = %d, want 1", idc.initCalls)
	}
}

func TestMount_ValidTokenIsAuthenticated(t *testing.T) {
	user := &model.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	api := &fakeAPI{validResp: model.ValidSessionResponse{User: user}}
	svc, _ := newTestAuthService(api)

	res := svc.Mount(context.Background(), storeWith(t, "tok"))

	if res.Status != MountAuthenticated {
		t.Fatalf("Status = %v, want authenticated", res.Status)
	}
	if res.User == nil || res.User.ID != "u1" {
		t.Errorf("User = %+v", res.User)
	}
}

func TestMount_UnknownTokenIsAnonymous(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestAuthService(api)

	res := svc.Mount(context.Background(), storeWith(t, "stale"))

	if res.Status != MountAnonymous {
		t.Errorf("Status = %v, want anonymous", res.Status)
	}
	if api.validCalls != 1 {
		t.Errorf("remote validity calls = %d, want 1", api.validCalls)
	}
}

func TestMount_RemoteErrorIsReported(t *testing.T) {
	api := &fakeAPI{validErr: errNetwork}
	svc, _ := newTestAuthService(api)

	res := svc.Mount(context.Background(), storeWith(t, "tok"))

	if res.Status != MountError {
		t.Fatalf("Status = %v, want error", res.Status)
	}
	if !errors.Is(res.Err, errNetwork) {
		t.Errorf("Err = %v, want %v", res.Err, errNetwork)
	}
}

func TestMount_IdentityInitFailureDoesNotBlock(t *testing.T) {
	api := &fakeAPI{}
	svc, idc := newTestAuthService(api)
	idc.initErr = errors.New("provider unreachable")

	res := svc.Mount(context.Background(), storeWith(t, ""))
	if res.Status != MountAnonymous {
		t.Errorf("Status = %v, want anonymous", res.Status)
	}

	idc.initErr = identity.ErrNotConfigured
	res = svc.Mount(context.Background(), storeWith(t, ""))
	if res.Status != MountAnonymous {
		t.Errorf("Status = %v, want anonymous", res.Status)
	}
}

func TestMountStatusString(t *testing.T) {
	tests := map[MountStatus]string{
		MountPending:       "pending",
		MountAuthenticated: "authenticated",
		MountAnonymous:     "anonymous",
		MountError:         "error",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestLogoutClearsToken(t *testing.T) {
	svc, _ := newTestAuthService(&fakeAPI{})
	store := storeWith(t, "tok")

	if err := svc.Logout(context.Background(), store); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if _, err := store.Get(context.Background()); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("Get() after logout error = %v, want ErrNoToken", err)
	}
}

func TestSignInWithGoogle_Success(t *testing.T) {
	api := &fakeAPI{googleResp: model.AuthResponse{Token: "g-token"}}
	svc, idc := newTestAuthService(api)
	idc.idToken = "id-token-1"
	store := storeWith(t, "")

	err := svc.SignInWithGoogle(context.Background(), store, "code")
	if err != nil {
		t.Fatalf("SignInWithGoogle() error: %v", err)
	}

	if api.lastIDToken != "id-token-1" {
		t.Errorf("remote got id token %q, want %q", api.lastIDToken, "id-token-1")
	}
	if token, _ := store.Get(context.Background()); token != "g-token" {
		t.Errorf("stored token = %q, want %q", token, "g-token")
	}
	if n := GoogleNotice(err); n.Kind != model.NoticeSuccess || n.Message != MsgGoogleSuccess {
		t.Errorf("GoogleNotice(nil) = %+v", n)
	}
}

func TestSignInWithGoogle_Rejected(t *testing.T) {
	api := &fakeAPI{}
	svc, idc := newTestAuthService(api)
	idc.idToken = "id-token-1"
	store := storeWith(t, "")

	err := svc.SignInWithGoogle(context.Background(), store, "code")
	if !errors.Is(err, ErrGoogleRejected) {
		t.Fatalf("SignInWithGoogle() error = %v, want ErrGoogleRejected", err)
	}
	if store.Writes() != 0 {
		t.Errorf("store writes = %d, want 0", store.Writes())
	}
	if n := GoogleNotice(err); n.Kind != model.NoticeError || n.Message != MsgGoogleFailed {
		t.Errorf("GoogleNotice(err) = %+v", n)
	}
}

func TestSignInWithGoogle_ExchangeFailure(t *testing.T) {
	api := &fakeAPI{googleResp: model.AuthResponse{Token: "g-token"}}
	svc, idc := newTestAuthService(api)
	idc.exchErr = identity.ErrNoIDToken

	err := svc.SignInWithGoogle(context.Background(), storeWith(t, ""), "code")
	if !errors.Is(err, identity.ErrNoIDToken) {
		t.Fatalf("SignInWithGoogle() error = %v, want ErrNoIDToken", err)
	}
	if api.lastIDToken != "" {
		t.Error("remote API must not be called when the exchange fails")
	}
}
