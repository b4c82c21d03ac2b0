package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

// carryCookies copies the cookies set on rec onto a fresh request, like a
// browser would on its next navigation.
func carryCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func TestCookieModeRoundTrip(t *testing.T) {
	m := NewManager(nil, testSecret, time.Hour, false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	store := m.ForRequest(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if err := store.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != TokenKey {
		t.Fatalf("expected one %s cookie, got %+v", TokenKey, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	next := m.ForRequest(httptest.NewRecorder(), carryCookies(t, rec))
	token, err := next.Get(ctx)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if token != "abc" {
		t.Errorf("Get() = %q, want %q", token, "abc")
	}
}

func TestGetWithoutCookie(t *testing.T) {
	m := NewManager(nil, testSecret, time.Hour, false)
	store := m.ForRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))

	_, err := store.Get(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Get() error = %v, want ErrNoToken", err)
	}
}

func TestGetRejectsForgedCookie(t *testing.T) {
	forger := NewManager(nil, "other-secret", time.Hour, false)
	rec := httptest.NewRecorder()
	if err := forger.ForRequest(rec, httptest.NewRequest(http.MethodPost, "/login", nil)).Set(context.Background(), "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	m := NewManager(nil, testSecret, time.Hour, false)
	_, err := m.ForRequest(httptest.NewRecorder(), carryCookies(t, rec)).Get(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Get() error = %v, want ErrNoToken", err)
	}
}

func TestSetThenGetWithinSameRequest(t *testing.T) {
	m := NewManager(NewMemoryBackend(), testSecret, time.Hour, false)
	store := m.ForRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))
	ctx := context.Background()

	if err := store.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	token, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if token != "abc" {
		t.Errorf("Get() = %q, want %q", token, "abc")
	}
}

func TestBackendModeKeepsTokenOutOfCookie(t *testing.T) {
	backend := NewMemoryBackend()
	m := NewManager(backend, testSecret, time.Hour, true)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if err := m.ForRequest(rec, httptest.NewRequest(http.MethodPost, "/login", nil)).Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if !cookies[0].Secure {
		t.Error("expected Secure cookie")
	}
	if len(backend.entries) != 1 {
		t.Fatalf("expected one backend entry, got %d", len(backend.entries))
	}

	token, err := m.ForRequest(httptest.NewRecorder(), carryCookies(t, rec)).Get(ctx)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if token != "abc" {
		t.Errorf("Get() = %q, want %q", token, "abc")
	}
}

func TestClearRemovesBackendEntryAndExpiresCookie(t *testing.T) {
	backend := NewMemoryBackend()
	m := NewManager(backend, testSecret, time.Hour, false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if err := m.ForRequest(rec, httptest.NewRequest(http.MethodPost, "/login", nil)).Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	clearRec := httptest.NewRecorder()
	store := m.ForRequest(clearRec, carryCookies(t, rec))
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}

	if len(backend.entries) != 0 {
		t.Errorf("expected backend to be empty, got %d entries", len(backend.entries))
	}
	cookies := clearRec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNoToken) {
		t.Errorf("Get() after Clear() error = %v, want ErrNoToken", err)
	}
}

func TestBackendEntryExpires(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Now()
	backend.now = func() time.Time { return now }
	ctx := context.Background()

	if err := backend.Save(ctx, "k", "abc", time.Minute); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	now = now.Add(2 * time.Minute)

	if _, err := backend.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	var store MemoryStore
	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Get() on empty store error = %v, want ErrNoToken", err)
	}
	if err := store.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if token, _ := store.Get(ctx); token != "abc" {
		t.Errorf("Get() = %q, want %q", token, "abc")
	}
	if store.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", store.Writes())
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNoToken) {
		t.Errorf("Get() after Clear() error = %v, want ErrNoToken", err)
	}
}
