package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestInitNotConfigured(t *testing.T) {
	c := NewGoogleClient(Config{})

	if err := c.Init(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Init() error = %v, want ErrNotConfigured", err)
	}
	if c.Enabled() {
		t.Error("Enabled() = true for empty config")
	}
	if got := c.AuthCodeURL("state"); got != "" {
		t.Errorf("AuthCodeURL() = %q, want empty", got)
	}
}

func TestInitIdempotent(t *testing.T) {
	c := NewGoogleClient(Config{ClientID: "client-1"})

	for i := 0; i < 3; i++ {
		if err := c.Init(context.Background()); err != nil {
			t.Fatalf("Init() call %d unexpected error: %v", i, err)
		}
	}
	if c.Enabled() {
		t.Error("Enabled() = true without secret and redirect URL")
	}
}

func TestAuthCodeURL(t *testing.T) {
	c := NewGoogleClient(Config{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
	})

	raw := c.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthCodeURL() returned invalid URL %q: %v", raw, err)
	}
	if u.Host != "accounts.google.com" {
		t.Errorf("host = %q, want accounts.google.com", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("scope") != "openid" {
		t.Errorf("scope = %q, want openid", q.Get("scope"))
	}
}

func TestExchangeReturnsIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error: %v", err)
		}
		if r.Form.Get("code") != "auth-code" {
			t.Errorf("code = %q, want auth-code", r.Form.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","token_type":"Bearer","id_token":"id-token"}`))
	}))
	defer tokenSrv.Close()

	c := NewGoogleClient(Config{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
		TokenURL:     tokenSrv.URL,
	})

	idToken, err := c.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange() unexpected error: %v", err)
	}
	if idToken != "id-token" {
		t.Errorf("Exchange() = %q, want %q", idToken, "id-token")
	}
}

func TestExchangeWithoutIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	c := NewGoogleClient(Config{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
		TokenURL:     tokenSrv.URL,
	})

	if _, err := c.Exchange(context.Background(), "auth-code"); !errors.Is(err, ErrNoIDToken) {
		t.Errorf("Exchange() error = %v, want ErrNoIDToken", err)
	}
}

func TestExchangeIsBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer tokenSrv.Close()
	defer close(release)

	c := NewGoogleClient(Config{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
		TokenURL:     tokenSrv.URL,
		Timeout:      50 * time.Millisecond,
	})

	start := time.Now()
	_, err := c.Exchange(context.Background(), "auth-code")
	if err == nil {
		t.Fatal("Exchange() expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Exchange() took %v, want it bounded by the client timeout", elapsed)
	}
}
