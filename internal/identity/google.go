// Package identity wraps the federated sign-in provider behind a small
// capability so the concrete provider can be swapped or faked.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	defaultTimeout = 10 * time.Second
)

var (
	ErrNotConfigured = errors.New("identity provider is not configured")
	ErrNoIDToken     = errors.New("identity provider returned no id_token")
)

// Client is the federated identity capability used by the forms.
type Client interface {
	// Init prepares the client. It is idempotent.
	Init(ctx context.Context) error
	// Enabled reports whether sign-in through the provider is available.
	Enabled() bool
	// AuthCodeURL returns the provider consent URL carrying state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the provider's ID token.
	Exchange(ctx context.Context, code string) (string, error)
}

// Config holds the provider credentials. AuthURL and TokenURL default to
// Google's endpoints. Timeout bounds each token request.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Timeout      time.Duration
}

// GoogleClient signs users in with Google using the authorization-code flow.
type GoogleClient struct {
	cfg    Config
	client *http.Client

	once    sync.Once
	oauth   *oauth2.Config
	initErr error
}

// NewGoogleClient creates a GoogleClient. Nothing is contacted until Init.
func NewGoogleClient(cfg Config) *GoogleClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = googleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = googleTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &GoogleClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *GoogleClient) Init(context.Context) error {
	c.once.Do(func() {
		if c.cfg.ClientID == "" {
			c.initErr = ErrNotConfigured
			return
		}
		c.oauth = &oauth2.Config{
			ClientID:     c.cfg.ClientID,
			ClientSecret: c.cfg.ClientSecret,
			RedirectURL:  c.cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.cfg.AuthURL,
				TokenURL: c.cfg.TokenURL,
			},
			Scopes: []string{"openid"},
		}
	})
	return c.initErr
}

// Enabled requires a client id plus the secret and redirect URL the
// authorization-code flow needs.
func (c *GoogleClient) Enabled() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != "" && c.cfg.RedirectURL != ""
}

func (c *GoogleClient) AuthCodeURL(state string) string {
	if err := c.Init(context.Background()); err != nil {
		return ""
	}
	return c.oauth.AuthCodeURL(state)
}

func (c *GoogleClient) Exchange(ctx context.Context, code string) (string, error) {
	if err := c.Init(ctx); err != nil {
		return "", err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}
