// Package session persists the remote API session token for a browser.
//
// The token lives under the key "userToken". In cookie mode the signed cookie
// carries the token itself. With a Backend configured the cookie carries a
// random handle and the token is kept server side under a keyed hash of it.
package session

import (
	"context"
	"errors"
	"time"
)

// TokenKey is the persisted key for the session token.
const TokenKey = "userToken"

var (
	// ErrNoToken is returned by TokenStore.Get when no token is stored.
	ErrNoToken = errors.New("no session token")

	// ErrNotFound is returned by a Backend for missing or expired entries.
	ErrNotFound = errors.New("session not found")
)

// TokenStore is the per-browser view of the session token.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Backend stores tokens server side. Keys are already hashed.
type Backend interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
