package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionIssuer   = "chatweb"
	sessionAudience = "chatweb-session"
	flashAudience   = "chatweb-flash"
)

var (
	ErrInvalidToken = errors.New("invalid or expired session cookie")
)

// SessionClaims is the signed payload of the session cookie. Exactly one of
// Handle (server-side store key) or Token (the opaque API token itself) is set.
type SessionClaims struct {
	jwt.RegisteredClaims
	Handle string `json:"hdl,omitempty"`
	Token  string `json:"tok,omitempty"`
}

// GenerateSessionToken signs a session cookie value carrying either a store
// handle or the API token.
func GenerateSessionToken(handle, token, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Handle: handle,
		Token:  token,
	}

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signed.SignedString([]byte(secret))
}

// ValidateSessionToken parses and verifies a session cookie value.
func ValidateSessionToken(value, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithAudience(sessionAudience))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Handle == "" && claims.Token == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// FlashClaims is the signed payload of the one-time notice cookie.
type FlashClaims struct {
	jwt.RegisteredClaims
	Kind    string `json:"knd"`
	Message string `json:"msg"`
}

// GenerateFlashToken signs a notice for the flash cookie.
func GenerateFlashToken(kind, message, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := FlashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{flashAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Kind:    kind,
		Message: message,
	}

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signed.SignedString([]byte(secret))
}

// ValidateFlashToken parses and verifies a flash cookie value. Session
// cookies are rejected by audience.
func ValidateFlashToken(value, secret string) (*FlashClaims, error) {
	token, err := jwt.ParseWithClaims(value, &FlashClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithAudience(flashAudience))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*FlashClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
