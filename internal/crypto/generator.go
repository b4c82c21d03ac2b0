package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NonceBytes is the entropy of a nonce before encoding.
const NonceBytes = 24

// NewNonce returns a URL-safe random string. Nonces key form submissions for
// duplicate detection and carry the OAuth state parameter.
func NewNonce() (string, error) {
	buf := make([]byte, NonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
