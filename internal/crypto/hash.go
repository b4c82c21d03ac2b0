package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

var ErrEmptyHandle = errors.New("session handle is empty")

// HandleHasher derives server-side store keys from session handles so a
// leaked store does not reveal usable cookie values.
type HandleHasher struct {
	key [blake2b.Size256]byte
}

// NewHandleHasher keys the hash with a digest of secret.
func NewHandleHasher(secret string) *HandleHasher {
	return &HandleHasher{key: blake2b.Sum256([]byte(secret))}
}

// Hash returns the hex-encoded keyed BLAKE2b-256 digest of handle.
func (h *HandleHasher) Hash(handle string) (string, error) {
	if handle == "" {
		return "", ErrEmptyHandle
	}

	mac, err := blake2b.New256(h.key[:])
	if err != nil {
		return "", fmt.Errorf("initializing blake2b: %w", err)
	}
	mac.Write([]byte(handle))

	return hex.EncodeToString(mac.Sum(nil)), nil
}
