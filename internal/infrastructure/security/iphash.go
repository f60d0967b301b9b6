// Package security hashes requester addresses so raw IPs are never stored or
// used as cache keys.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

type IPHasher struct {
	salt []byte
}

func NewIPHasher(salt string) *IPHasher {
	return &IPHasher{salt: []byte(salt)}
}

// Hash returns the hex HMAC-SHA256 of ip keyed by the configured salt.
func (h *IPHasher) Hash(ip string) string {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}
