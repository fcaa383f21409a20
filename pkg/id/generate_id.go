// Package id mints the opaque identifiers shared across the marketplace:
// orders, profiles and actor ids all use the same 32-char lowercase hex
// shape, which the HTTP layer validates with the hex32 tag.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// 16 random bytes encode to the 32 hex chars the id columns are sized for.
const rawLen = 16

// NewID32 returns a fresh identifier: exactly 32 lowercase hex characters,
// no separators or prefixes.
func NewID32() string {
	b := make([]byte, rawLen)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
