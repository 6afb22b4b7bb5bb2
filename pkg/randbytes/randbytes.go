// Copyright 2026 Unicity Network

// Package randbytes generates the random byte strings the engine needs —
// predicate nonces, split new-token ids, burn nonces — the same way the
// teacher generates identifiers throughout pkg/proof and pkg/batch: via
// google/uuid rather than a bare crypto/rand.Read call, so every generated
// id carries a version/variant marker that tooling can spot-check.
package randbytes

import (
	"fmt"

	"github.com/google/uuid"
)

// Bytes32 returns 32 bytes built from two concatenated version-4 UUIDs.
// Each UUID contributes 16 bytes, 122 bits of them CSPRNG-backed random and
// 6 bits fixed version/variant markers.
func Bytes32() []byte {
	a := uuid.New()
	b := uuid.New()
	out := make([]byte, 0, 32)
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	return out
}

// TokenID returns a fresh random 32-byte token identifier.
func TokenID() []byte {
	return Bytes32()
}

// Nonce returns a fresh random 32-byte predicate nonce.
func Nonce() []byte {
	return Bytes32()
}

// String returns a fresh random identifier string, used for request
// correlation (not a hashable domain field).
func String() string {
	return fmt.Sprintf("%s-%s", uuid.New().String(), uuid.New().String())
}
