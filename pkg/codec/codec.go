// Copyright 2026 Unicity Network

// Package codec implements the engine's canonical binary encoding (§4.1):
// CBOR for every hashable field, with text strings for enum/algorithm
// labels, byte strings for raw bytes, arrays for ordered tuples, and an
// explicit CBOR null for absent optionals. Hash digests are carried as
// "imprints" — the hash algorithm tag prepended to the digest bytes — which
// is the canonical cross-object form used everywhere a hash is embedded in
// another object.
package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// HashAlgorithm identifies the digest algorithm carried in an Imprint.
// Only SHA256 is defined; every other value is "unknown" to this engine.
type HashAlgorithm uint8

const (
	SHA256 HashAlgorithm = 0
)

func (a HashAlgorithm) String() string {
	switch a {
	case SHA256:
		return "SHA256"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(a))
	}
}

// canonicalMode is the shared CBOR encode mode: deterministic (sorted map
// keys, shortest-form integers), used for every hash input and every
// CBOR-serialized domain object.
var canonicalMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: building canonical CBOR mode: %v", err))
	}
	return m
}()

// Marshal encodes v using the canonical CBOR mode.
func Marshal(v interface{}) ([]byte, error) {
	b, err := canonicalMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal CBOR: %w", err)
	}
	return b, nil
}

// Unmarshal decodes CBOR bytes produced by Marshal.
func Unmarshal(data []byte, v interface{}) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal CBOR: %w", err)
	}
	return nil
}

// Array canonically encodes an ordered tuple of fields as a CBOR array.
// Absent optionals must be passed as explicit nil so they encode as CBOR
// null, never be omitted from the slice.
func Array(fields ...interface{}) ([]byte, error) {
	return Marshal(fields)
}

// Hex lowercase-hex-encodes b.
func Hex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a lowercase-hex string.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("codec: invalid hex: %w", err)
	}
	return b, nil
}

// Clone returns a defensive copy of b. Every constructor that accepts a
// caller-owned byte slice clones it on the way in, and every accessor
// clones it on the way out, so no two objects ever alias the same backing
// array (§9).
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
