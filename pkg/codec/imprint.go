// Copyright 2026 Unicity Network

package codec

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Imprint is a hash digest with its algorithm tag prepended: the canonical
// cross-object form for embedding one hashable object's hash inside
// another's hash input (§4.1). Its CBOR form is a byte string; its hex form
// is lowercase hex of the full (tag || digest) byte sequence.
type Imprint []byte

// NewImprint builds an Imprint from an algorithm tag and digest bytes.
func NewImprint(algo HashAlgorithm, digest []byte) Imprint {
	out := make(Imprint, 0, 1+len(digest))
	out = append(out, byte(algo))
	out = append(out, digest...)
	return out
}

// Sum256 computes SHA256(data) and wraps it as an Imprint.
func Sum256(data []byte) Imprint {
	d := sha256.Sum256(data)
	return NewImprint(SHA256, d[:])
}

// HashFields canonically CBOR-encodes fields as an ordered array and
// returns the SHA256 Imprint of the encoding. This is the engine's single
// hashing entry point for every hashable domain object in §3/§4.
func HashFields(fields ...interface{}) (Imprint, error) {
	enc, err := Array(fields...)
	if err != nil {
		return nil, fmt.Errorf("codec: hash fields: %w", err)
	}
	return Sum256(enc), nil
}

// Algorithm returns the leading algorithm tag.
func (im Imprint) Algorithm() HashAlgorithm {
	if len(im) == 0 {
		return HashAlgorithm(0xFF)
	}
	return HashAlgorithm(im[0])
}

// Digest returns the digest bytes following the algorithm tag.
func (im Imprint) Digest() []byte {
	if len(im) < 1 {
		return nil
	}
	return Clone(im[1:])
}

// KnownAlgorithm reports whether the tag is a hash algorithm this engine
// understands. Inclusion-proof verification must reject unknown algorithms
// (§4.5 createTransaction, §8 scenario 2) rather than silently accept them.
func (im Imprint) KnownAlgorithm() bool {
	return im.Algorithm() == SHA256
}

// Hex returns lowercase hex of the full imprint (tag || digest).
func (im Imprint) Hex() string {
	return Hex(im)
}

// Equal reports byte-for-byte equality. Object equality throughout the
// engine is hash-equality, so this is the comparison every composite type's
// Equal method ultimately bottoms out on.
func (im Imprint) Equal(other Imprint) bool {
	if len(im) != len(other) {
		return false
	}
	for i := range im {
		if im[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a defensive copy.
func (im Imprint) Clone() Imprint {
	return Imprint(Clone(im))
}

// MarshalCBOR implements cbor.Marshaler: an Imprint encodes as a raw byte string.
func (im Imprint) MarshalCBOR() ([]byte, error) {
	return Marshal([]byte(im))
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (im *Imprint) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := Unmarshal(data, &raw); err != nil {
		return err
	}
	*im = Imprint(raw)
	return nil
}

// MarshalJSON renders the imprint as a lowercase hex string, per the
// engine's "all binary fields are lowercase hex" ledger convention (§6).
func (im Imprint) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", im.Hex())), nil
}

// UnmarshalJSON parses a lowercase hex string back into an Imprint.
func (im *Imprint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("codec: unmarshal imprint JSON: %w", err)
	}
	b, err := FromHex(s)
	if err != nil {
		return err
	}
	*im = Imprint(b)
	return nil
}
