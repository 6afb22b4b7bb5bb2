// Copyright 2026 Unicity Network

// Package ids defines the engine's opaque byte-string identifiers:
// TokenId, TokenType and CoinId (§3). Each is an immutable, defensively
// copied byte string with canonical hex and CBOR forms; equality is
// byte-equality.
package ids

import (
	"encoding/json"
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/codec"
)

// TokenId globally, uniquely identifies one token instance. Created at
// mint, never mutated (§3).
type TokenId struct{ b []byte }

// TokenType identifies a token's class. Created by the issuer, never mutated.
type TokenType struct{ b []byte }

// CoinId identifies a fungible coin class, created once and shared across tokens.
type CoinId struct{ b []byte }

// NewTokenId clones raw into a TokenId. raw is conventionally 32 bytes but
// the engine does not enforce a length, matching the spec's "opaque bytes".
func NewTokenId(raw []byte) TokenId { return TokenId{b: codec.Clone(raw)} }

// NewTokenType clones raw into a TokenType.
func NewTokenType(raw []byte) TokenType { return TokenType{b: codec.Clone(raw)} }

// NewCoinId clones raw into a CoinId.
func NewCoinId(raw []byte) CoinId { return CoinId{b: codec.Clone(raw)} }

// TokenIdFromHex decodes a hex string into a TokenId.
func TokenIdFromHex(s string) (TokenId, error) {
	b, err := codec.FromHex(s)
	if err != nil {
		return TokenId{}, fmt.Errorf("ids: token id: %w", err)
	}
	return NewTokenId(b), nil
}

// TokenTypeFromHex decodes a hex string into a TokenType.
func TokenTypeFromHex(s string) (TokenType, error) {
	b, err := codec.FromHex(s)
	if err != nil {
		return TokenType{}, fmt.Errorf("ids: token type: %w", err)
	}
	return NewTokenType(b), nil
}

// CoinIdFromHex decodes a hex string into a CoinId.
func CoinIdFromHex(s string) (CoinId, error) {
	b, err := codec.FromHex(s)
	if err != nil {
		return CoinId{}, fmt.Errorf("ids: coin id: %w", err)
	}
	return NewCoinId(b), nil
}

func (id TokenId) Bytes() []byte   { return codec.Clone(id.b) }
func (id TokenId) Hex() string     { return codec.Hex(id.b) }
func (id TokenId) Equal(o TokenId) bool { return equalBytes(id.b, o.b) }
func (id TokenId) IsZero() bool     { return len(id.b) == 0 }

func (t TokenType) Bytes() []byte   { return codec.Clone(t.b) }
func (t TokenType) Hex() string     { return codec.Hex(t.b) }
func (t TokenType) Equal(o TokenType) bool { return equalBytes(t.b, o.b) }

func (c CoinId) Bytes() []byte   { return codec.Clone(c.b) }
func (c CoinId) Hex() string     { return codec.Hex(c.b) }
func (c CoinId) Equal(o CoinId) bool { return equalBytes(c.b, o.b) }

func (id TokenId) MarshalCBOR() ([]byte, error)   { return codec.Marshal(id.b) }
func (id *TokenId) UnmarshalCBOR(data []byte) error { return unmarshalInto(data, &id.b) }

func (t TokenType) MarshalCBOR() ([]byte, error)   { return codec.Marshal(t.b) }
func (t *TokenType) UnmarshalCBOR(data []byte) error { return unmarshalInto(data, &t.b) }

func (c CoinId) MarshalCBOR() ([]byte, error)   { return codec.Marshal(c.b) }
func (c *CoinId) UnmarshalCBOR(data []byte) error { return unmarshalInto(data, &c.b) }

func (id TokenId) MarshalJSON() ([]byte, error)   { return jsonHex(id.b) }
func (id *TokenId) UnmarshalJSON(data []byte) error { return jsonUnhex(data, &id.b) }

func (t TokenType) MarshalJSON() ([]byte, error)   { return jsonHex(t.b) }
func (t *TokenType) UnmarshalJSON(data []byte) error { return jsonUnhex(data, &t.b) }

func (c CoinId) MarshalJSON() ([]byte, error)   { return jsonHex(c.b) }
func (c *CoinId) UnmarshalJSON(data []byte) error { return jsonUnhex(data, &c.b) }

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func unmarshalInto(data []byte, dst *[]byte) error {
	var raw []byte
	if err := codec.Unmarshal(data, &raw); err != nil {
		return err
	}
	*dst = codec.Clone(raw)
	return nil
}

func jsonHex(b []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("%q", codec.Hex(b))), nil
}

func jsonUnhex(data []byte, dst *[]byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("ids: unmarshal JSON: %w", err)
	}
	b, err := codec.FromHex(s)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
