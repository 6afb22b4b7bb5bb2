// Copyright 2026 Unicity Network

package ids

import (
	"bytes"
	"testing"
)

func TestTokenIdHexRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAA}, 32)
	id := NewTokenId(raw)
	parsed, err := TokenIdFromHex(id.Hex())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !id.Equal(parsed) {
		t.Fatalf("hex round trip mismatch")
	}
}

func TestTokenIdDefensiveCopy(t *testing.T) {
	raw := []byte{1, 2, 3}
	id := NewTokenId(raw)
	raw[0] = 99
	if id.Bytes()[0] == 99 {
		t.Fatalf("constructor aliased caller's backing array")
	}
	got := id.Bytes()
	got[0] = 77
	if id.Bytes()[0] == 77 {
		t.Fatalf("accessor aliased internal backing array")
	}
}

func TestCBORRoundTrip(t *testing.T) {
	id := NewTokenId(bytes.Repeat([]byte{0x01}, 32))
	enc, err := id.MarshalCBOR()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out TokenId
	if err := out.UnmarshalCBOR(enc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !id.Equal(out) {
		t.Fatalf("CBOR round trip mismatch")
	}
}
