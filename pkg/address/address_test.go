// Copyright 2026 Unicity Network

package address

import (
	"strings"
	"testing"

	"github.com/unicitynetwork/token-engine/pkg/codec"
)

func TestDirectRoundTrip(t *testing.T) {
	ref := codec.Sum256([]byte("predicate-reference"))
	addr := NewDirect(ref)
	s, err := addr.String()
	if err != nil {
		t.Fatalf("string: %v", err)
	}
	if !strings.HasPrefix(s, "DIRECT://") {
		t.Fatalf("expected DIRECT:// prefix, got %s", s)
	}

	parsed, err := ParseDirect(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Reference().Equal(ref) {
		t.Fatalf("round-tripped reference mismatch")
	}
}

func TestDirectRejectsTamperedChecksum(t *testing.T) {
	ref := codec.Sum256([]byte("predicate-reference"))
	addr := NewDirect(ref)
	s, _ := addr.String()
	tampered := s[:len(s)-1] + "0"
	if tampered == s {
		tampered = s[:len(s)-1] + "1"
	}
	if _, err := ParseDirect(tampered); err == nil {
		t.Fatalf("expected checksum mismatch to be rejected")
	}
}

func TestDirectRejectsWrongScheme(t *testing.T) {
	if _, err := ParseDirect("PROXY://deadbeef"); err == nil {
		t.Fatalf("expected scheme mismatch to be rejected")
	}
}

func TestProxyRoundTrip(t *testing.T) {
	p := NewProxy("alice.example")
	s := p.String()
	parsed, err := ParseProxy(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.NameTag() != "alice.example" {
		t.Fatalf("expected nametag alice.example, got %s", parsed.NameTag())
	}
}
