// Copyright 2026 Unicity Network

package signing

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	hash := sha256.Sum256([]byte("payload"))
	sig, err := kp.Sign(hash)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !Verify(kp.PublicKey(), hash, sig) {
		t.Fatalf("signature failed to verify")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	kp1, _ := Generate()
	kp2, _ := Generate()
	hash := sha256.Sum256([]byte("payload"))
	sig, _ := kp1.Sign(hash)
	if Verify(kp2.PublicKey(), hash, sig) {
		t.Fatalf("signature verified against the wrong public key")
	}
}

func TestVerifyNeverPanicsOnGarbage(t *testing.T) {
	hash := sha256.Sum256([]byte("x"))
	if Verify(nil, hash, nil) {
		t.Fatalf("nil inputs should not verify")
	}
	if Verify([]byte{1, 2, 3}, hash, []byte{4, 5, 6}) {
		t.Fatalf("garbage inputs should not verify")
	}
}

func TestDeriveMinterKeyPairDeterministic(t *testing.T) {
	tokenID := bytes.Repeat([]byte{0xAA}, 32)
	kp1, err := DeriveMinterKeyPair(tokenID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	kp2, err := DeriveMinterKeyPair(tokenID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !bytes.Equal(kp1.PublicKey(), kp2.PublicKey()) {
		t.Fatalf("minter key derivation is not deterministic")
	}

	otherID := bytes.Repeat([]byte{0xBB}, 32)
	kp3, _ := DeriveMinterKeyPair(otherID)
	if bytes.Equal(kp1.PublicKey(), kp3.PublicKey()) {
		t.Fatalf("different token ids must derive different minter keys")
	}
}
