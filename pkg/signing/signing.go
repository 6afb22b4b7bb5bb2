// Copyright 2026 Unicity Network

// Package signing wraps the secp256k1/ECDSA primitive the spec treats as an
// external collaborator (§1, §6: "signing primitives (secp256k1 or
// equivalent)"). It follows the teacher's own choice of library
// (go-ethereum's crypto package is imported directly in
// pkg/verification/unified_verifier.go, pkg/anchor/anchor_manager.go,
// pkg/execution/commitment_builder.go) for key generation and ECDSA
// sign/verify, and decred's secp256k1 scalar type for the one piece
// go-ethereum's crypto package doesn't expose directly: reducing an
// arbitrary 32-byte digest into a valid private scalar for the
// deterministic minter-key derivation (§4.4).
package signing

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/constants"
)

// KeyPair is a secp256k1 signing key and its compressed public key.
type KeyPair struct {
	private *ecdsa.PrivateKey
	public  []byte // 33-byte compressed form
}

// Generate creates a fresh random keypair.
func Generate() (*KeyPair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("signing: generate key: %w", err)
	}
	return newKeyPair(priv), nil
}

// FromSecret deterministically derives a keypair from an arbitrary-length
// secret by SHA-256 hashing it into a 32-byte digest and reducing that
// digest modulo the secp256k1 curve order (via decred's ModNScalar
// reduction) into a valid private scalar.
func FromSecret(secret []byte) (*KeyPair, error) {
	digest := codec.Sum256(secret).Digest()
	scalarPriv := secp256k1.PrivKeyFromBytes(digest) // SetByteSlice reduces mod N
	reduced := scalarPriv.Serialize()

	priv, err := crypto.ToECDSA(reduced)
	if err != nil {
		return nil, fmt.Errorf("signing: derive key from secret: %w", err)
	}
	return newKeyPair(priv), nil
}

// DeriveMinterKeyPair derives the canonical minter keypair for tokenId:
// FromSecret(MINTER_SECRET || tokenId) (§4.4). Any party can reconstruct
// this keypair's public half to verify a mint authenticator.
func DeriveMinterKeyPair(tokenId []byte) (*KeyPair, error) {
	secret := make([]byte, 0, len(constants.MinterSecret)+len(tokenId))
	secret = append(secret, constants.MinterSecret...)
	secret = append(secret, tokenId...)
	return FromSecret(secret)
}

func newKeyPair(priv *ecdsa.PrivateKey) *KeyPair {
	pub := crypto.CompressPubkey(&priv.PublicKey)
	return &KeyPair{private: priv, public: codec.Clone(pub)}
}

// PublicKey returns a defensive copy of the 33-byte compressed public key.
func (k *KeyPair) PublicKey() []byte {
	return codec.Clone(k.public)
}

// Sign produces a 65-byte (R || S || V) ECDSA signature over a 32-byte hash.
func (k *KeyPair) Sign(hash [32]byte) ([]byte, error) {
	sig, err := crypto.Sign(hash[:], k.private)
	if err != nil {
		return nil, fmt.Errorf("signing: sign: %w", err)
	}
	return sig, nil
}

// Verify checks a signature produced by Sign (or any compatible 64/65-byte
// R||S[||V] ECDSA signature) against a 32-byte hash and a 33-byte
// compressed public key. It never panics on malformed input — malformed
// keys or signatures simply fail to verify, consistent with predicates'
// "verify never throws" contract (§4.3, §4.9).
func Verify(pubCompressed []byte, hash [32]byte, sig []byte) bool {
	if len(pubCompressed) == 0 || len(sig) < 64 {
		return false
	}
	pub, err := crypto.DecompressPubkey(pubCompressed)
	if err != nil {
		return false
	}
	uncompressed := crypto.FromECDSAPub(pub)
	return crypto.VerifySignature(uncompressed, hash[:], sig[:64])
}
