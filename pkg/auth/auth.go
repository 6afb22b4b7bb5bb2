// Copyright 2026 Unicity Network

// Package auth implements the Authenticator and RequestId types (§4.4):
// request identity and the signature bundle the aggregator consumes.
package auth

import (
	"github.com/holiman/uint256"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/signing"
	"github.com/unicitynetwork/token-engine/pkg/smt"
)

// Authenticator proves that the holder of a private key authorized a
// transition from a specific source-state hash to a specific
// transaction-data hash (glossary).
type Authenticator struct {
	PublicKey []byte        // defensive copy held internally
	Signature []byte
	StateHash codec.Imprint
	Algorithm string
}

// NewAuthenticator builds an Authenticator, cloning every byte slice it is given.
func NewAuthenticator(publicKey, signature []byte, stateHash codec.Imprint, algorithm string) Authenticator {
	return Authenticator{
		PublicKey: codec.Clone(publicKey),
		Signature: codec.Clone(signature),
		StateHash: stateHash.Clone(),
		Algorithm: algorithm,
	}
}

// Sign builds an Authenticator over dataHash using kp, binding it to
// sourceStateHash (§4.4 step in submitMintTransaction/submitTransaction:
// "authenticates over data.hash and sourceState.hash").
func Sign(kp *signing.KeyPair, sourceStateHash codec.Imprint, dataHash codec.Imprint) (Authenticator, error) {
	var h [32]byte
	copy(h[:], dataHash.Digest())
	sig, err := kp.Sign(h)
	if err != nil {
		return Authenticator{}, err
	}
	return NewAuthenticator(kp.PublicKey(), sig, sourceStateHash, constants.SigAlgoSecp256k1), nil
}

// Verify checks the authenticator's signature over dataHash using its
// declared algorithm. It never panics — an unknown algorithm or malformed
// key/signature simply fails to verify (§4.9).
func (a Authenticator) Verify(dataHash codec.Imprint) bool {
	if a.Algorithm != constants.SigAlgoSecp256k1 {
		return false
	}
	var h [32]byte
	copy(h[:], dataHash.Digest())
	return signing.Verify(a.PublicKey, h, a.Signature)
}

// RequestId is a leaf path in the aggregator's sparse Merkle tree, derived
// from (publicKey, stateHash): H(publicKey || stateHash.imprint).
type RequestId struct {
	imprint codec.Imprint
}

// NewRequestId derives the RequestId for (publicKey, stateHash).
func NewRequestId(publicKey []byte, stateHash codec.Imprint) RequestId {
	combined := make([]byte, 0, len(publicKey)+len(stateHash))
	combined = append(combined, publicKey...)
	combined = append(combined, stateHash...)
	return RequestId{imprint: codec.Sum256(combined)}
}

// MintPseudoStateHash yields the deterministic pseudo-state
// (createFromImprint(tokenId, MINT_SUFFIX)) a mint's RequestId anchors
// against, since a mint has no real predecessor state (§4.4).
func MintPseudoStateHash(tokenId []byte) codec.Imprint {
	combined := make([]byte, 0, len(tokenId)+len(constants.MintSuffix))
	combined = append(combined, tokenId...)
	combined = append(combined, constants.MintSuffix[:]...)
	return codec.Sum256(combined)
}

// ForMint derives the RequestId that anchors tokenId's mint transaction,
// using the canonical minter's public key.
func ForMint(minterPublicKey []byte, tokenId []byte) RequestId {
	return NewRequestId(minterPublicKey, MintPseudoStateHash(tokenId))
}

// Imprint returns the request id's underlying hash.
func (r RequestId) Imprint() codec.Imprint { return r.imprint.Clone() }

// ToUint256 exposes the request id as a big-endian 256-bit integer, for use
// as a sparse-Merkle path (as the spec requires).
func (r RequestId) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(r.imprint.Digest())
}

// Key renders the request id as an smt.Key for direct tree lookups, routed
// through the fixed-width uint256 representation so the tree path is the
// same 256-bit integer ToUint256 exposes (§4.8).
func (r RequestId) Key() smt.Key {
	return smt.KeyFromUint256(r.ToUint256())
}

// Equal reports whether two request ids are identical.
func (r RequestId) Equal(o RequestId) bool { return r.imprint.Equal(o.imprint) }
