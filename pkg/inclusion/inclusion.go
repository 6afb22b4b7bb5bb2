// Copyright 2026 Unicity Network

// Package inclusion implements InclusionProof: a path through the
// aggregator's sparse Merkle tree proving (or disproving) membership at a
// RequestId-derived leaf (§3, §4.4).
package inclusion

import (
	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/smt"
)

// Status is the result of checking an inclusion proof against a request id.
type Status string

const (
	StatusOK                Status = "OK"
	StatusPathNotIncluded   Status = "PATH_NOT_INCLUDED"
	StatusHashMismatch      Status = "HASH_MISMATCH"
	StatusUnknownHashAlgo   Status = "UNKNOWN_HASH_ALGORITHM"
)

// Proof is a single InclusionProof: an SMT path, an optional authenticator,
// and an optional transaction hash (the hash the aggregator committed
// alongside the authenticator, present once a commitment has been
// included).
type Proof struct {
	MerklePath      *smt.Proof
	Authenticator   *auth.Authenticator // nil if the aggregator hasn't stored one (path not yet included)
	TransactionHash codec.Imprint       // nil if absent
}

// HasAuthenticator reports whether the proof carries an authenticator.
func (p *Proof) HasAuthenticator() bool { return p.Authenticator != nil }

// VerifyAgainst checks the Merkle path for requestId against the proof's
// own embedded root (the aggregator is trusted to publish/sign that root;
// validating the aggregator's commitment to it is outside this engine's
// scope, per §1) and reports the resulting status. It never panics on a
// malformed proof.
func (p *Proof) VerifyAgainst(requestId auth.RequestId) Status {
	if p == nil || p.MerklePath == nil {
		return StatusPathNotIncluded
	}
	if p.MerklePath.Key != requestId.Key() {
		return StatusPathNotIncluded
	}
	if !p.MerklePath.Verify(p.MerklePath.Root) {
		return StatusPathNotIncluded
	}
	if !p.MerklePath.Included() {
		return StatusPathNotIncluded
	}
	return StatusOK
}

// KnownHashAlgorithm reports whether every hash-bearing field on the proof
// uses an algorithm this engine understands. createTransaction must reject
// an inclusion proof carrying an unrecognized hash algorithm (§4.5, §8
// scenario 2) rather than silently accept it.
func (p *Proof) KnownHashAlgorithm() bool {
	if p.Authenticator != nil && !p.Authenticator.StateHash.KnownAlgorithm() {
		return false
	}
	if p.TransactionHash != nil && !p.TransactionHash.KnownAlgorithm() {
		return false
	}
	return true
}
