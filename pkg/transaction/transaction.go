// Copyright 2026 Unicity Network

// Package transaction implements Transaction[T] (§3): the immutable pairing
// of transaction data with the inclusion proof that anchors it, generic
// over the two data shapes (mint vs. transfer) the engine carries.
package transaction

import (
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
)

// Data is the minimal contract a transaction's payload must satisfy: a
// memoized hash to check the inclusion proof against.
type Data interface {
	Hash() codec.Imprint
}

// Transaction pairs data with the inclusion proof that anchors it.
// Construction enforces the two invariants §3/§4.5 require of every
// transaction: the proof's transactionHash equals data.hash, and the proof
// itself verifies against the given request id.
type Transaction[T Data] struct {
	data           T
	inclusionProof *inclusion.Proof
}

// New builds a Transaction, validating it against requestId. This is the
// same check createTransaction (§4.5) performs — the state-transition
// client's createTransaction is a thin wrapper over this constructor that
// additionally rejects unknown hash algorithms before calling it.
func New[T Data](data T, proof *inclusion.Proof, requestId auth.RequestId) (*Transaction[T], error) {
	if proof == nil {
		return nil, fmt.Errorf("transaction: inclusion proof must not be nil")
	}
	if proof.TransactionHash == nil || !proof.TransactionHash.Equal(data.Hash()) {
		return nil, fmt.Errorf("transaction: payload hash mismatch")
	}
	if proof.VerifyAgainst(requestId) != inclusion.StatusOK {
		return nil, fmt.Errorf("transaction: inclusion proof does not verify against request id")
	}
	return &Transaction[T]{data: data, inclusionProof: proof}, nil
}

// Data returns the transaction's payload.
func (t *Transaction[T]) Data() T { return t.data }

// InclusionProof returns the transaction's anchoring inclusion proof.
func (t *Transaction[T]) InclusionProof() *inclusion.Proof { return t.inclusionProof }
