// Copyright 2026 Unicity Network

// Package aggregator defines the Aggregator contract (§6) the state
// transition client submits commitments to and polls for inclusion proofs,
// plus an in-memory test double the engine's own tests exercise it against.
// A real aggregator is an external, trusted service — out of scope for this
// engine (§1 Non-goals) — so only the interface and the double live here.
package aggregator

import (
	"context"
	"fmt"
	"sync"

	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
	"github.com/unicitynetwork/token-engine/pkg/smt"
)

// Status is the result of submit_commitment (§6).
type Status string

const (
	StatusSuccess                     Status = "SUCCESS"
	StatusAuthenticatorVerifyFailed   Status = "AUTHENTICATOR_VERIFICATION_FAILED"
	StatusRequestIdMismatch           Status = "REQUEST_ID_MISMATCH"
	StatusRequestIdExists             Status = "REQUEST_ID_EXISTS"
)

// SubmitResult is the outcome of a submit_commitment call.
type SubmitResult struct {
	Status Status
}

// Aggregator is the external collaborator the state-transition client talks
// to. Implementations need not be goroutine-safe beyond what the underlying
// transport already guarantees; this engine imposes no additional
// concurrency contract on it (§5).
type Aggregator interface {
	SubmitCommitment(ctx context.Context, requestId auth.RequestId, transactionHash codec.Imprint, authenticator auth.Authenticator) (SubmitResult, error)
	GetInclusionProof(ctx context.Context, requestId auth.RequestId) (*inclusion.Proof, error)
	GetNoDeletionProof(ctx context.Context, requestId auth.RequestId) ([]byte, error)
}

type entry struct {
	transactionHash codec.Imprint
	authenticator   auth.Authenticator
}

// InMemory is a single-process Aggregator double: it maintains its own SMT
// over submitted request ids and serves inclusion proofs straight out of
// it. It never contacts any network. Safe for concurrent use.
type InMemory struct {
	mu      sync.Mutex
	entries map[smt.Key]entry
}

// NewInMemory builds an empty in-memory aggregator double.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[smt.Key]entry)}
}

// SubmitCommitment records (requestId, transactionHash, authenticator),
// rejecting a resubmission at an existing request id with a mismatched
// transaction hash and otherwise tolerating idempotent resubmission.
func (a *InMemory) SubmitCommitment(_ context.Context, requestId auth.RequestId, transactionHash codec.Imprint, authenticator auth.Authenticator) (SubmitResult, error) {
	if !authenticator.Verify(transactionHash) {
		return SubmitResult{Status: StatusAuthenticatorVerifyFailed}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := requestId.Key()
	if existing, ok := a.entries[key]; ok {
		if !existing.transactionHash.Equal(transactionHash) {
			return SubmitResult{Status: StatusRequestIdExists}, nil
		}
		return SubmitResult{Status: StatusSuccess}, nil
	}
	a.entries[key] = entry{transactionHash: transactionHash, authenticator: authenticator}
	return SubmitResult{Status: StatusSuccess}, nil
}

// GetInclusionProof builds the current SMT path for requestId, attaching
// the stored authenticator and transaction hash if one has been submitted.
func (a *InMemory) GetInclusionProof(_ context.Context, requestId auth.RequestId) (*inclusion.Proof, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	leaves := make(map[smt.Key][]byte, len(a.entries))
	for k, e := range a.entries {
		leaves[k] = []byte(e.transactionHash)
	}
	tree := smt.New(leaves)
	path := tree.GetProof(requestId.Key())

	proof := &inclusion.Proof{MerklePath: path}
	if e, ok := a.entries[requestId.Key()]; ok {
		authCopy := e.authenticator
		proof.Authenticator = &authCopy
		proof.TransactionHash = e.transactionHash.Clone()
	}
	return proof, nil
}

// GetNoDeletionProof is a pass-through stub (§6): the in-memory double has
// no deletion mechanism, so there is nothing to prove absence of deletion
// against. It returns an empty opaque payload for a request id that has
// been submitted, and an error for one that has not.
func (a *InMemory) GetNoDeletionProof(_ context.Context, requestId auth.RequestId) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[requestId.Key()]; !ok {
		return nil, fmt.Errorf("aggregator: no entry for request id %s", requestId.Key())
	}
	return []byte{}, nil
}
