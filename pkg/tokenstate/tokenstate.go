// Copyright 2026 Unicity Network

// Package tokenstate implements TokenState (§3): the pairing of an unlock
// predicate with optional application state data, installed at every
// transition a token undergoes.
package tokenstate

import (
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/predicate"
)

// State is a token's unlock predicate plus optional opaque state data.
// hash = H(predicate.hash, optional(stateData)) (§3) — a nil stateData
// hashes as an explicit CBOR null, never as an omitted field, so presence
// and absence are always distinguishable on the wire.
type State struct {
	predicate predicate.Predicate
	stateData []byte // nil means "absent", not "empty"
	hash      codec.Imprint
}

// New builds a State, computing and memoizing its hash.
func New(pred predicate.Predicate, stateData []byte) (*State, error) {
	if pred == nil {
		return nil, fmt.Errorf("tokenstate: predicate must not be nil")
	}
	var dataField interface{}
	if stateData != nil {
		dataField = codec.Clone(stateData)
	}
	hash, err := codec.HashFields([]byte(pred.Hash()), dataField)
	if err != nil {
		return nil, fmt.Errorf("tokenstate: hash: %w", err)
	}
	var cp []byte
	if stateData != nil {
		cp = codec.Clone(stateData)
	}
	return &State{predicate: pred, stateData: cp, hash: hash}, nil
}

// Predicate returns the unlock predicate governing this state.
func (s *State) Predicate() predicate.Predicate { return s.predicate }

// Data returns a defensive copy of the state data, or nil if absent.
func (s *State) Data() []byte { return codec.Clone(s.stateData) }

// HasData reports whether stateData is present.
func (s *State) HasData() bool { return s.stateData != nil }

// Hash returns the memoized state hash.
func (s *State) Hash() codec.Imprint { return s.hash.Clone() }

// ContainsData implements the §4.6 containsData predicate from the
// transaction side: it holds iff the transaction carried no dataHash and
// stateBytes is absent, or the transaction's dataHash matches
// H_algo(stateBytes) for the declared algorithm. TokenState itself only
// exposes its data; Transaction.ContainsData (pkg/txdata) is what callers
// actually invoke per §4.6 — this helper lives here because both sides need
// the same "is my data hash-confirmed" check and tokenstate has no
// dependency on txdata to reuse from.
func ContainsData(stateBytes []byte, dataHash codec.Imprint) bool {
	if dataHash == nil {
		return stateBytes == nil
	}
	if stateBytes == nil {
		return false
	}
	if !dataHash.KnownAlgorithm() {
		return false
	}
	computed := codec.Sum256(stateBytes)
	return computed.Equal(dataHash)
}
