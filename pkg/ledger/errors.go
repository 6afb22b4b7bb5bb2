// Copyright 2026 Unicity Network

// Package ledger implements the `.txf` token ledger file envelope (§6): the
// portable, verifiable JSON representation of a token's full history.
// Adapted from the teacher's own ledger package — which wrapped a KV store
// with high-level accessors for chain-state ledgers — into a file-format
// envelope with the equivalent shape: a thin, explicit-error layer over
// structural (de)serialization, leaving semantic replay validation to
// pkg/factory.
package ledger

import "errors"

// Sentinel errors for envelope-level ledger operations.
var (
	// ErrVersionMismatch is returned when a ledger file's version field
	// does not match this engine's TOKEN_VERSION.
	ErrVersionMismatch = errors.New("ledger: version mismatch")

	// ErrMalformed is returned when the top-level JSON envelope is missing
	// required fields or has the wrong shape.
	ErrMalformed = errors.New("ledger: malformed token ledger file")
)
