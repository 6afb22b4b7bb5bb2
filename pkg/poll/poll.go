// Copyright 2026 Unicity Network

// Package poll implements the inclusion-proof polling utility (§5): calling
// getInclusionProof repeatedly on a caller-supplied interval until it
// reports inclusion, the context is cancelled, or the deadline passes.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unicitynetwork/token-engine/pkg/aggregator"
	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
)

// ErrCancelled wraps the caller's context error when polling is aborted
// before an inclusion proof is observed.
var ErrCancelled = errors.New("poll: cancelled before inclusion")

// ForInclusion repeatedly calls agg.GetInclusionProof for requestId every
// interval until the proof's status is OK, ctx is done, or any call
// returns an error other than "not yet" (a nil proof is never treated as
// an error; absence of a committed leaf — an unincluded path — is the
// "not yet" case itself, surfaced as StatusPathNotIncluded, and triggers
// another wait rather than aborting).
func ForInclusion(ctx context.Context, agg aggregator.Aggregator, requestId auth.RequestId, interval time.Duration) (*inclusion.Proof, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		proof, err := agg.GetInclusionProof(ctx, requestId)
		if err != nil {
			return nil, fmt.Errorf("poll: get inclusion proof: %w", err)
		}
		if proof.VerifyAgainst(requestId) == inclusion.StatusOK {
			return proof, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-ticker.C:
		}
	}
}
