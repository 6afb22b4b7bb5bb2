// Copyright 2026 Unicity Network

// Package stateclient implements the state-transition client (§4.5): the
// operations that carry a token from mint through transfers and, via
// burn-for-split, into successor tokens.
package stateclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unicitynetwork/token-engine/pkg/address"
	"github.com/unicitynetwork/token-engine/pkg/aggregator"
	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/clientconfig"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/enginelog"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
	"github.com/unicitynetwork/token-engine/pkg/poll"
	"github.com/unicitynetwork/token-engine/pkg/predicate"
	"github.com/unicitynetwork/token-engine/pkg/randbytes"
	"github.com/unicitynetwork/token-engine/pkg/signing"
	"github.com/unicitynetwork/token-engine/pkg/token"
	"github.com/unicitynetwork/token-engine/pkg/tokenstate"
	"github.com/unicitynetwork/token-engine/pkg/transaction"
	"github.com/unicitynetwork/token-engine/pkg/txdata"
)

// Commitment is the pre-inclusion artifact submitted to the aggregator
// (glossary): requestId, the transaction data's hash, and the
// authenticator over it.
type Commitment[T transaction.Data] struct {
	RequestId       auth.RequestId
	Data            T
	Authenticator   auth.Authenticator
}

// Client wraps an Aggregator with the higher-level operations §4.5 names.
// Config governs polling pacing (see pkg/clientconfig); its Hash settings
// are not read by the client. Logger receives diagnostic records for each
// commitment submission (see pkg/enginelog). Both default to sensible
// values (built-in tunables, a discarding logger) so a bare New(agg) keeps
// working for callers that don't care.
type Client struct {
	Aggregator aggregator.Aggregator
	Config     *clientconfig.Config
	Logger     *slog.Logger
}

// New builds a Client around agg, using the engine's default tunables and a
// discarding logger.
func New(agg aggregator.Aggregator) *Client {
	return &Client{Aggregator: agg, Config: clientconfig.Default(), Logger: enginelog.Nop()}
}

// NewWithConfig builds a Client around agg with explicit tunables and a
// logger, for callers that loaded a clientconfig.Config from a YAML file
// (clientconfig.Load) and want its polling/logging knobs honored.
func NewWithConfig(agg aggregator.Aggregator, cfg *clientconfig.Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = clientconfig.Default()
	}
	if logger == nil {
		logger = enginelog.Nop()
	}
	return &Client{Aggregator: agg, Config: cfg, Logger: logger}
}

// SubmitMintTransaction derives the canonical minter key for tokenId,
// builds the mint source state, builds MintTransactionData, authenticates
// over (data.hash, sourceState.hash), and submits the commitment. It fails
// if the aggregator's status is not SUCCESS.
func (c *Client) SubmitMintTransaction(ctx context.Context, recipient string, tokenId ids.TokenId, tokenType ids.TokenType, tokenData []byte, coinData *coins.Data, salt []byte, dataHash codec.Imprint, reason txdata.MintReason) (*Commitment[*txdata.Mint], error) {
	minterKp, err := signing.DeriveMinterKeyPair(tokenId.Bytes())
	if err != nil {
		return nil, fmt.Errorf("stateclient: derive minter key: %w", err)
	}

	sourceStateHash := auth.MintPseudoStateHash(tokenId.Bytes())
	requestId := auth.NewRequestId(minterKp.PublicKey(), sourceStateHash)

	mintData, err := txdata.NewMint(requestId, tokenId, tokenType, tokenData, coinData, recipient, salt, dataHash, reason)
	if err != nil {
		return nil, fmt.Errorf("stateclient: build mint data: %w", err)
	}

	authenticator, err := auth.Sign(minterKp, sourceStateHash, mintData.Hash())
	if err != nil {
		return nil, fmt.Errorf("stateclient: sign mint authenticator: %w", err)
	}

	result, err := c.Aggregator.SubmitCommitment(ctx, requestId, mintData.Hash(), authenticator)
	if err != nil {
		return nil, fmt.Errorf("stateclient: submit mint commitment: %w", err)
	}
	enginelog.LogAggregatorSubmit(ctx, enginelog.WithRequestId(c.Logger, requestId.Imprint().Hex()), string(result.Status), requestId.Imprint().Hex())
	if result.Status != aggregator.StatusSuccess {
		return nil, fmt.Errorf("stateclient: mint commitment rejected: %s", result.Status)
	}

	return &Commitment[*txdata.Mint]{RequestId: requestId, Data: mintData, Authenticator: authenticator}, nil
}

// SubmitTransaction requires that signingKp's public key unlocks
// data.SourceState() and, if so, authenticates and submits the commitment.
func (c *Client) SubmitTransaction(ctx context.Context, data *txdata.Transaction, signingKp *signing.KeyPair) (*Commitment[*txdata.Transaction], error) {
	sourceState := data.SourceState()
	if !sourceState.Predicate().IsOwner(signingKp.PublicKey()) {
		return nil, fmt.Errorf("stateclient: failed to unlock token")
	}

	requestId := auth.NewRequestId(signingKp.PublicKey(), sourceState.Hash())
	authenticator, err := auth.Sign(signingKp, sourceState.Hash(), data.Hash())
	if err != nil {
		return nil, fmt.Errorf("stateclient: sign transfer authenticator: %w", err)
	}

	result, err := c.Aggregator.SubmitCommitment(ctx, requestId, data.Hash(), authenticator)
	if err != nil {
		return nil, fmt.Errorf("stateclient: submit transfer commitment: %w", err)
	}
	enginelog.LogAggregatorSubmit(ctx, enginelog.WithRequestId(c.Logger, requestId.Imprint().Hex()), string(result.Status), requestId.Imprint().Hex())
	if result.Status != aggregator.StatusSuccess {
		return nil, fmt.Errorf("stateclient: transfer commitment rejected: %s", result.Status)
	}

	return &Commitment[*txdata.Transaction]{RequestId: requestId, Data: data, Authenticator: authenticator}, nil
}

// CreateMintTransaction verifies proof against commitment.RequestId,
// rejects unknown hash algorithms, and rejects a transactionHash mismatch.
func CreateMintTransaction(commitment *Commitment[*txdata.Mint], proof *inclusion.Proof) (*token.MintTx, error) {
	if !proof.KnownHashAlgorithm() {
		return nil, fmt.Errorf("stateclient: invalid inclusion proof hash algorithm")
	}
	return transaction.New[*txdata.Mint](commitment.Data, proof, commitment.RequestId)
}

// CreateTransaction is CreateMintTransaction's transfer-side counterpart.
func CreateTransaction(commitment *Commitment[*txdata.Transaction], proof *inclusion.Proof) (*token.TransferTx, error) {
	if !proof.KnownHashAlgorithm() {
		return nil, fmt.Errorf("stateclient: invalid inclusion proof hash algorithm")
	}
	return transaction.New[*txdata.Transaction](commitment.Data, proof, commitment.RequestId)
}

// FinishTransaction appends transferTx to tok's history, installing
// newState as current. token.WithTransfer performs the §4.6 link checks
// (predicate verification, recipient match, containsData) against the
// token's current tail; ValidateCurrentState then checks that transferTx's
// recipient is newState's DirectAddress and that transferTx contains
// newState's data.
func FinishTransaction(tok *token.Token, newState *tokenstate.State, transferTx *token.TransferTx) (*token.Token, error) {
	next, err := tok.WithTransfer(newState, transferTx)
	if err != nil {
		return nil, err
	}
	if err := next.ValidateCurrentState(); err != nil {
		return nil, err
	}
	return next, nil
}

// PollForInclusion polls the aggregator for requestId's inclusion proof
// using c.Config's polling interval and deadline (§5), bounding ctx with
// context.WithTimeout when a deadline is configured.
func (c *Client) PollForInclusion(ctx context.Context, requestId auth.RequestId) (*inclusion.Proof, error) {
	if deadline := c.Config.Polling.Deadline.Duration(); deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}
	return poll.ForInclusion(ctx, c.Aggregator, requestId, c.Config.Polling.Interval.Duration())
}

// GetTokenStatus queries the aggregator for the request id derived from
// publicKey and tok's current state hash, returning the resulting
// verification status as-is. §9 notes a TODO to additionally check
// ownership; this engine reports the inclusion-proof status unmodified,
// per that same note.
func (c *Client) GetTokenStatus(ctx context.Context, tok *token.Token, publicKey []byte) (inclusion.Status, error) {
	requestId := auth.NewRequestId(publicKey, tok.State().Hash())
	proof, err := c.Aggregator.GetInclusionProof(ctx, requestId)
	if err != nil {
		return "", fmt.Errorf("stateclient: get inclusion proof: %w", err)
	}
	return proof.VerifyAgainst(requestId), nil
}

// SplitBurnResult is what SubmitBurnTransactionForSplit returns: the burn
// commitment, the Burn predicate it targets, and the successor token ids
// the caller passed in. It does not carry the split plan (outer tree and
// per-coin sum trees); later mints build their SplitProofs from the
// *split.Plan the caller already holds.
type SplitBurnResult struct {
	Commitment         *Commitment[*txdata.Transaction]
	RecipientPredicate *predicate.Burn
	NewTokenIds        []ids.TokenId
}

// SubmitBurnTransactionForSplit implements §4.8 steps 5-6: it allocates the
// burn nonce via pkg/randbytes (step 5 — the random byte string the burn
// predicate needs, never caller-supplied), builds a BurnPredicate from
// (tokenId, tokenType, nonce, reason), derives its DirectAddress as the
// recipient, and submits a standard transfer transaction targeting it.
// newTokenIds is the successor-id allocation pkg/split.AllocateAndBuildPlan
// already produced (step 1 — it has to happen before the plan's BurnReason
// can be computed, so it can't also happen here); this just carries those
// ids through to the result.
func (c *Client) SubmitBurnTransactionForSplit(ctx context.Context, tok *token.Token, signingKp *signing.KeyPair, reason predicate.BurnReason, previousNonce []byte, dataHash codec.Imprint, message []byte, newTokenIds []ids.TokenId) (*SplitBurnResult, error) {
	nonce := randbytes.Nonce()

	burnPred, err := predicate.NewBurn(tok.Id(), tok.Type(), nonce, reason)
	if err != nil {
		return nil, fmt.Errorf("stateclient: build burn predicate: %w", err)
	}

	recipientAddr, err := address.NewDirect(burnPred.Reference()).String()
	if err != nil {
		return nil, fmt.Errorf("stateclient: derive burn recipient address: %w", err)
	}

	data, err := txdata.NewTransaction(tok.State(), recipientAddr, previousNonce, dataHash, message, nil)
	if err != nil {
		return nil, fmt.Errorf("stateclient: build burn transfer data: %w", err)
	}

	commitment, err := c.SubmitTransaction(ctx, data, signingKp)
	if err != nil {
		return nil, err
	}

	return &SplitBurnResult{Commitment: commitment, RecipientPredicate: burnPred, NewTokenIds: newTokenIds}, nil
}
