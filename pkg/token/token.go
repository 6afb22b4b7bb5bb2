// Copyright 2026 Unicity Network

// Package token implements Token (§3, §4.6): the entity aggregating a
// token's identity, coin balances, current state and ordered transaction
// history, and the chain invariants every history must satisfy.
package token

import (
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/address"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/tokenstate"
	"github.com/unicitynetwork/token-engine/pkg/transaction"
	"github.com/unicitynetwork/token-engine/pkg/txdata"
)

// MintTx and TransferTx name the two Transaction instantiations a Token's
// history is built from.
type MintTx = transaction.Transaction[*txdata.Mint]
type TransferTx = transaction.Transaction[*txdata.Transaction]

// Token aggregates a token's identity, payload, coin balances, current
// state, and its full ordered transaction history (mint at position 0,
// transfers thereafter).
type Token struct {
	id            ids.TokenId
	tokenType     ids.TokenType
	data          []byte
	coinData      *coins.Data
	state         *tokenstate.State
	mint          *MintTx
	transfers     []*TransferTx
	nameTagTokens []*Token
	version       string
}

// New assembles a freshly minted Token: version, id, type, payload, coin
// data, the mint transaction, and the state the mint installed. No
// transfers exist yet, so chain-invariant checking is vacuous.
func New(tokenId ids.TokenId, tokenType ids.TokenType, data []byte, coinData *coins.Data, mint *MintTx, initialState *tokenstate.State) (*Token, error) {
	if mint == nil {
		return nil, fmt.Errorf("token: mint transaction must not be nil")
	}
	if initialState == nil {
		return nil, fmt.Errorf("token: initial state must not be nil")
	}
	return &Token{
		id:        tokenId,
		tokenType: tokenType,
		data:      append([]byte(nil), data...),
		coinData:  coinData,
		state:     initialState,
		mint:      mint,
		version:   constants.TokenVersion,
	}, nil
}

func (t *Token) Id() ids.TokenId                 { return t.id }
func (t *Token) Type() ids.TokenType             { return t.tokenType }
func (t *Token) Data() []byte                    { return append([]byte(nil), t.data...) }
func (t *Token) CoinData() *coins.Data           { return t.coinData }
func (t *Token) State() *tokenstate.State        { return t.state }
func (t *Token) Mint() *MintTx                   { return t.mint }
func (t *Token) Version() string                 { return t.version }
func (t *Token) NameTagTokens() []*Token         { return append([]*Token(nil), t.nameTagTokens...) }

// Transfers returns a defensive copy of the transfer transaction slice, in
// chain order (oldest first).
func (t *Token) Transfers() []*TransferTx {
	return append([]*TransferTx(nil), t.transfers...)
}

// WithTransfer returns a new Token with transferTx appended and newState
// installed as current, after checking the §4.6 chain invariants the new
// link must satisfy against the token's current tail. It never mutates t.
func (t *Token) WithTransfer(newState *tokenstate.State, transferTx *TransferTx) (*Token, error) {
	if err := t.checkLink(transferTx); err != nil {
		return nil, err
	}

	next := &Token{
		id:            t.id,
		tokenType:     t.tokenType,
		data:          append([]byte(nil), t.data...),
		coinData:      t.coinData,
		state:         newState,
		mint:          t.mint,
		transfers:     append(append([]*TransferTx(nil), t.transfers...), transferTx),
		nameTagTokens: append([]*Token(nil), t.nameTagTokens...),
		version:       t.version,
	}
	return next, nil
}

// WithNameTagTokens returns a new Token carrying the given name-tag tokens.
// The slice is copied at the boundary; the name-tag *Token values themselves
// are shared, not deep-copied (a Token is never mutated in place).
func (t *Token) WithNameTagTokens(nameTagTokens []*Token) *Token {
	next := *t
	next.nameTagTokens = append([]*Token(nil), nameTagTokens...)
	return &next
}

// checkLink validates that appending transferTx after the token's current
// tail satisfies the three §4.6 conditions:
//  1. the recipient of the prior step's data equals the DirectAddress of
//     the new transfer's source-state predicate reference;
//  2. the prior step's data contains the new transfer's source-state data;
//  3. the new transfer's source-state predicate verifies the transfer.
func (t *Token) checkLink(transferTx *TransferTx) error {
	if transferTx == nil {
		return fmt.Errorf("token: transfer transaction must not be nil")
	}
	data := transferTx.Data()
	sourceState := data.SourceState()

	prevRecipient, prevContainsData := t.tailLink()

	addr := address.NewDirect(sourceState.Predicate().Reference())
	addrStr, err := addr.String()
	if err != nil {
		return fmt.Errorf("token: derive address: %w", err)
	}
	if addrStr != prevRecipient {
		return fmt.Errorf("token: recipient mismatch: prior step recipient %q, new source address %q", prevRecipient, addrStr)
	}
	if !prevContainsData(sourceState.Data()) {
		return fmt.Errorf("token: prior step does not contain the new source state's data")
	}
	if !sourceState.Predicate().Verify(data.Hash(), sourceState.Hash(), transferTx.InclusionProof()) {
		return fmt.Errorf("token: source-state predicate failed to verify the transfer")
	}
	return nil
}

// tailLink returns the recipient and containsData check of the token's
// current tail transaction (the last transfer, or the mint if there are
// none yet).
func (t *Token) tailLink() (recipient string, containsData func([]byte) bool) {
	if len(t.transfers) == 0 {
		m := t.mint.Data()
		return m.Recipient(), m.ContainsData
	}
	last := t.transfers[len(t.transfers)-1].Data()
	return last.Recipient(), last.ContainsData
}

// ValidateCurrentState checks §4.6's (1)+(2) conditions between the
// token's tail transaction and its installed current state — the
// additional condition the spec requires beyond pairwise transaction links.
func (t *Token) ValidateCurrentState() error {
	prevRecipient, prevContainsData := t.tailLink()

	addr := address.NewDirect(t.state.Predicate().Reference())
	addrStr, err := addr.String()
	if err != nil {
		return fmt.Errorf("token: derive address: %w", err)
	}
	if addrStr != prevRecipient {
		return fmt.Errorf("token: current state recipient mismatch: tail recipient %q, state address %q", prevRecipient, addrStr)
	}
	if !prevContainsData(t.state.Data()) {
		return fmt.Errorf("token: tail transaction does not contain the current state's data")
	}
	return nil
}

// ValidateChain re-checks every pairwise link in the token's full history
// plus the current-state condition — the complete §4.6 invariant set in one
// call. TokenFactory does not call it: it applies the same checks step by
// step through WithTransfer and then ValidateCurrentState.
func (t *Token) ValidateChain() error {
	running := &Token{id: t.id, tokenType: t.tokenType, mint: t.mint}
	for i, tx := range t.transfers {
		if err := running.checkLink(tx); err != nil {
			return fmt.Errorf("token: chain invariant failed at transfer %d: %w", i, err)
		}
		running.transfers = append(running.transfers, tx)
	}
	running.state = t.state
	if err := running.ValidateCurrentState(); err != nil {
		return err
	}
	return nil
}
