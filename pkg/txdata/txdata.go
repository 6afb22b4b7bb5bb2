// Copyright 2026 Unicity Network

// Package txdata implements MintTransactionData and TransactionData (§3):
// the payloads a Transaction carries, one per non-mint step and one for the
// single mint step every token's history begins with.
package txdata

import (
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/tokenstate"
)

// MintReason is the optional tagged-union payload a mint can carry — in
// practice either absent or a SplitProof (pkg/split). Defined here, rather
// than imported from pkg/split, so neither txdata nor pkg/split imports the
// other; split.Proof satisfies it structurally.
type MintReason interface {
	ReasonKind() string
	MarshalCBOR() ([]byte, error)
	MarshalJSON() ([]byte, error)
}

// Mint is a token's first transaction data (position 0, §3). Its hash
// covers (tokenId, tokenType, H(tokenData), optional dataHash, coinData,
// recipient, salt, reason).
type Mint struct {
	sourceState auth.RequestId
	tokenId     ids.TokenId
	tokenType   ids.TokenType
	tokenData   []byte
	coinData    *coins.Data
	recipient   string
	salt        []byte
	dataHash    codec.Imprint // nil iff absent
	reason      MintReason    // nil iff absent
	hash        codec.Imprint
}

// NewMint builds Mint data, computing and memoizing its hash.
func NewMint(sourceState auth.RequestId, tokenId ids.TokenId, tokenType ids.TokenType, tokenData []byte, coinData *coins.Data, recipient string, salt []byte, dataHash codec.Imprint, reason MintReason) (*Mint, error) {
	tokenDataHash := codec.Sum256(tokenData)

	var dataHashField, reasonField interface{}
	if dataHash != nil {
		dataHashField = []byte(dataHash)
	}
	if reason != nil {
		reasonField = reason
	}

	hash, err := codec.HashFields(
		tokenId.Bytes(), tokenType.Bytes(), []byte(tokenDataHash),
		dataHashField, coinData, recipient, salt, reasonField,
	)
	if err != nil {
		return nil, fmt.Errorf("txdata: mint hash: %w", err)
	}

	return &Mint{
		sourceState: sourceState,
		tokenId:     tokenId,
		tokenType:   tokenType,
		tokenData:   codec.Clone(tokenData),
		coinData:    coinData,
		recipient:   recipient,
		salt:        codec.Clone(salt),
		dataHash:    dataHash.Clone(),
		reason:      reason,
		hash:        hash,
	}, nil
}

func (m *Mint) SourceState() auth.RequestId { return m.sourceState }
func (m *Mint) TokenId() ids.TokenId        { return m.tokenId }
func (m *Mint) TokenType() ids.TokenType    { return m.tokenType }
func (m *Mint) TokenData() []byte           { return codec.Clone(m.tokenData) }
func (m *Mint) CoinData() *coins.Data       { return m.coinData }
func (m *Mint) Recipient() string           { return m.recipient }
func (m *Mint) Salt() []byte                { return codec.Clone(m.salt) }
func (m *Mint) DataHash() codec.Imprint     { return m.dataHash.Clone() }
func (m *Mint) Reason() MintReason          { return m.reason }
func (m *Mint) Hash() codec.Imprint         { return m.hash.Clone() }

// ContainsData implements §4.6's containsData check against this mint's
// declared dataHash.
func (m *Mint) ContainsData(stateBytes []byte) bool {
	return tokenstate.ContainsData(stateBytes, m.dataHash)
}

// Transaction is a non-mint transaction's data (§3). Its hash covers
// (sourceState.hash, optional dataHash, recipient, salt, optional message).
type Transaction struct {
	sourceState *tokenstate.State
	recipient   string
	salt        []byte
	dataHash    codec.Imprint
	message     []byte
	nameTags    []string
	hash        codec.Imprint
}

// NewTransaction builds TransactionData, computing and memoizing its hash.
func NewTransaction(sourceState *tokenstate.State, recipient string, salt []byte, dataHash codec.Imprint, message []byte, nameTags []string) (*Transaction, error) {
	if sourceState == nil {
		return nil, fmt.Errorf("txdata: sourceState must not be nil")
	}

	var dataHashField, messageField interface{}
	if dataHash != nil {
		dataHashField = []byte(dataHash)
	}
	if message != nil {
		messageField = codec.Clone(message)
	}

	hash, err := codec.HashFields([]byte(sourceState.Hash()), dataHashField, recipient, salt, messageField)
	if err != nil {
		return nil, fmt.Errorf("txdata: transaction hash: %w", err)
	}

	tags := make([]string, len(nameTags))
	copy(tags, nameTags)

	return &Transaction{
		sourceState: sourceState,
		recipient:   recipient,
		salt:        codec.Clone(salt),
		dataHash:    dataHash.Clone(),
		message:     codec.Clone(message),
		nameTags:    tags,
		hash:        hash,
	}, nil
}

func (t *Transaction) SourceState() *tokenstate.State { return t.sourceState }
func (t *Transaction) Recipient() string              { return t.recipient }
func (t *Transaction) Salt() []byte                   { return codec.Clone(t.salt) }
func (t *Transaction) DataHash() codec.Imprint         { return t.dataHash.Clone() }
func (t *Transaction) Message() []byte                { return codec.Clone(t.message) }
func (t *Transaction) NameTags() []string {
	out := make([]string, len(t.nameTags))
	copy(out, t.nameTags)
	return out
}
func (t *Transaction) Hash() codec.Imprint { return t.hash.Clone() }

// ContainsData implements §4.6's containsData check against this
// transaction's declared dataHash.
func (t *Transaction) ContainsData(stateBytes []byte) bool {
	return tokenstate.ContainsData(stateBytes, t.dataHash)
}
