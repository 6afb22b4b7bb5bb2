// Copyright 2026 Unicity Network

package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/ids"
)

// Envelope is the top-level `.txf` JSON structure (§6):
// `{version, id, type, data, coins, state, transactions[], nametagTokens[]}`.
// State, transactions and nametagTokens are left as raw JSON — decoding
// them requires the predicate/inclusion-proof reconstruction logic
// pkg/factory owns, since a ledger envelope on its own can't verify
// anything.
type Envelope struct {
	Version       string          `json:"version"`
	Id            string          `json:"id"`
	Type          string          `json:"type"`
	Data          string          `json:"data"`
	Coins         json.RawMessage `json:"coins"`
	State         json.RawMessage `json:"state"`
	Transactions  json.RawMessage `json:"transactions"`
	NameTagTokens json.RawMessage `json:"nametagTokens,omitempty"`
}

// Parse decodes raw bytes into an Envelope and checks the version field.
// It does not validate anything beyond structural shape and version — that
// is pkg/factory's job.
func Parse(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Version != constants.TokenVersion {
		return nil, fmt.Errorf("%w: file has %q, engine expects %q", ErrVersionMismatch, env.Version, constants.TokenVersion)
	}
	if env.Id == "" || env.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformed)
	}
	return &env, nil
}

// TokenId decodes the envelope's id field.
func (e *Envelope) TokenId() (ids.TokenId, error) { return ids.TokenIdFromHex(e.Id) }

// TokenType decodes the envelope's type field.
func (e *Envelope) TokenType() (ids.TokenType, error) { return ids.TokenTypeFromHex(e.Type) }

// Payload decodes the envelope's opaque data field.
func (e *Envelope) Payload() ([]byte, error) {
	if e.Data == "" {
		return nil, nil
	}
	return hexDecode(e.Data)
}

// CoinData decodes the envelope's coins array.
func (e *Envelope) CoinData() (*coins.Data, error) {
	var d coins.Data
	if err := d.UnmarshalJSON(e.Coins); err != nil {
		return nil, fmt.Errorf("ledger: coins: %w", err)
	}
	return &d, nil
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
