// Copyright 2026 Unicity Network

package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/smt"
)

// WireState is a TokenState's wire form: the predicate's own tagged-union
// JSON (produced by pkg/predicate's Marshal/UnmarshalAny) plus optional
// hex state data.
type WireState struct {
	Predicate json.RawMessage `json:"predicate"`
	StateData *string         `json:"stateData"`
}

// WireAuthenticator mirrors auth.Authenticator field-for-field in hex form.
type WireAuthenticator struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	StateHash string `json:"stateHash"`
	Algorithm string `json:"algorithm"`
}

// ToDomain reconstructs an auth.Authenticator from its wire form.
func (w WireAuthenticator) ToDomain() (auth.Authenticator, error) {
	pub, err := hex.DecodeString(w.PublicKey)
	if err != nil {
		return auth.Authenticator{}, fmt.Errorf("ledger: authenticator public key: %w", err)
	}
	sig, err := hex.DecodeString(w.Signature)
	if err != nil {
		return auth.Authenticator{}, fmt.Errorf("ledger: authenticator signature: %w", err)
	}
	stateHashBytes, err := hex.DecodeString(w.StateHash)
	if err != nil {
		return auth.Authenticator{}, fmt.Errorf("ledger: authenticator state hash: %w", err)
	}
	return auth.NewAuthenticator(pub, sig, codec.Imprint(stateHashBytes), w.Algorithm), nil
}

// FromAuthenticator renders a as its wire form.
func FromAuthenticator(a auth.Authenticator) WireAuthenticator {
	return WireAuthenticator{
		PublicKey: hex.EncodeToString(a.PublicKey),
		Signature: hex.EncodeToString(a.Signature),
		StateHash: a.StateHash.Hex(),
		Algorithm: a.Algorithm,
	}
}

// WireSMTProof mirrors smt.Proof in hex form.
type WireSMTProof struct {
	Key       string   `json:"key"`
	LeafValue *string  `json:"leafValue"`
	Siblings  []string `json:"siblings"`
	Root      string   `json:"root"`
}

// ToDomain reconstructs an smt.Proof from its wire form.
func (w WireSMTProof) ToDomain() (*smt.Proof, error) {
	keyBytes, err := hex.DecodeString(w.Key)
	if err != nil {
		return nil, fmt.Errorf("ledger: merkle path key: %w", err)
	}
	rootBytes, err := hex.DecodeString(w.Root)
	if err != nil {
		return nil, fmt.Errorf("ledger: merkle path root: %w", err)
	}
	siblings := make([][]byte, len(w.Siblings))
	for i, s := range w.Siblings {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("ledger: merkle path sibling %d: %w", i, err)
		}
		siblings[i] = b
	}
	var leaf []byte
	if w.LeafValue != nil {
		leaf, err = hex.DecodeString(*w.LeafValue)
		if err != nil {
			return nil, fmt.Errorf("ledger: merkle path leaf: %w", err)
		}
	}
	return &smt.Proof{Key: smt.KeyFromBytes(keyBytes), LeafValue: leaf, Siblings: siblings, Root: rootBytes}, nil
}

// FromSMTProof renders p as its wire form.
func FromSMTProof(p *smt.Proof) WireSMTProof {
	var leaf *string
	if p.LeafValue != nil {
		s := hex.EncodeToString(p.LeafValue)
		leaf = &s
	}
	sibs := make([]string, len(p.Siblings))
	for i, s := range p.Siblings {
		sibs[i] = hex.EncodeToString(s)
	}
	return WireSMTProof{Key: hex.EncodeToString(p.Key[:]), LeafValue: leaf, Siblings: sibs, Root: hex.EncodeToString(p.Root)}
}

// WireInclusionProof mirrors inclusion.Proof.
type WireInclusionProof struct {
	MerklePath      WireSMTProof       `json:"merklePath"`
	Authenticator   *WireAuthenticator `json:"authenticator"`
	TransactionHash *string            `json:"transactionHash"`
}

// WireTransaction is one history entry — either the mint (kind == "MINT")
// or a transfer (kind == "TRANSFER"). Exactly one of Mint/Transfer is
// populated, matching kind.
type WireTransaction struct {
	Kind     string             `json:"kind"`
	Mint     *WireMintData      `json:"mint,omitempty"`
	Transfer *WireTransferData  `json:"transfer,omitempty"`
}

// WireMintData is MintTransactionData's wire form.
type WireMintData struct {
	SourceState     string             `json:"sourceState"` // mint pseudo-state request id, hex
	Recipient       string             `json:"recipient"`
	Salt            string             `json:"salt"`
	DataHash        *string            `json:"dataHash"`
	Reason          json.RawMessage    `json:"reason,omitempty"`
	InclusionProof  WireInclusionProof `json:"inclusionProof"`
}

// WireTransferData is TransactionData's wire form.
type WireTransferData struct {
	SourceState    WireState          `json:"sourceState"`
	Recipient      string             `json:"recipient"`
	Salt           string             `json:"salt"`
	DataHash       *string            `json:"dataHash"`
	Message        *string            `json:"message"`
	NameTags       []string           `json:"nameTags"`
	InclusionProof WireInclusionProof `json:"inclusionProof"`
}
