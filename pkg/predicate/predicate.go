// Copyright 2026 Unicity Network

// Package predicate implements the three predicate variants — Masked,
// Unmasked and Burn — that govern token ownership, address derivation and
// transaction verification (§4.3). Dispatch across the variants is by the
// textual "type" tag of their JSON form (§9); predicates have no CBOR form
// of their own. This follows the
// tagged-union style the teacher uses for its own proof-bundle variants
// (pkg/proof/bundle_format.go's ProofType discriminator).
package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/unicitynetwork/token-engine/pkg/auth"
	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
	"github.com/unicitynetwork/token-engine/pkg/signing"
)

// Predicate is the common interface every variant satisfies. Verify and
// IsOwner never panic and never return an error — a false return is their
// documented failure channel (§4.9); malformed or adversarial input must
// fail closed, never throw.
type Predicate interface {
	Kind() string
	Reference() codec.Imprint
	Hash() codec.Imprint
	Nonce() []byte
	IsOwner(publicKey []byte) bool
	Verify(dataHash, sourceStateHash codec.Imprint, proof *inclusion.Proof) bool

	MarshalJSON() ([]byte, error)
}

// ---------------------------------------------------------------------
// Masked
// ---------------------------------------------------------------------

// Masked hides the owning public key behind a nonce: its reference does
// not depend on tokenId, so the same address serves every token of a
// given type/owner/nonce triple; its hash binds to tokenId.
type Masked struct {
	publicKey []byte
	sigAlgo   string
	hashAlgo  string
	nonce     []byte
	reference codec.Imprint
	hash      codec.Imprint
}

// NewMasked builds a Masked predicate bound to tokenId.
// reference = H("MASKED", sigAlgo, hashAlgo, publicKey, nonce); hash = H(reference, tokenId).
func NewMasked(tokenId ids.TokenId, publicKey []byte, sigAlgo, hashAlgo string, nonce []byte) (*Masked, error) {
	reference, err := codec.HashFields(constants.PredicateMasked, sigAlgo, hashAlgo, publicKey, nonce)
	if err != nil {
		return nil, fmt.Errorf("predicate: masked reference: %w", err)
	}
	hash, err := codec.HashFields([]byte(reference), tokenId.Bytes())
	if err != nil {
		return nil, fmt.Errorf("predicate: masked hash: %w", err)
	}
	return &Masked{
		publicKey: codec.Clone(publicKey),
		sigAlgo:   sigAlgo,
		hashAlgo:  hashAlgo,
		nonce:     codec.Clone(nonce),
		reference: reference,
		hash:      hash,
	}, nil
}

func (m *Masked) Kind() string             { return constants.PredicateMasked }
func (m *Masked) Reference() codec.Imprint { return m.reference.Clone() }
func (m *Masked) Hash() codec.Imprint      { return m.hash.Clone() }
func (m *Masked) Nonce() []byte            { return codec.Clone(m.nonce) }

func (m *Masked) IsOwner(publicKey []byte) bool {
	return bytes.Equal(m.publicKey, publicKey)
}

func (m *Masked) Verify(dataHash, sourceStateHash codec.Imprint, proof *inclusion.Proof) bool {
	return verifyOwned(m.publicKey, m.sigAlgo, dataHash, sourceStateHash, proof)
}

// ---------------------------------------------------------------------
// Unmasked
// ---------------------------------------------------------------------

// Unmasked exposes the owning public key directly; its nonce is the
// signature over H(salt), reproducible only by the key holder, and its
// reference additionally binds to tokenType so it cannot be reused across
// token classes.
type Unmasked struct {
	publicKey []byte
	sigAlgo   string
	hashAlgo  string
	nonce     []byte // signature over H(salt)
	reference codec.Imprint
	hash      codec.Imprint
}

// NewUnmasked builds an Unmasked predicate. kp signs H(salt) to produce the
// nonce. reference = H("UNMASKED", tokenType, sigAlgo, hashAlgo, publicKey)
// — the CBOR-array form [TYPE, tokenType, sigAlgo, hashAlgo, publicKey]
// spec.md §9 names as canonical (the alternative two-bit-masked-byte
// hashAlgo encoding some ledgers carry is treated as a distinct, unsupported
// compatibility mode, per the same Open Question). hash = H(reference, tokenId, nonce).
func NewUnmasked(kp *signing.KeyPair, tokenId ids.TokenId, tokenType ids.TokenType, hashAlgo string, salt []byte) (*Unmasked, error) {
	saltHash := codec.Sum256(salt)
	var h [32]byte
	copy(h[:], saltHash.Digest())
	nonce, err := kp.Sign(h)
	if err != nil {
		return nil, fmt.Errorf("predicate: unmasked nonce: %w", err)
	}

	reference, err := codec.HashFields(constants.PredicateUnmasked, tokenType.Bytes(), constants.SigAlgoSecp256k1, hashAlgo, kp.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("predicate: unmasked reference: %w", err)
	}
	hash, err := codec.HashFields([]byte(reference), tokenId.Bytes(), nonce)
	if err != nil {
		return nil, fmt.Errorf("predicate: unmasked hash: %w", err)
	}

	return &Unmasked{
		publicKey: kp.PublicKey(),
		sigAlgo:   constants.SigAlgoSecp256k1,
		hashAlgo:  hashAlgo,
		nonce:     codec.Clone(nonce),
		reference: reference,
		hash:      hash,
	}, nil
}

// ReconstructUnmasked rebuilds an Unmasked predicate from its already-signed
// wire fields — no private key is needed, since the nonce (the signature
// over H(salt)) was computed once at mint/transfer time and is carried on
// the wire from then on. This is the "caller-supplied predicate factory"
// path §4.7 step 4 names for replaying a ledger file: reference and hash
// are recomputed from the stored fields exactly as NewUnmasked computes
// them, so a tampered nonce or public key fails to reproduce the token's
// recorded hash chain.
func ReconstructUnmasked(tokenId ids.TokenId, tokenType ids.TokenType, publicKey []byte, sigAlgo, hashAlgo string, nonce []byte) (*Unmasked, error) {
	reference, err := codec.HashFields(constants.PredicateUnmasked, tokenType.Bytes(), sigAlgo, hashAlgo, publicKey)
	if err != nil {
		return nil, fmt.Errorf("predicate: reconstruct unmasked reference: %w", err)
	}
	hash, err := codec.HashFields([]byte(reference), tokenId.Bytes(), nonce)
	if err != nil {
		return nil, fmt.Errorf("predicate: reconstruct unmasked hash: %w", err)
	}
	return &Unmasked{
		publicKey: codec.Clone(publicKey),
		sigAlgo:   sigAlgo,
		hashAlgo:  hashAlgo,
		nonce:     codec.Clone(nonce),
		reference: reference,
		hash:      hash,
	}, nil
}

func (u *Unmasked) Kind() string             { return constants.PredicateUnmasked }
func (u *Unmasked) Reference() codec.Imprint { return u.reference.Clone() }
func (u *Unmasked) Hash() codec.Imprint      { return u.hash.Clone() }
func (u *Unmasked) Nonce() []byte            { return codec.Clone(u.nonce) }

func (u *Unmasked) IsOwner(publicKey []byte) bool {
	return bytes.Equal(u.publicKey, publicKey)
}

func (u *Unmasked) Verify(dataHash, sourceStateHash codec.Imprint, proof *inclusion.Proof) bool {
	return verifyOwned(u.publicKey, u.sigAlgo, dataHash, sourceStateHash, proof)
}

// verifyOwned implements the five-step check §4.3 specifies for Masked and
// Unmasked predicates alike.
func verifyOwned(publicKey []byte, sigAlgo string, dataHash, sourceStateHash codec.Imprint, proof *inclusion.Proof) bool {
	if sigAlgo != constants.SigAlgoSecp256k1 {
		return false
	}
	if proof == nil || !proof.HasAuthenticator() {
		return false
	}
	authn := proof.Authenticator
	if !bytes.Equal(authn.PublicKey, publicKey) {
		return false
	}
	if !authn.StateHash.Equal(sourceStateHash) {
		return false
	}
	if !authn.Verify(dataHash) {
		return false
	}
	requestId := auth.NewRequestId(publicKey, sourceStateHash)
	return proof.VerifyAgainst(requestId) == inclusion.StatusOK
}

// ---------------------------------------------------------------------
// Burn
// ---------------------------------------------------------------------

// BurnReason is a hash commitment to the set of successor tokens' coin
// allocations — the root of the outer split-proof tree (§4.8).
type BurnReason struct {
	NewTokensTreeHash codec.Imprint
}

// Burn is the terminal predicate of the burn-for-split path. IsOwner and
// Verify always return false: a burned token can never again be unlocked
// by ordinary transfer, only reconstructed into a SplitProof (§4.3, §4.8).
type Burn struct {
	tokenId    ids.TokenId
	tokenType  ids.TokenType
	nonce      []byte
	burnReason BurnReason
	reference  codec.Imprint
	hash       codec.Imprint
}

// NewBurn builds a Burn predicate committing to reason.
// reference = H("BURN", tokenId, tokenType, burnReason.newTokensTreeHash).
// hash binds the reference to tokenId, mirroring Masked's binding scheme —
// the spec table gives no separate hash formula for Burn.
func NewBurn(tokenId ids.TokenId, tokenType ids.TokenType, nonce []byte, reason BurnReason) (*Burn, error) {
	reference, err := codec.HashFields(constants.PredicateBurn, tokenId.Bytes(), tokenType.Bytes(), []byte(reason.NewTokensTreeHash))
	if err != nil {
		return nil, fmt.Errorf("predicate: burn reference: %w", err)
	}
	hash, err := codec.HashFields([]byte(reference), tokenId.Bytes())
	if err != nil {
		return nil, fmt.Errorf("predicate: burn hash: %w", err)
	}
	return &Burn{
		tokenId:    tokenId,
		tokenType:  tokenType,
		nonce:      codec.Clone(nonce),
		burnReason: reason,
		reference:  reference,
		hash:       hash,
	}, nil
}

func (b *Burn) Kind() string             { return constants.PredicateBurn }
func (b *Burn) Reference() codec.Imprint { return b.reference.Clone() }
func (b *Burn) Hash() codec.Imprint      { return b.hash.Clone() }
func (b *Burn) Nonce() []byte            { return codec.Clone(b.nonce) }
func (b *Burn) BurnReason() BurnReason   { return b.burnReason }

// IsOwner always returns false: burn predicates are never owned.
func (b *Burn) IsOwner(publicKey []byte) bool { return false }

// Verify always returns false: burn predicates never authorize a transaction.
func (b *Burn) Verify(dataHash, sourceStateHash codec.Imprint, proof *inclusion.Proof) bool {
	return false
}

// ---------------------------------------------------------------------
// JSON tagged-union form
// ---------------------------------------------------------------------

type wireForm struct {
	Type      string `json:"type"`
	PublicKey string `json:"publicKey,omitempty"`
	SigAlgo   string `json:"sigAlgo,omitempty"`
	HashAlgo  string `json:"hashAlgo,omitempty"`
	Nonce     string `json:"nonce"`
	TokenId   string `json:"tokenId,omitempty"`
	TokenType string `json:"tokenType,omitempty"`
	BurnReason *string `json:"burnReason,omitempty"`
}

func (m *Masked) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireForm{
		Type:      m.Kind(),
		PublicKey: codec.Hex(m.publicKey),
		SigAlgo:   m.sigAlgo,
		HashAlgo:  m.hashAlgo,
		Nonce:     codec.Hex(m.nonce),
	})
}

func (u *Unmasked) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireForm{
		Type:      u.Kind(),
		PublicKey: codec.Hex(u.publicKey),
		SigAlgo:   u.sigAlgo,
		HashAlgo:  u.hashAlgo,
		Nonce:     codec.Hex(u.nonce),
	})
}

func (b *Burn) MarshalJSON() ([]byte, error) {
	reasonHex := b.burnReason.NewTokensTreeHash.Hex()
	return json.Marshal(wireForm{
		Type:       b.Kind(),
		TokenId:    b.tokenId.Hex(),
		TokenType:  b.tokenType.Hex(),
		Nonce:      codec.Hex(b.nonce),
		BurnReason: &reasonHex,
	})
}

// UnmarshalAny dispatches a JSON predicate by its "type" tag and
// reconstructs the concrete variant, recomputing reference/hash rather than
// trusting whatever the wire form claims (§4.7 requires every reconstructed
// object to re-derive its own hash).
func UnmarshalAny(data []byte, tokenId ids.TokenId, tokenType ids.TokenType) (Predicate, error) {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("predicate: unmarshal: %w", err)
	}
	nonce, err := codec.FromHex(w.Nonce)
	if err != nil {
		return nil, fmt.Errorf("predicate: nonce: %w", err)
	}

	switch w.Type {
	case constants.PredicateMasked:
		pub, err := codec.FromHex(w.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("predicate: public key: %w", err)
		}
		return NewMasked(tokenId, pub, w.SigAlgo, w.HashAlgo, nonce)
	case constants.PredicateUnmasked:
		pub, err := codec.FromHex(w.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("predicate: public key: %w", err)
		}
		return ReconstructUnmasked(tokenId, tokenType, pub, w.SigAlgo, w.HashAlgo, nonce)
	case constants.PredicateBurn:
		if w.BurnReason == nil {
			return nil, fmt.Errorf("predicate: burn predicate missing burnReason")
		}
		reasonBytes, err := codec.FromHex(*w.BurnReason)
		if err != nil {
			return nil, fmt.Errorf("predicate: burn reason: %w", err)
		}
		tid, err := ids.TokenIdFromHex(w.TokenId)
		if err != nil {
			return nil, err
		}
		ttype, err := ids.TokenTypeFromHex(w.TokenType)
		if err != nil {
			return nil, err
		}
		return NewBurn(tid, ttype, nonce, BurnReason{NewTokensTreeHash: codec.Imprint(reasonBytes)})
	default:
		return nil, fmt.Errorf("predicate: unknown type tag %q", w.Type)
	}
}
