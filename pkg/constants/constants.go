// Copyright 2026 Unicity Network

// Package constants holds the engine's fixed protocol literals (§6): the
// mint anchor suffix, the universal minter secret, the ledger format
// version, address checksum length, and the tagged-union scheme/type
// strings used across address, predicate and mint-reason dispatch.
package constants

import "crypto/sha256"

// MintSuffix is SHA-256("TOKENID"), appended to a TokenId to derive the
// deterministic pseudo-state RequestId.createFromImprint anchors mint
// transactions against (§4.4).
var MintSuffix = func() [32]byte {
	return sha256.Sum256([]byte("TOKENID"))
}()

// MinterSecret is the UTF-8 bytes of "I_AM_UNIVERSAL_MINTER_FOR_", combined
// with a TokenId to deterministically derive the mint signing key so any
// party can verify a mint authenticator was produced by the canonical
// minter for that token (§4.4).
var MinterSecret = []byte("I_AM_UNIVERSAL_MINTER_FOR_")

// TokenVersion is the literal ledger format version every .txf file must carry.
const TokenVersion = "2.0"

// AddressChecksumLength is the number of checksum bytes appended to a DirectAddress.
const AddressChecksumLength = 4

// Address scheme strings (§4.2).
const (
	SchemeDirect = "DIRECT"
	SchemeProxy  = "PROXY"
)

// Predicate type strings (§4.3).
const (
	PredicateMasked   = "MASKED"
	PredicateUnmasked = "UNMASKED"
	PredicateBurn     = "BURN"
)

// Signature and hash algorithm labels carried alongside keys/nonces so a
// ledger is self-describing about which primitive produced them (§4.1).
const (
	SigAlgoSecp256k1 = "secp256k1"
	HashAlgoSHA256   = "SHA256"
)
