// Copyright 2026 Unicity Network

// Package address implements DirectAddress and ProxyAddress (§4.2): the two
// ways a predicate's reference is rendered into a string a sender can target
// a transaction at.
package address

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/constants"
)

const schemeSeparator = "://"

// Direct is the address form derived from a predicate's reference hash:
// "DIRECT://" || hex(reference.imprint) || hex(checksum), where
// checksum is the first 4 bytes of SHA-256(CBOR(reference.imprint)).
type Direct struct {
	reference codec.Imprint
}

// NewDirect builds a Direct address for reference.
func NewDirect(reference codec.Imprint) Direct {
	return Direct{reference: reference.Clone()}
}

// Reference returns a defensive copy of the underlying reference hash.
func (d Direct) Reference() codec.Imprint { return d.reference.Clone() }

func checksum(reference codec.Imprint) ([]byte, error) {
	enc, err := codec.Marshal([]byte(reference))
	if err != nil {
		return nil, fmt.Errorf("address: encode reference for checksum: %w", err)
	}
	sum := sha256.Sum256(enc)
	return sum[:constants.AddressChecksumLength], nil
}

// String renders the address in its canonical DIRECT://<hex>... <hex> form.
func (d Direct) String() (string, error) {
	sum, err := checksum(d.reference)
	if err != nil {
		return "", err
	}
	return constants.SchemeDirect + schemeSeparator + d.reference.Hex() + codec.Hex(sum), nil
}

// ParseDirect splits s on "://", verifies the scheme is DIRECT, recomputes
// the checksum from the decoded reference, and rejects a mismatched
// trailing checksum. It never panics on malformed input.
func ParseDirect(s string) (Direct, error) {
	scheme, rest, ok := strings.Cut(s, schemeSeparator)
	if !ok {
		return Direct{}, fmt.Errorf("address: %q is not scheme://payload form", s)
	}
	if scheme != constants.SchemeDirect {
		return Direct{}, fmt.Errorf("address: expected scheme %q, got %q", constants.SchemeDirect, scheme)
	}

	checksumHexLen := constants.AddressChecksumLength * 2
	if len(rest) <= checksumHexLen {
		return Direct{}, fmt.Errorf("address: payload too short to carry a checksum")
	}
	refHex := rest[:len(rest)-checksumHexLen]
	gotChecksumHex := rest[len(rest)-checksumHexLen:]

	refBytes, err := codec.FromHex(refHex)
	if err != nil {
		return Direct{}, fmt.Errorf("address: invalid reference hex: %w", err)
	}
	reference := codec.Imprint(refBytes)

	wantChecksum, err := checksum(reference)
	if err != nil {
		return Direct{}, err
	}
	if codec.Hex(wantChecksum) != gotChecksumHex {
		return Direct{}, fmt.Errorf("address: checksum mismatch")
	}

	return NewDirect(reference), nil
}

// Proxy wraps a name-tag identifier instead of a reference hash directly.
// Resolving a name tag to the DirectAddress it currently points at is a
// separate, unspecified lookup (§9 Open Question) this package does not
// perform — Resolve documents the contract a future resolver must satisfy.
type Proxy struct {
	nameTag string
}

// NewProxy wraps nameTag as a Proxy address.
func NewProxy(nameTag string) Proxy { return Proxy{nameTag: nameTag} }

// NameTag returns the wrapped identifier.
func (p Proxy) NameTag() string { return p.nameTag }

// String renders "PROXY://" || nameTag.
func (p Proxy) String() string {
	return constants.SchemeProxy + schemeSeparator + p.nameTag
}

// ParseProxy splits s on "://" and verifies the scheme is PROXY.
func ParseProxy(s string) (Proxy, error) {
	scheme, rest, ok := strings.Cut(s, schemeSeparator)
	if !ok {
		return Proxy{}, fmt.Errorf("address: %q is not scheme://payload form", s)
	}
	if scheme != constants.SchemeProxy {
		return Proxy{}, fmt.Errorf("address: expected scheme %q, got %q", constants.SchemeProxy, scheme)
	}
	return NewProxy(rest), nil
}

// Resolver resolves a Proxy address's name tag to the Direct address it
// currently designates. No implementation ships with this engine — §9
// leaves the resolution mechanism (on-ledger registry, DNS-like service,
// ...) to the deployment.
type Resolver interface {
	Resolve(p Proxy) (Direct, error)
}
