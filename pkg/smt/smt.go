// Copyright 2026 Unicity Network

// Package smt implements a sparse Merkle tree keyed by 256-bit big-endian
// paths. The spec (§1, §6) treats "the sparse-merkle and sum-tree
// libraries" as an external collaborator the aggregator itself runs; this
// package is the concrete instance the engine needs to exercise and test
// split-proof verification (§4.8) against, grounded on the teacher's own
// pkg/merkle binary-tree construction (level-by-level build, sibling-path
// proofs) generalized from a dense binary tree to a sparse, default-hash
// tree of fixed depth.
package smt

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/holiman/uint256"
)

// Depth is the path length in bits: one bit per tree level, matching a
// 256-bit (32-byte) key space.
const Depth = 256

// Key is a fixed-width, big-endian path into the tree.
type Key [32]byte

// KeyFromBytes left-pads (or truncates the high end of) b into a 32-byte
// big-endian Key. Domain identifiers (TokenId, CoinId, ...) are already
// 32 bytes in every scenario the spec exercises; shorter inputs are
// zero-padded on the left so small test values still occupy a stable path.
func KeyFromBytes(b []byte) Key {
	var k Key
	if len(b) >= 32 {
		copy(k[:], b[len(b)-32:])
		return k
	}
	copy(k[32-len(b):], b)
	return k
}

// KeyFromUint256 renders u as a big-endian Key.
func KeyFromUint256(u *uint256.Int) Key {
	return Key(u.Bytes32())
}

func (k Key) bit(depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - (depth % 8)
	return int((k[byteIdx] >> uint(bitIdx)) & 1)
}

func hashNode(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func hashLeaf(key Key, value []byte) []byte {
	h := sha256.New()
	h.Write([]byte("smt-leaf"))
	h.Write(key[:])
	h.Write(value)
	return h.Sum(nil)
}

// defaultHashes[d] is the root hash of an empty subtree of height d
// (d==0 is a single empty leaf's hash, d==Depth is the root of an
// entirely empty tree).
var defaultHashes = buildDefaultHashes()

func buildDefaultHashes() [][]byte {
	out := make([][]byte, Depth+1)
	out[0] = sha256.New().Sum(nil) // hash of the empty leaf slot
	for d := 1; d <= Depth; d++ {
		out[d] = hashNode(out[d-1], out[d-1])
	}
	return out
}

// Tree is a sparse Merkle tree over an explicit set of (Key, value) leaves.
// It is immutable once built — callers construct a new Tree for a new leaf
// set rather than mutating one in place, consistent with the engine's
// value-semantics across the board (§5, §9).
type Tree struct {
	leaves map[Key][]byte // byte-for-byte leaf values, not yet hashed
}

// New builds a Tree from a leaf map. The map is copied defensively.
func New(leaves map[Key][]byte) *Tree {
	t := &Tree{leaves: make(map[Key][]byte, len(leaves))}
	for k, v := range leaves {
		cp := make([]byte, len(v))
		copy(cp, v)
		t.leaves[k] = cp
	}
	return t
}

// Keys returns the tree's leaf keys in ascending order.
func (t *Tree) Keys() []Key {
	out := make([]Key, 0, len(t.leaves))
	for k := range t.leaves {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// Root returns the tree's root hash.
func (t *Tree) Root() []byte {
	keys := t.Keys()
	return t.subtreeHash(keys, 0)
}

func (t *Tree) subtreeHash(keys []Key, depth int) []byte {
	if len(keys) == 0 {
		return defaultHashes[Depth-depth]
	}
	if depth == Depth {
		return hashLeaf(keys[0], t.leaves[keys[0]])
	}
	var left, right []Key
	for _, k := range keys {
		if k.bit(depth) == 0 {
			left = append(left, k)
		} else {
			right = append(right, k)
		}
	}
	return hashNode(t.subtreeHash(left, depth+1), t.subtreeHash(right, depth+1))
}

// Proof is an inclusion (or non-inclusion) path from a leaf to the root.
type Proof struct {
	Key       Key
	LeafValue []byte // nil iff the key is absent from the tree
	Siblings  [][]byte
	Root      []byte
}

// GetProof builds the membership/non-membership proof for key.
func (t *Tree) GetProof(key Key) *Proof {
	keys := t.Keys()
	siblings := make([][]byte, Depth)
	t.collectSiblings(keys, 0, key, siblings)

	value, ok := t.leaves[key]
	var leafValue []byte
	if ok {
		leafValue = make([]byte, len(value))
		copy(leafValue, value)
	}

	return &Proof{
		Key:       key,
		LeafValue: leafValue,
		Siblings:  siblings,
		Root:      t.Root(),
	}
}

func (t *Tree) collectSiblings(keys []Key, depth int, target Key, out [][]byte) {
	if depth == Depth {
		return
	}
	var left, right []Key
	for _, k := range keys {
		if k.bit(depth) == 0 {
			left = append(left, k)
		} else {
			right = append(right, k)
		}
	}
	if target.bit(depth) == 0 {
		out[depth] = t.subtreeHash(right, depth+1)
		t.collectSiblings(left, depth+1, target, out)
	} else {
		out[depth] = t.subtreeHash(left, depth+1)
		t.collectSiblings(right, depth+1, target, out)
	}
}

// Verify recomputes the root from the proof and checks it against root.
// It returns true whenever the recomputed root matches, for a proof of
// inclusion (LeafValue non-nil) and a proof of absence (LeafValue nil)
// alike; Included tells the two apart. A proof without exactly Depth
// siblings does not verify.
func (p *Proof) Verify(root []byte) bool {
	if len(p.Siblings) != Depth {
		return false
	}
	var cur []byte
	if p.LeafValue != nil {
		cur = hashLeaf(p.Key, p.LeafValue)
	} else {
		cur = defaultHashes[0]
	}
	for depth := Depth - 1; depth >= 0; depth-- {
		sib := p.Siblings[depth]
		if p.Key.bit(depth) == 0 {
			cur = hashNode(cur, sib)
		} else {
			cur = hashNode(sib, cur)
		}
	}
	return bytes.Equal(cur, root)
}

// Included reports whether this proof demonstrates membership.
func (p *Proof) Included() bool { return p.LeafValue != nil }

// String renders the key as a diagnostic hex string.
func (k Key) String() string {
	return fmt.Sprintf("%x", k[:])
}
