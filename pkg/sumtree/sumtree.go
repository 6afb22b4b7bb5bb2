// Copyright 2026 Unicity Network

// Package sumtree implements a Merkle sum tree: a sparse Merkle tree
// (mirroring pkg/smt's construction) where every node additionally
// commits to the sum of the numeric values beneath it. The split algorithm
// (§4.8) uses one of these per coin to bind a burned token's successors to
// an on-ledger, conservation-checkable total.
package sumtree

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"sort"

	"github.com/unicitynetwork/token-engine/pkg/smt"
)

// Key re-exports smt.Key so callers don't need to import both packages
// just to build a key.
type Key = smt.Key

// KeyFromBytes re-exports smt.KeyFromBytes.
func KeyFromBytes(b []byte) Key { return smt.KeyFromBytes(b) }

// Leaf is one (key, value, numericValue) entry. Value is carried alongside
// the numeric amount per §4.8 step 2 ("value=0, numericValue=amount") —
// the engine always sets Value to nil/empty for split leaves, but the type
// is general.
type Leaf struct {
	Value        []byte
	NumericValue *big.Int
}

type node struct {
	hash []byte
	sum  *big.Int
}

func hashNode(left, right node) node {
	h := sha256.New()
	h.Write(left.hash)
	h.Write(right.hash)
	sum := new(big.Int).Add(left.sum, right.sum)
	h.Write(sum.Bytes())
	return node{hash: h.Sum(nil), sum: sum}
}

func hashLeaf(key Key, l Leaf) node {
	h := sha256.New()
	h.Write([]byte("sumtree-leaf"))
	h.Write(key[:])
	h.Write(l.Value)
	h.Write(l.NumericValue.Bytes())
	return node{hash: h.Sum(nil), sum: new(big.Int).Set(l.NumericValue)}
}

var emptyNode = func() []node {
	out := make([]node, smt.Depth+1)
	out[0] = node{hash: sha256.New().Sum(nil), sum: big.NewInt(0)}
	for d := 1; d <= smt.Depth; d++ {
		out[d] = hashNode(out[d-1], out[d-1])
	}
	return out
}()

// Tree is an immutable Merkle sum tree over an explicit leaf set.
type Tree struct {
	leaves map[Key]Leaf
}

// New builds a Tree from a leaf map.
func New(leaves map[Key]Leaf) *Tree {
	t := &Tree{leaves: make(map[Key]Leaf, len(leaves))}
	for k, v := range leaves {
		val := make([]byte, len(v.Value))
		copy(val, v.Value)
		t.leaves[k] = Leaf{Value: val, NumericValue: new(big.Int).Set(v.NumericValue)}
	}
	return t
}

func (t *Tree) keys() []Key {
	out := make([]Key, 0, len(t.leaves))
	for k := range t.leaves {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

func (t *Tree) subtree(keys []Key, depth int) node {
	if len(keys) == 0 {
		return emptyNode[smt.Depth-depth]
	}
	if depth == smt.Depth {
		return hashLeaf(keys[0], t.leaves[keys[0]])
	}
	var left, right []Key
	for _, k := range keys {
		if bit(k, depth) == 0 {
			left = append(left, k)
		} else {
			right = append(right, k)
		}
	}
	return hashNode(t.subtree(left, depth+1), t.subtree(right, depth+1))
}

func bit(k Key, depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - (depth % 8)
	return int((k[byteIdx] >> uint(bitIdx)) & 1)
}

// Root returns the root hash.
func (t *Tree) Root() []byte {
	return t.subtree(t.keys(), 0).hash
}

// TotalSum returns the sum of every leaf's numeric value.
func (t *Tree) TotalSum() *big.Int {
	return new(big.Int).Set(t.subtree(t.keys(), 0).sum)
}

// SiblingNode is one proof step: the sibling's hash and its committed sum.
type SiblingNode struct {
	Hash []byte
	Sum  *big.Int
}

// Proof is an inclusion path from a leaf to the sum-tree root.
type Proof struct {
	Key          Key
	LeafValue    []byte   // nil when absent, and also for a present leaf whose value is empty
	LeafNumeric  *big.Int // nil iff absent
	Siblings     []SiblingNode
	Root         []byte
	RootSum      *big.Int
}

// GetProof builds the proof for key.
func (t *Tree) GetProof(key Key) *Proof {
	keys := t.keys()
	siblings := make([]SiblingNode, smt.Depth)
	t.collect(keys, 0, key, siblings)

	root := t.subtree(t.keys(), 0)

	p := &Proof{Key: key, Siblings: siblings, Root: root.hash, RootSum: new(big.Int).Set(root.sum)}
	if leaf, ok := t.leaves[key]; ok {
		p.LeafValue = append([]byte(nil), leaf.Value...)
		p.LeafNumeric = new(big.Int).Set(leaf.NumericValue)
	}
	return p
}

func (t *Tree) collect(keys []Key, depth int, target Key, out []SiblingNode) {
	if depth == smt.Depth {
		return
	}
	var left, right []Key
	for _, k := range keys {
		if bit(k, depth) == 0 {
			left = append(left, k)
		} else {
			right = append(right, k)
		}
	}
	if bit(target, depth) == 0 {
		sib := t.subtree(right, depth+1)
		out[depth] = SiblingNode{Hash: sib.hash, Sum: sib.sum}
		t.collect(left, depth+1, target, out)
	} else {
		sib := t.subtree(left, depth+1)
		out[depth] = SiblingNode{Hash: sib.hash, Sum: sib.sum}
		t.collect(right, depth+1, target, out)
	}
}

// Included reports whether the proof demonstrates membership.
func (p *Proof) Included() bool { return p.LeafNumeric != nil }

// Verify recomputes the root hash and sum from the proof and checks both
// against root/rootSum.
func (p *Proof) Verify(root []byte, rootSum *big.Int) bool {
	var cur node
	if p.Included() {
		cur = hashLeaf(p.Key, Leaf{Value: p.LeafValue, NumericValue: p.LeafNumeric})
	} else {
		cur = emptyNode[0]
	}
	for depth := smt.Depth - 1; depth >= 0; depth-- {
		sib := node{hash: p.Siblings[depth].Hash, sum: p.Siblings[depth].Sum}
		if bit(p.Key, depth) == 0 {
			cur = hashNode(cur, sib)
		} else {
			cur = hashNode(sib, cur)
		}
	}
	return bytes.Equal(cur.hash, root) && cur.sum.Cmp(rootSum) == 0
}
