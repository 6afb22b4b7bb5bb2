// Copyright 2026 Unicity Network

package sumtree

import (
	"math/big"
	"testing"

	"github.com/unicitynetwork/token-engine/pkg/smt"
)

func key(b byte) Key {
	var k Key
	k[31] = b
	return k
}

func TestTotalSumAddsLeaves(t *testing.T) {
	tree := New(map[Key]Leaf{
		key(1): {NumericValue: big.NewInt(10)},
		key(2): {NumericValue: big.NewInt(25)},
	})
	if tree.TotalSum().Cmp(big.NewInt(35)) != 0 {
		t.Fatalf("expected total sum 35, got %s", tree.TotalSum())
	}
}

func TestProofVerifiesLeafAndSum(t *testing.T) {
	tree := New(map[Key]Leaf{
		key(1): {NumericValue: big.NewInt(10)},
		key(2): {NumericValue: big.NewInt(25)},
	})
	root := tree.Root()
	total := tree.TotalSum()

	proof := tree.GetProof(key(1))
	if !proof.Included() {
		t.Fatalf("expected inclusion")
	}
	if proof.LeafNumeric.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected leaf numeric 10, got %s", proof.LeafNumeric)
	}
	if !proof.Verify(root, total) {
		t.Fatalf("proof failed to verify")
	}
}

func TestTamperedAmountFailsVerification(t *testing.T) {
	tree := New(map[Key]Leaf{key(1): {NumericValue: big.NewInt(10)}})
	root := tree.Root()
	total := tree.TotalSum()

	proof := tree.GetProof(key(1))
	proof.LeafNumeric = big.NewInt(16)
	if proof.Verify(root, total) {
		t.Fatalf("tampered amount should not verify")
	}
}

func TestEmptyKeyNonMembership(t *testing.T) {
	tree := New(map[Key]Leaf{key(1): {NumericValue: big.NewInt(10)}})
	root := tree.Root()
	total := tree.TotalSum()

	proof := tree.GetProof(key(2))
	if proof.Included() {
		t.Fatalf("key 2 should not be included")
	}
	if !proof.Verify(root, total) {
		t.Fatalf("non-membership proof failed to verify")
	}
}

func TestKeyFromBytesMatchesSMT(t *testing.T) {
	b := []byte{0xAA, 0xBB}
	if KeyFromBytes(b) != smt.KeyFromBytes(b) {
		t.Fatalf("sumtree.KeyFromBytes should match smt.KeyFromBytes")
	}
}
