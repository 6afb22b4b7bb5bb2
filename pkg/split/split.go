// Copyright 2026 Unicity Network

// Package split implements the burn-for-split algorithm and its SplitProof
// artifact (§4.8): an outer sparse Merkle tree over coin classes, an inner
// Merkle sum tree per coin class over successor token ids, and the
// (a)-(f) verification chain that binds a minted successor's coin balances
// back to a specific prior burn.
package split

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/predicate"
	"github.com/unicitynetwork/token-engine/pkg/randbytes"
	"github.com/unicitynetwork/token-engine/pkg/smt"
	"github.com/unicitynetwork/token-engine/pkg/sumtree"
)

// Allocation is one successor token's id and the coin balances it will mint.
type Allocation struct {
	TokenId ids.TokenId
	Coins   []coins.Entry
}

// Plan is the output of BuildPlan: the per-coin sum trees, the outer tree
// committing to them, and the BurnReason that seeds the BurnPredicate.
type Plan struct {
	CoinTrees    map[string]*sumtree.Tree // keyed by CoinId hex
	AllCoinsTree *smt.Tree
	BurnReason   predicate.BurnReason
}

// BuildPlan implements §4.8 steps 2-4 over caller-supplied allocations
// (step 1, allocating the successor ids, is AllocateAndBuildPlan's): builds an inner sum tree per coin
// class (keyed by successor token id, valued by that successor's amount of
// the coin), an outer tree over coin classes committing to each inner
// tree's root, and derives BurnReason from the outer tree's root.
func BuildPlan(allocations []Allocation) (*Plan, error) {
	perCoin := make(map[string][]sumtree.Leaf)
	perCoinKeys := make(map[string][]sumtree.Key)

	for _, alloc := range allocations {
		for _, c := range alloc.Coins {
			key := c.CoinId.Hex()
			perCoin[key] = append(perCoin[key], sumtree.Leaf{NumericValue: new(big.Int).Set(c.Amount)})
			perCoinKeys[key] = append(perCoinKeys[key], smt.KeyFromBytes(alloc.TokenId.Bytes()))
		}
	}

	coinTrees := make(map[string]*sumtree.Tree, len(perCoin))
	outerLeaves := make(map[smt.Key][]byte, len(perCoin))

	for coinHex, leaves := range perCoin {
		leafMap := make(map[sumtree.Key]sumtree.Leaf, len(leaves))
		for i, l := range leaves {
			leafMap[perCoinKeys[coinHex][i]] = l
		}
		tree := sumtree.New(leafMap)
		coinTrees[coinHex] = tree

		coinId, err := ids.CoinIdFromHex(coinHex)
		if err != nil {
			return nil, fmt.Errorf("split: coin id: %w", err)
		}
		outerLeaves[smt.KeyFromBytes(coinId.Bytes())] = []byte(hex.EncodeToString(tree.Root()))
	}

	allCoinsTree := smt.New(outerLeaves)
	reasonHash := codec.NewImprint(codec.SHA256, allCoinsTree.Root())

	return &Plan{
		CoinTrees:    coinTrees,
		AllCoinsTree: allCoinsTree,
		BurnReason:   predicate.BurnReason{NewTokensTreeHash: reasonHash},
	}, nil
}

// AllocateAndBuildPlan implements §4.8 step 1 together with steps 2-4: it
// allocates a fresh random successor token id per coin set via
// pkg/randbytes (step 1 — the split algorithm never reuses or accepts a
// caller-chosen successor id), then builds the plan from the resulting
// allocations exactly as BuildPlan does. It returns the allocated ids in
// the same order as coinSets so the caller can mint each successor against
// its assigned id afterward.
func AllocateAndBuildPlan(coinSets [][]coins.Entry) ([]ids.TokenId, *Plan, error) {
	allocations := make([]Allocation, len(coinSets))
	newTokenIds := make([]ids.TokenId, len(coinSets))
	for i, cs := range coinSets {
		newTokenIds[i] = ids.NewTokenId(randbytes.TokenID())
		allocations[i] = Allocation{TokenId: newTokenIds[i], Coins: cs}
	}
	plan, err := BuildPlan(allocations)
	if err != nil {
		return nil, nil, err
	}
	return newTokenIds, plan, nil
}

// CoinProof is one coin class's (outerPath, innerSumPath) pair (§4.8 step 7).
type CoinProof struct {
	OuterPath    *smt.Proof
	InnerSumPath *sumtree.Proof
}

// Proof implements txdata.MintReason: the SplitProof a successor token's
// mint carries, binding it to the burned predecessor's commitment.
type Proof struct {
	BurnedTokenId  ids.TokenId
	BurnReasonHash codec.Imprint // the outer tree root committed at burn time
	Coins          map[string]CoinProof
}

// ReasonKind implements txdata.MintReason.
func (p *Proof) ReasonKind() string { return "SPLIT_PROOF" }

// BuildProof assembles the SplitProof a given successor (newTokenId, its
// coin set) carries, from a completed Plan (§4.8 step 7).
func BuildProof(plan *Plan, burnedTokenId ids.TokenId, newTokenId ids.TokenId, coinIds []ids.CoinId) (*Proof, error) {
	out := &Proof{
		BurnedTokenId:  burnedTokenId,
		BurnReasonHash: plan.BurnReason.NewTokensTreeHash.Clone(),
		Coins:          make(map[string]CoinProof, len(coinIds)),
	}
	for _, coinId := range coinIds {
		tree, ok := plan.CoinTrees[coinId.Hex()]
		if !ok {
			return nil, fmt.Errorf("split: no inner tree for coin %s", coinId.Hex())
		}
		outerPath := plan.AllCoinsTree.GetProof(smt.KeyFromBytes(coinId.Bytes()))
		innerPath := tree.GetProof(smt.KeyFromBytes(newTokenId.Bytes()))
		out.Coins[coinId.Hex()] = CoinProof{OuterPath: outerPath, InnerSumPath: innerPath}
	}
	return out, nil
}

// Verify implements the §4.8 (a)-(f) chain: for every (coinId, amount) the
// successor's own coin data declares, the outer path must prove inclusion
// at that coinId, the inner path must prove inclusion at thisTokenId, the
// outer leaf must commit to the inner root, the inner leaf's numeric value
// must equal amount, the outer root must equal the burned predecessor's
// committed BurnReason, and the set of proved coinIds must exactly match
// the minted coin data — no omissions, no extras. Any failure rejects.
func (p *Proof) Verify(thisTokenId ids.TokenId, mintedCoins *coins.Data, burnedPredicateReason predicate.BurnReason) error {
	entries := mintedCoins.Entries()
	declared := make(map[string]*big.Int, len(entries))
	for _, e := range entries {
		declared[e.CoinId.Hex()] = e.Amount
	}

	// (f) set equality, both directions.
	if len(declared) != len(p.Coins) {
		return fmt.Errorf("split: coin set mismatch: %d declared, %d proved", len(declared), len(p.Coins))
	}
	for coinHex := range declared {
		if _, ok := p.Coins[coinHex]; !ok {
			return fmt.Errorf("split: coin %s declared but not proved", coinHex)
		}
	}

	for coinHex, cp := range p.Coins {
		amount, ok := declared[coinHex]
		if !ok {
			return fmt.Errorf("split: coin %s proved but not declared", coinHex)
		}

		coinId, err := ids.CoinIdFromHex(coinHex)
		if err != nil {
			return fmt.Errorf("split: coin id %s: %w", coinHex, err)
		}
		// (a) outer path proves inclusion at coinId.
		if cp.OuterPath == nil || !cp.OuterPath.Included() || cp.OuterPath.Key != smt.KeyFromBytes(coinId.Bytes()) || !cp.OuterPath.Verify(cp.OuterPath.Root) {
			return fmt.Errorf("split: outer path for coin %s does not prove inclusion", coinHex)
		}
		// (b) inner path proves inclusion at thisTokenId.
		if cp.InnerSumPath == nil || !cp.InnerSumPath.Included() || cp.InnerSumPath.Key != sumtree.KeyFromBytes(thisTokenId.Bytes()) ||
			len(cp.InnerSumPath.Siblings) != smt.Depth || !cp.InnerSumPath.Verify(cp.InnerSumPath.Root, cp.InnerSumPath.RootSum) {
			return fmt.Errorf("split: inner path for coin %s does not prove inclusion", coinHex)
		}
		// (c) outer leaf commits to inner root.
		if cp.OuterPath.LeafValue == nil || hex.EncodeToString(cp.InnerSumPath.Root) != string(cp.OuterPath.LeafValue) {
			return fmt.Errorf("split: outer leaf for coin %s does not commit to inner root", coinHex)
		}
		// (d) inner leaf numeric value equals declared amount.
		if cp.InnerSumPath.LeafNumeric == nil || cp.InnerSumPath.LeafNumeric.Cmp(amount) != 0 {
			return fmt.Errorf("split: coin %s amount mismatch: proof has %v, minted data has %v", coinHex, cp.InnerSumPath.LeafNumeric, amount)
		}
		// (e) outer root equals the burn predicate's committed reason.
		outerRootImprint := codec.NewImprint(codec.SHA256, cp.OuterPath.Root)
		if !outerRootImprint.Equal(burnedPredicateReason.NewTokensTreeHash) {
			return fmt.Errorf("split: outer root does not match burned token's committed reason for coin %s", coinHex)
		}
		if !outerRootImprint.Equal(p.BurnReasonHash) {
			return fmt.Errorf("split: outer root does not match the proof's own recorded burn reason for coin %s", coinHex)
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Wire form
// ---------------------------------------------------------------------

type wireSMTProof struct {
	Key       string   `json:"key"`
	LeafValue *string  `json:"leafValue"`
	Siblings  []string `json:"siblings"`
	Root      string   `json:"root"`
}

type wireSumProof struct {
	Key         string   `json:"key"`
	LeafValue   *string  `json:"leafValue"`
	LeafNumeric *string  `json:"leafNumeric"`
	Siblings    []string `json:"siblings"`
	SiblingSums []string `json:"siblingSums"`
	Root        string   `json:"root"`
	RootSum     string   `json:"rootSum"`
}

type wireCoinProof struct {
	Outer wireSMTProof `json:"outer"`
	Inner wireSumProof `json:"inner"`
}

type wireProof struct {
	BurnedTokenId  string                   `json:"burnedTokenId"`
	BurnReasonHash string                   `json:"burnReasonHash"`
	Coins          map[string]wireCoinProof `json:"coins"`
}

func toWireSMT(p *smt.Proof) wireSMTProof {
	var leaf *string
	if p.LeafValue != nil {
		s := hex.EncodeToString(p.LeafValue)
		leaf = &s
	}
	sibs := make([]string, len(p.Siblings))
	for i, s := range p.Siblings {
		sibs[i] = hex.EncodeToString(s)
	}
	return wireSMTProof{Key: hex.EncodeToString(p.Key[:]), LeafValue: leaf, Siblings: sibs, Root: hex.EncodeToString(p.Root)}
}

func toWireSum(p *sumtree.Proof) wireSumProof {
	var leaf, numeric *string
	if p.LeafValue != nil {
		s := hex.EncodeToString(p.LeafValue)
		leaf = &s
	}
	if p.LeafNumeric != nil {
		s := p.LeafNumeric.String()
		numeric = &s
	}
	sibs := make([]string, len(p.Siblings))
	sums := make([]string, len(p.Siblings))
	for i, s := range p.Siblings {
		sibs[i] = hex.EncodeToString(s.Hash)
		sums[i] = s.Sum.String()
	}
	return wireSumProof{
		Key: hex.EncodeToString(p.Key[:]), LeafValue: leaf, LeafNumeric: numeric,
		Siblings: sibs, SiblingSums: sums, Root: hex.EncodeToString(p.Root), RootSum: p.RootSum.String(),
	}
}

// MarshalJSON renders the proof in its portable ledger form.
func (p *Proof) MarshalJSON() ([]byte, error) {
	w := wireProof{
		BurnedTokenId:  p.BurnedTokenId.Hex(),
		BurnReasonHash: p.BurnReasonHash.Hex(),
		Coins:          make(map[string]wireCoinProof, len(p.Coins)),
	}
	for coinHex, cp := range p.Coins {
		w.Coins[coinHex] = wireCoinProof{Outer: toWireSMT(cp.OuterPath), Inner: toWireSum(cp.InnerSumPath)}
	}
	return json.Marshal(w)
}

// MarshalCBOR renders the proof using the same canonical encoding every
// other hashable object in the engine uses.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	data, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return codec.Marshal(generic)
}

func fromWireSMT(w wireSMTProof) (*smt.Proof, error) {
	keyBytes, err := hex.DecodeString(w.Key)
	if err != nil {
		return nil, fmt.Errorf("split: outer proof key: %w", err)
	}
	rootBytes, err := hex.DecodeString(w.Root)
	if err != nil {
		return nil, fmt.Errorf("split: outer proof root: %w", err)
	}
	siblings := make([][]byte, len(w.Siblings))
	for i, s := range w.Siblings {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("split: outer proof sibling %d: %w", i, err)
		}
		siblings[i] = b
	}
	var leaf []byte
	if w.LeafValue != nil {
		leaf, err = hex.DecodeString(*w.LeafValue)
		if err != nil {
			return nil, fmt.Errorf("split: outer proof leaf: %w", err)
		}
	}
	return &smt.Proof{Key: smt.KeyFromBytes(keyBytes), LeafValue: leaf, Siblings: siblings, Root: rootBytes}, nil
}

func fromWireSum(w wireSumProof) (*sumtree.Proof, error) {
	keyBytes, err := hex.DecodeString(w.Key)
	if err != nil {
		return nil, fmt.Errorf("split: inner proof key: %w", err)
	}
	rootBytes, err := hex.DecodeString(w.Root)
	if err != nil {
		return nil, fmt.Errorf("split: inner proof root: %w", err)
	}
	rootSum, ok := new(big.Int).SetString(w.RootSum, 10)
	if !ok {
		return nil, fmt.Errorf("split: inner proof root sum %q", w.RootSum)
	}
	siblings := make([]sumtree.SiblingNode, len(w.Siblings))
	for i, s := range w.Siblings {
		h, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("split: inner proof sibling %d: %w", i, err)
		}
		sum, ok := new(big.Int).SetString(w.SiblingSums[i], 10)
		if !ok {
			return nil, fmt.Errorf("split: inner proof sibling sum %d %q", i, w.SiblingSums[i])
		}
		siblings[i] = sumtree.SiblingNode{Hash: h, Sum: sum}
	}
	var leaf []byte
	var numeric *big.Int
	if w.LeafValue != nil {
		leaf, err = hex.DecodeString(*w.LeafValue)
		if err != nil {
			return nil, fmt.Errorf("split: inner proof leaf: %w", err)
		}
	}
	if w.LeafNumeric != nil {
		numeric, ok = new(big.Int).SetString(*w.LeafNumeric, 10)
		if !ok {
			return nil, fmt.Errorf("split: inner proof leaf numeric %q", *w.LeafNumeric)
		}
	}
	return &sumtree.Proof{
		Key: sumtree.KeyFromBytes(keyBytes), LeafValue: leaf, LeafNumeric: numeric,
		Siblings: siblings, Root: rootBytes, RootSum: rootSum,
	}, nil
}

// UnmarshalJSON reconstructs a Proof from its portable ledger form.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var w wireProof
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("split: unmarshal proof: %w", err)
	}
	tokenId, err := ids.TokenIdFromHex(w.BurnedTokenId)
	if err != nil {
		return err
	}
	reasonBytes, err := hex.DecodeString(w.BurnReasonHash)
	if err != nil {
		return fmt.Errorf("split: burn reason hash: %w", err)
	}

	coinProofs := make(map[string]CoinProof, len(w.Coins))
	for coinHex, wcp := range w.Coins {
		outer, err := fromWireSMT(wcp.Outer)
		if err != nil {
			return err
		}
		inner, err := fromWireSum(wcp.Inner)
		if err != nil {
			return err
		}
		coinProofs[coinHex] = CoinProof{OuterPath: outer, InnerSumPath: inner}
	}

	p.BurnedTokenId = tokenId
	p.BurnReasonHash = codec.Imprint(reasonBytes)
	p.Coins = coinProofs
	return nil
}

// CoinIds returns the proof's coin classes in ascending hex order, for
// callers that need a deterministic iteration order (e.g. assembling a
// factory error message).
func (p *Proof) CoinIds() []string {
	out := make([]string, 0, len(p.Coins))
	for k := range p.Coins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
