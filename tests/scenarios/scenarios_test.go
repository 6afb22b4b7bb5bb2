// Copyright 2026 Unicity Network

// Package scenarios runs the literal seeded scenarios against the full
// stateclient/token/split/address stack, end to end, the way the teacher's
// own liteclient/tests/integration package exercises its proof pipeline
// against a live-shaped but self-contained fixture rather than mocks.
package scenarios

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/unicitynetwork/token-engine/pkg/address"
	"github.com/unicitynetwork/token-engine/pkg/aggregator"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
	"github.com/unicitynetwork/token-engine/pkg/predicate"
	"github.com/unicitynetwork/token-engine/pkg/signing"
	"github.com/unicitynetwork/token-engine/pkg/split"
	"github.com/unicitynetwork/token-engine/pkg/stateclient"
	"github.com/unicitynetwork/token-engine/pkg/token"
	"github.com/unicitynetwork/token-engine/pkg/tokenstate"
	"github.com/unicitynetwork/token-engine/pkg/txdata"
)

var (
	seedTokenId   = ids.NewTokenId(bytes.Repeat([]byte{0xAA}, 32))
	seedTokenType = ids.NewTokenType(bytes.Repeat([]byte{0xBB}, 32))
)

func seedCoins(t *testing.T) *coins.Data {
	t.Helper()
	d, err := coins.New([]coins.Entry{
		{CoinId: ids.NewCoinId(bytes.Repeat([]byte{0x01}, 32)), Amount: big.NewInt(10)},
		{CoinId: ids.NewCoinId(bytes.Repeat([]byte{0x02}, 32)), Amount: big.NewInt(20)},
	})
	if err != nil {
		t.Fatalf("build coin data: %v", err)
	}
	return d
}

// Scenario 1: mint to an owner, transfer on to a masked "tere", and check
// getTokenStatus before/after against the two public keys (§8.1).
func TestScenario1_MintThenTransfer(t *testing.T) {
	ctx := context.Background()
	agg := aggregator.NewInMemory()
	client := stateclient.New(agg)

	ownerKp, err := signing.FromSecret([]byte("secret"))
	if err != nil {
		t.Fatalf("derive owner key: %v", err)
	}
	ownerNonce := bytes.Repeat([]byte{0x03}, 32)
	ownerPred, err := predicate.NewUnmasked(ownerKp, seedTokenId, seedTokenType, constants.HashAlgoSHA256, ownerNonce)
	if err != nil {
		t.Fatalf("build owner predicate: %v", err)
	}
	ownerAddr, err := address.NewDirect(ownerPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive owner address: %v", err)
	}

	coinData := seedCoins(t)
	mintSalt := bytes.Repeat([]byte{0x05}, 32)
	mintCommitment, err := client.SubmitMintTransaction(ctx, ownerAddr, seedTokenId, seedTokenType, []byte("hello"), coinData, mintSalt, nil, nil)
	if err != nil {
		t.Fatalf("submit mint: %v", err)
	}
	mintProof, err := agg.GetInclusionProof(ctx, mintCommitment.RequestId)
	if err != nil {
		t.Fatalf("get mint inclusion proof: %v", err)
	}
	mintTx, err := stateclient.CreateMintTransaction(mintCommitment, mintProof)
	if err != nil {
		t.Fatalf("create mint transaction: %v", err)
	}
	ownerState, err := tokenstate.New(ownerPred, nil)
	if err != nil {
		t.Fatalf("build owner state: %v", err)
	}
	originalToken, err := token.New(seedTokenId, seedTokenType, []byte("hello"), coinData, mintTx, ownerState)
	if err != nil {
		t.Fatalf("assemble original token: %v", err)
	}

	receiverKp, err := signing.FromSecret([]byte("tere"))
	if err != nil {
		t.Fatalf("derive receiver key: %v", err)
	}
	receiverNonce := bytes.Repeat([]byte{0x04}, 32)
	receiverPred, err := predicate.NewMasked(seedTokenId, receiverKp.PublicKey(), constants.SigAlgoSecp256k1, constants.HashAlgoSHA256, receiverNonce)
	if err != nil {
		t.Fatalf("build receiver predicate: %v", err)
	}
	receiverAddr, err := address.NewDirect(receiverPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive receiver address: %v", err)
	}

	transferSalt := bytes.Repeat([]byte{0x06}, 32)
	transferData, err := txdata.NewTransaction(ownerState, receiverAddr, transferSalt, nil, nil, nil)
	if err != nil {
		t.Fatalf("build transfer data: %v", err)
	}
	transferCommitment, err := client.SubmitTransaction(ctx, transferData, ownerKp)
	if err != nil {
		t.Fatalf("submit transfer: %v", err)
	}
	transferProof, err := agg.GetInclusionProof(ctx, transferCommitment.RequestId)
	if err != nil {
		t.Fatalf("get transfer inclusion proof: %v", err)
	}
	transferTx, err := stateclient.CreateTransaction(transferCommitment, transferProof)
	if err != nil {
		t.Fatalf("create transfer transaction: %v", err)
	}
	receiverState, err := tokenstate.New(receiverPred, nil)
	if err != nil {
		t.Fatalf("build receiver state: %v", err)
	}
	updatedToken, err := stateclient.FinishTransaction(originalToken, receiverState, transferTx)
	if err != nil {
		t.Fatalf("finish transaction: %v", err)
	}

	if len(updatedToken.Transfers()) != 1 {
		t.Fatalf("expected 1 transfer beyond the mint, got %d", len(updatedToken.Transfers()))
	}
	if !updatedToken.State().Predicate().IsOwner(receiverKp.PublicKey()) {
		t.Fatalf("updated token's current owner is not tere")
	}

	status, err := client.GetTokenStatus(ctx, originalToken, ownerKp.PublicKey())
	if err != nil {
		t.Fatalf("get original token status: %v", err)
	}
	if status != inclusion.StatusOK {
		t.Fatalf("expected original token status OK, got %s", status)
	}

	status, err = client.GetTokenStatus(ctx, updatedToken, receiverKp.PublicKey())
	if err != nil {
		t.Fatalf("get updated token status: %v", err)
	}
	if status != inclusion.StatusPathNotIncluded {
		t.Fatalf("expected updated token status PATH_NOT_INCLUDED, got %s", status)
	}
}

// Scenario 2: an inclusion proof whose authenticator carries an unknown
// hash algorithm must fail createTransaction (§8.2).
func TestScenario2_UnknownHashAlgorithmRejected(t *testing.T) {
	ctx := context.Background()
	agg := aggregator.NewInMemory()
	client := stateclient.New(agg)

	ownerKp, err := signing.FromSecret([]byte("secret"))
	if err != nil {
		t.Fatalf("derive owner key: %v", err)
	}
	ownerPred, err := predicate.NewUnmasked(ownerKp, seedTokenId, seedTokenType, constants.HashAlgoSHA256, bytes.Repeat([]byte{0x03}, 32))
	if err != nil {
		t.Fatalf("build owner predicate: %v", err)
	}
	ownerAddr, err := address.NewDirect(ownerPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive owner address: %v", err)
	}

	coinData := seedCoins(t)
	mintCommitment, err := client.SubmitMintTransaction(ctx, ownerAddr, seedTokenId, seedTokenType, []byte("hello"), coinData, bytes.Repeat([]byte{0x05}, 32), nil, nil)
	if err != nil {
		t.Fatalf("submit mint: %v", err)
	}
	mintProof, err := agg.GetInclusionProof(ctx, mintCommitment.RequestId)
	if err != nil {
		t.Fatalf("get mint inclusion proof: %v", err)
	}

	mintProof.Authenticator.StateHash[0] = 0xFF // no longer a known algorithm tag

	if _, err := stateclient.CreateMintTransaction(mintCommitment, mintProof); err == nil {
		t.Fatalf("expected createTransaction to reject an unknown inclusion proof hash algorithm")
	}
}

// Scenario 3: a returned proof whose transactionHash doesn't match the
// transaction data's own hash must fail createTransaction (§8.3).
func TestScenario3_TransactionHashMismatchRejected(t *testing.T) {
	ctx := context.Background()
	agg := aggregator.NewInMemory()
	client := stateclient.New(agg)

	ownerKp, err := signing.FromSecret([]byte("secret"))
	if err != nil {
		t.Fatalf("derive owner key: %v", err)
	}
	ownerPred, err := predicate.NewUnmasked(ownerKp, seedTokenId, seedTokenType, constants.HashAlgoSHA256, bytes.Repeat([]byte{0x03}, 32))
	if err != nil {
		t.Fatalf("build owner predicate: %v", err)
	}
	ownerAddr, err := address.NewDirect(ownerPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive owner address: %v", err)
	}

	coinData := seedCoins(t)
	mintCommitment, err := client.SubmitMintTransaction(ctx, ownerAddr, seedTokenId, seedTokenType, []byte("hello"), coinData, bytes.Repeat([]byte{0x05}, 32), nil, nil)
	if err != nil {
		t.Fatalf("submit mint: %v", err)
	}
	mintProof, err := agg.GetInclusionProof(ctx, mintCommitment.RequestId)
	if err != nil {
		t.Fatalf("get mint inclusion proof: %v", err)
	}

	tampered := mintProof.TransactionHash.Clone()
	tampered[len(tampered)-1] ^= 0xFF
	mintProof.TransactionHash = tampered

	_, err = stateclient.CreateMintTransaction(mintCommitment, mintProof)
	if err == nil {
		t.Fatalf("expected createTransaction to reject a transaction hash mismatch")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "payload hash mismatch") {
		t.Fatalf("expected a payload hash mismatch error, got: %v", err)
	}
}

// Scenario 4: splitting a token's coins into two successors must preserve
// per-coin conservation and let each successor's SplitProof verify against
// the burned predecessor's committed reason (§8.4, §4.8).
func TestScenario4_SplitConservesCoinsAndVerifies(t *testing.T) {
	ctx := context.Background()
	agg := aggregator.NewInMemory()
	client := stateclient.New(agg)

	coinU := ids.NewCoinId([]byte("u"))
	coinA := ids.NewCoinId([]byte("a"))

	sourceTokenId := ids.NewTokenId(bytes.Repeat([]byte{0x10}, 32))
	sourceCoins, err := coins.New([]coins.Entry{
		{CoinId: coinU, Amount: big.NewInt(10)},
		{CoinId: coinA, Amount: big.NewInt(20)},
	})
	if err != nil {
		t.Fatalf("build source coin data: %v", err)
	}

	ownerKp, err := signing.FromSecret([]byte("split-owner"))
	if err != nil {
		t.Fatalf("derive owner key: %v", err)
	}
	ownerPred, err := predicate.NewUnmasked(ownerKp, sourceTokenId, seedTokenType, constants.HashAlgoSHA256, bytes.Repeat([]byte{0x07}, 32))
	if err != nil {
		t.Fatalf("build owner predicate: %v", err)
	}
	ownerAddr, err := address.NewDirect(ownerPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive owner address: %v", err)
	}

	mintCommitment, err := client.SubmitMintTransaction(ctx, ownerAddr, sourceTokenId, seedTokenType, nil, sourceCoins, bytes.Repeat([]byte{0x08}, 32), nil, nil)
	if err != nil {
		t.Fatalf("submit source mint: %v", err)
	}
	mintProof, err := agg.GetInclusionProof(ctx, mintCommitment.RequestId)
	if err != nil {
		t.Fatalf("get source mint inclusion proof: %v", err)
	}
	mintTx, err := stateclient.CreateMintTransaction(mintCommitment, mintProof)
	if err != nil {
		t.Fatalf("create source mint transaction: %v", err)
	}
	ownerState, err := tokenstate.New(ownerPred, nil)
	if err != nil {
		t.Fatalf("build owner state: %v", err)
	}
	sourceToken, err := token.New(sourceTokenId, seedTokenType, nil, sourceCoins, mintTx, ownerState)
	if err != nil {
		t.Fatalf("assemble source token: %v", err)
	}

	newTokenIds, plan, err := split.AllocateAndBuildPlan([][]coins.Entry{
		{{CoinId: coinU, Amount: big.NewInt(10)}, {CoinId: coinA, Amount: big.NewInt(5)}},
		{{CoinId: coinA, Amount: big.NewInt(15)}},
	})
	if err != nil {
		t.Fatalf("allocate successors and build split plan: %v", err)
	}
	tokenIdA, tokenIdB := newTokenIds[0], newTokenIds[1]

	burnResult, err := client.SubmitBurnTransactionForSplit(ctx, sourceToken, ownerKp, plan.BurnReason, bytes.Repeat([]byte{0x0A}, 32), nil, nil, newTokenIds)
	if err != nil {
		t.Fatalf("submit burn for split: %v", err)
	}
	burnProof, err := agg.GetInclusionProof(ctx, burnResult.Commitment.RequestId)
	if err != nil {
		t.Fatalf("get burn inclusion proof: %v", err)
	}
	burnTx, err := stateclient.CreateTransaction(burnResult.Commitment, burnProof)
	if err != nil {
		t.Fatalf("create burn transaction: %v", err)
	}
	burnState, err := tokenstate.New(burnResult.RecipientPredicate, nil)
	if err != nil {
		t.Fatalf("build burn state: %v", err)
	}
	burnedToken, err := stateclient.FinishTransaction(sourceToken, burnState, burnTx)
	if err != nil {
		t.Fatalf("finish burn transaction: %v", err)
	}
	if len(burnedToken.Transfers()) != 1 {
		t.Fatalf("expected exactly one transfer (the burn) on the source token, got %d", len(burnedToken.Transfers()))
	}
	if _, ok := burnedToken.State().Predicate().(*predicate.Burn); !ok {
		t.Fatalf("source token's current predicate is not Burn after the split")
	}

	successorACoins, err := coins.New([]coins.Entry{
		{CoinId: coinU, Amount: big.NewInt(10)},
		{CoinId: coinA, Amount: big.NewInt(5)},
	})
	if err != nil {
		t.Fatalf("build successor A coin data: %v", err)
	}
	proofA, err := split.BuildProof(plan, sourceTokenId, tokenIdA, []ids.CoinId{coinU, coinA})
	if err != nil {
		t.Fatalf("build successor A split proof: %v", err)
	}
	if err := proofA.Verify(tokenIdA, successorACoins, burnResult.RecipientPredicate.BurnReason()); err != nil {
		t.Fatalf("successor A split proof did not verify: %v", err)
	}
	if got := successorACoins.Amount(coinU); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("successor A coin u amount = %s, want 10", got)
	}
	if got := successorACoins.Amount(coinA); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("successor A coin a amount = %s, want 5", got)
	}

	successorBCoins, err := coins.New([]coins.Entry{
		{CoinId: coinA, Amount: big.NewInt(15)},
	})
	if err != nil {
		t.Fatalf("build successor B coin data: %v", err)
	}
	proofB, err := split.BuildProof(plan, sourceTokenId, tokenIdB, []ids.CoinId{coinA})
	if err != nil {
		t.Fatalf("build successor B split proof: %v", err)
	}
	if err := proofB.Verify(tokenIdB, successorBCoins, burnResult.RecipientPredicate.BurnReason()); err != nil {
		t.Fatalf("successor B split proof did not verify: %v", err)
	}

	// Conservation: for every coin id, the successors' amounts sum back to
	// the source's original amount.
	total := new(big.Int).Add(successorACoins.Amount(coinA), successorBCoins.Amount(coinA))
	if total.Cmp(sourceCoins.Amount(coinA)) != 0 {
		t.Fatalf("coin a does not conserve: successors sum to %s, source had %s", total, sourceCoins.Amount(coinA))
	}
	if got := successorACoins.Amount(coinU); got.Cmp(sourceCoins.Amount(coinU)) != 0 {
		t.Fatalf("coin u does not conserve: successor has %s, source had %s", got, sourceCoins.Amount(coinU))
	}
}

// Scenario 5: a successor claiming more of a coin than the split plan
// allocated it must fail §4.8(d) conservation verification (§8.5).
func TestScenario5_SplitConservationViolationRejected(t *testing.T) {
	coinA := ids.NewCoinId([]byte("a"))
	sourceTokenId := ids.NewTokenId(bytes.Repeat([]byte{0x20}, 32))
	tokenIdB := ids.NewTokenId(bytes.Repeat([]byte{0x21}, 32))

	plan, err := split.BuildPlan([]split.Allocation{
		{TokenId: tokenIdB, Coins: []coins.Entry{{CoinId: coinA, Amount: big.NewInt(15)}}},
	})
	if err != nil {
		t.Fatalf("build split plan: %v", err)
	}

	proofB, err := split.BuildProof(plan, sourceTokenId, tokenIdB, []ids.CoinId{coinA})
	if err != nil {
		t.Fatalf("build successor B split proof: %v", err)
	}

	// The mint itself claims 16 of coin "a", though the split plan only
	// ever allocated tokenIdB 15 — a forged over-mint.
	overclaimedCoins, err := coins.New([]coins.Entry{{CoinId: coinA, Amount: big.NewInt(16)}})
	if err != nil {
		t.Fatalf("build overclaimed coin data: %v", err)
	}

	err = proofB.Verify(tokenIdB, overclaimedCoins, plan.BurnReason)
	if err == nil {
		t.Fatalf("expected the conservation violation to be rejected")
	}
	if !strings.Contains(err.Error(), "amount mismatch") {
		t.Fatalf("expected an amount mismatch error, got: %v", err)
	}
}

// Scenario 6: flipping the last hex nibble of a DirectAddress string must
// fail checksum verification on parse (§8.6).
func TestScenario6_AddressChecksumTamperRejected(t *testing.T) {
	pred, err := predicate.NewMasked(seedTokenId, bytes.Repeat([]byte{0x02}, 33), constants.SigAlgoSecp256k1, constants.HashAlgoSHA256, bytes.Repeat([]byte{0x04}, 32))
	if err != nil {
		t.Fatalf("build predicate: %v", err)
	}
	addr, err := address.NewDirect(pred.Reference()).String()
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}

	tampered := []byte(addr)
	last := tampered[len(tampered)-1]
	if last == 'f' {
		tampered[len(tampered)-1] = 'e'
	} else {
		tampered[len(tampered)-1] = 'f'
	}

	if _, err := address.ParseDirect(string(tampered)); err == nil {
		t.Fatalf("expected a tampered checksum to be rejected")
	}
}
