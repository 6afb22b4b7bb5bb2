// Copyright 2026 Unicity Network

package factory

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/unicitynetwork/token-engine/pkg/address"
	"github.com/unicitynetwork/token-engine/pkg/aggregator"
	"github.com/unicitynetwork/token-engine/pkg/coins"
	"github.com/unicitynetwork/token-engine/pkg/constants"
	"github.com/unicitynetwork/token-engine/pkg/ids"
	"github.com/unicitynetwork/token-engine/pkg/inclusion"
	"github.com/unicitynetwork/token-engine/pkg/ledger"
	"github.com/unicitynetwork/token-engine/pkg/predicate"
	"github.com/unicitynetwork/token-engine/pkg/signing"
	"github.com/unicitynetwork/token-engine/pkg/stateclient"
	"github.com/unicitynetwork/token-engine/pkg/tokenstate"
	"github.com/unicitynetwork/token-engine/pkg/txdata"
)

func wireInclusionProof(p *inclusion.Proof) ledger.WireInclusionProof {
	w := ledger.WireInclusionProof{MerklePath: ledger.FromSMTProof(p.MerklePath)}
	if p.Authenticator != nil {
		a := ledger.FromAuthenticator(*p.Authenticator)
		w.Authenticator = &a
	}
	if p.TransactionHash != nil {
		s := p.TransactionHash.Hex()
		w.TransactionHash = &s
	}
	return w
}

func wireState(t *testing.T, pred predicate.Predicate) ledger.WireState {
	t.Helper()
	predJSON, err := json.Marshal(pred)
	if err != nil {
		t.Fatalf("marshal predicate: %v", err)
	}
	return ledger.WireState{Predicate: predJSON}
}

// buildHistory mints a token to an Unmasked owner and transfers it on to a
// Masked receiver, returning the raw .txf bytes for the resulting history
// plus the receiver's predicate, for tests to assert against.
func buildHistory(t *testing.T) ([]byte, *predicate.Masked) {
	t.Helper()
	ctx := context.Background()

	tokenId := ids.NewTokenId(bytes.Repeat([]byte{0xAA}, 32))
	tokenType := ids.NewTokenType(bytes.Repeat([]byte{0xBB}, 32))
	payload := []byte("hello")

	coinData, err := coins.New([]coins.Entry{
		{CoinId: ids.NewCoinId(bytes.Repeat([]byte{0x01}, 32)), Amount: big.NewInt(10)},
		{CoinId: ids.NewCoinId(bytes.Repeat([]byte{0x02}, 32)), Amount: big.NewInt(20)},
	})
	if err != nil {
		t.Fatalf("build coin data: %v", err)
	}

	ownerKp, err := signing.FromSecret([]byte("secret"))
	if err != nil {
		t.Fatalf("derive owner key: %v", err)
	}
	ownerNonceSalt := bytes.Repeat([]byte{0x03}, 32)
	ownerPred, err := predicate.NewUnmasked(ownerKp, tokenId, tokenType, constants.HashAlgoSHA256, ownerNonceSalt)
	if err != nil {
		t.Fatalf("build owner predicate: %v", err)
	}
	ownerAddr, err := address.NewDirect(ownerPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive owner address: %v", err)
	}

	agg := aggregator.NewInMemory()
	client := stateclient.New(agg)

	mintSalt := bytes.Repeat([]byte{0x05}, 32)
	mintCommitment, err := client.SubmitMintTransaction(ctx, ownerAddr, tokenId, tokenType, payload, coinData, mintSalt, nil, nil)
	if err != nil {
		t.Fatalf("submit mint: %v", err)
	}
	mintProof, err := agg.GetInclusionProof(ctx, mintCommitment.RequestId)
	if err != nil {
		t.Fatalf("get mint inclusion proof: %v", err)
	}

	initialState, err := tokenstate.New(ownerPred, nil)
	if err != nil {
		t.Fatalf("build initial state: %v", err)
	}

	receiverKp, err := signing.FromSecret([]byte("receiver-secret"))
	if err != nil {
		t.Fatalf("derive receiver key: %v", err)
	}
	receiverNonce := bytes.Repeat([]byte{0x04}, 32)
	receiverPred, err := predicate.NewMasked(tokenId, receiverKp.PublicKey(), constants.SigAlgoSecp256k1, constants.HashAlgoSHA256, receiverNonce)
	if err != nil {
		t.Fatalf("build receiver predicate: %v", err)
	}
	receiverAddr, err := address.NewDirect(receiverPred.Reference()).String()
	if err != nil {
		t.Fatalf("derive receiver address: %v", err)
	}

	transferSalt := bytes.Repeat([]byte{0x06}, 32)
	transferData, err := txdata.NewTransaction(initialState, receiverAddr, transferSalt, nil, nil, nil)
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

	wireMint := ledger.WireMintData{
		SourceState:    mintCommitment.RequestId.Imprint().Hex(),
		Recipient:      ownerAddr,
		Salt:           hex.EncodeToString(mintSalt),
		InclusionProof: wireInclusionProof(mintProof),
	}
	wireTransfer := ledger.WireTransferData{
		SourceState:    wireState(t, ownerPred),
		Recipient:      receiverAddr,
		Salt:           hex.EncodeToString(transferSalt),
		InclusionProof: wireInclusionProof(transferProof),
	}
	txs := []ledger.WireTransaction{
		{Kind: "MINT", Mint: &wireMint},
		{Kind: "TRANSFER", Transfer: &wireTransfer},
	}
	txsJSON, err := json.Marshal(txs)
	if err != nil {
		t.Fatalf("marshal transactions: %v", err)
	}

	coinsJSON, err := coinData.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal coins: %v", err)
	}
	stateJSON, err := json.Marshal(wireState(t, receiverPred))
	if err != nil {
		t.Fatalf("marshal final state: %v", err)
	}

	env := ledger.Envelope{
		Version:      constants.TokenVersion,
		Id:           tokenId.Hex(),
		Type:         tokenType.Hex(),
		Data:         hex.EncodeToString(payload),
		Coins:        coinsJSON,
		State:        stateJSON,
		Transactions: txsJSON,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw, receiverPred
}

func TestImportRoundTripsMintAndTransfer(t *testing.T) {
	raw, receiverPred := buildHistory(t)

	tok, err := Import(raw, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if !tok.State().Predicate().Hash().Equal(receiverPred.Hash()) {
		t.Fatalf("final state predicate does not match the receiver's")
	}
	if len(tok.Transfers()) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(tok.Transfers()))
	}
	if tok.CoinData().Len() != 2 {
		t.Fatalf("expected 2 coin classes, got %d", tok.CoinData().Len())
	}
}

func TestImportRejectsTamperedRecipient(t *testing.T) {
	raw, _ := buildHistory(t)

	var env ledger.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	var txs []ledger.WireTransaction
	if err := json.Unmarshal(env.Transactions, &txs); err != nil {
		t.Fatalf("unmarshal transactions: %v", err)
	}
	txs[1].Transfer.Recipient = "DIRECT://" + hex.EncodeToString(bytes.Repeat([]byte{0xFF}, 36))
	txsJSON, err := json.Marshal(txs)
	if err != nil {
		t.Fatalf("marshal transactions: %v", err)
	}
	env.Transactions = txsJSON
	tampered, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	if _, err := Import(tampered, nil); err == nil {
		t.Fatalf("expected tampered recipient to fail import")
	}
}

func TestImportRejectsVersionMismatch(t *testing.T) {
	raw, _ := buildHistory(t)

	var env ledger.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	env.Version = "1.0"
	tampered, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	_, err = Import(tampered, nil)
	if err == nil {
		t.Fatalf("expected version mismatch to fail import")
	}
}
