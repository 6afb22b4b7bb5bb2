// Copyright 2026 Unicity Network

// Package coins implements CoinData: a token's fungible coin-class
// balances, carried as an ordered list of (CoinId, amount) pairs and
// rendered on the wire as `[coinIdHex, amountDecimalString]` arrays (§6).
package coins

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/unicitynetwork/token-engine/pkg/codec"
	"github.com/unicitynetwork/token-engine/pkg/ids"
)

// Entry is one coin class's balance.
type Entry struct {
	CoinId ids.CoinId
	Amount *big.Int
}

// Data is an immutable, canonically ordered set of coin balances. Ordering
// is always ascending by CoinId bytes, so two Data values built from the
// same multiset hash identically regardless of construction order.
type Data struct {
	entries []Entry
}

// New builds Data from entries, sorting defensively and rejecting
// duplicate or negative-amount coin ids.
func New(entries []Entry) (*Data, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := e.CoinId.Hex()
		if seen[key] {
			return nil, fmt.Errorf("coins: duplicate coin id %s", key)
		}
		seen[key] = true
		if e.Amount == nil || e.Amount.Sign() < 0 {
			return nil, fmt.Errorf("coins: coin %s has invalid amount", key)
		}
		out = append(out, Entry{CoinId: e.CoinId, Amount: new(big.Int).Set(e.Amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoinId.Hex() < out[j].CoinId.Hex() })
	return &Data{entries: out}, nil
}

// Entries returns a defensive copy of the ordered entries.
func (d *Data) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = Entry{CoinId: e.CoinId, Amount: new(big.Int).Set(e.Amount)}
	}
	return out
}

// Amount returns the balance for coinId, or nil if the coin class is absent.
func (d *Data) Amount(coinId ids.CoinId) *big.Int {
	for _, e := range d.entries {
		if e.CoinId.Equal(coinId) {
			return new(big.Int).Set(e.Amount)
		}
	}
	return nil
}

// Len returns the number of distinct coin classes.
func (d *Data) Len() int { return len(d.entries) }

// cborEntry is the [coinIdHex, amountDecimalString] wire tuple used both for
// CBOR hashing input and the JSON ledger form (§6) — the spec specifies the
// same two-element array shape for both.
type cborEntry struct {
	_         struct{} `cbor:",toarray"`
	CoinIdHex string
	Amount    string
}

// MarshalCBOR encodes Data as an array of [coinIdHex, amountDecimalString].
func (d *Data) MarshalCBOR() ([]byte, error) {
	rows := make([]cborEntry, len(d.entries))
	for i, e := range d.entries {
		rows[i] = cborEntry{CoinIdHex: e.CoinId.Hex(), Amount: e.Amount.String()}
	}
	return codec.Marshal(rows)
}

// UnmarshalCBOR decodes Data from its array-of-pairs wire form.
func (d *Data) UnmarshalCBOR(data []byte) error {
	var rows []cborEntry
	if err := codec.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("coins: unmarshal CBOR: %w", err)
	}
	return d.fromRows(rows)
}

// MarshalJSON renders Data as `[[coinIdHex, amountDecimalString], ...]`.
func (d *Data) MarshalJSON() ([]byte, error) {
	rows := make([][2]string, len(d.entries))
	for i, e := range d.entries {
		rows[i] = [2]string{e.CoinId.Hex(), e.Amount.String()}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON parses Data from its `[[coinIdHex, amountDecimalString], ...]` form.
func (d *Data) UnmarshalJSON(data []byte) error {
	var rows [][2]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("coins: unmarshal JSON: %w", err)
	}
	cborRows := make([]cborEntry, len(rows))
	for i, r := range rows {
		cborRows[i] = cborEntry{CoinIdHex: r[0], Amount: r[1]}
	}
	return d.fromRows(cborRows)
}

func (d *Data) fromRows(rows []cborEntry) error {
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		coinId, err := ids.CoinIdFromHex(r.CoinIdHex)
		if err != nil {
			return err
		}
		amount, ok := new(big.Int).SetString(r.Amount, 10)
		if !ok {
			return fmt.Errorf("coins: invalid amount %q", r.Amount)
		}
		entries[i] = Entry{CoinId: coinId, Amount: amount}
	}
	built, err := New(entries)
	if err != nil {
		return err
	}
	d.entries = built.entries
	return nil
}
