// Copyright 2024 The netsim Authors
// This file is part of netsim.
//
// netsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// netsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with netsim. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
)

func TestGenesisBoundary(t *testing.T) {
	g := NewGenesis(3)
	if g.Height != 0 {
		t.Fatalf("genesis height = %d, want 0", g.Height)
	}
	if g.Parent != nil {
		t.Fatalf("genesis parent should be nil")
	}
	if g.Miner != common.NoMiner {
		t.Fatalf("genesis miner = %d, want NoMiner", g.Miner)
	}
	for i := 0; i < 3; i++ {
		if bal := g.Balances[common.PeerID(i)]; bal.Sign() != 0 {
			t.Fatalf("genesis balance for peer %d = %s, want 0", i, bal)
		}
	}
}

func TestValidateZeroTxAlwaysValid(t *testing.T) {
	g := NewGenesis(2)
	b := NewCandidate(g, 1.0, nil, common.PeerID(0))
	if err := b.Validate(); err != nil {
		t.Fatalf("empty block should always validate: %v", err)
	}
	if got, want := b.Balances[common.PeerID(0)].Uint64(), uint64(MiningReward); got != want {
		t.Fatalf("miner balance = %d, want %d", got, want)
	}
}

func TestSizeKBInvariant(t *testing.T) {
	g := NewGenesis(2)
	txs := []Transaction{
		NewTransaction(0, 1, uint256.NewInt(1), 1.0, 1),
		NewTransaction(0, 1, uint256.NewInt(1), 1.0, 2),
	}
	b := NewCandidate(g, 1.0, txs, common.PeerID(0))
	if got, want := b.SizeKB, 8*(len(txs)+1); got != want {
		t.Fatalf("size_kb = %d, want %d", got, want)
	}
}

func TestValidateRejectsInsufficientFunds(t *testing.T) {
	g := NewGenesis(2)
	txs := []Transaction{NewTransaction(0, 1, uint256.NewInt(5), 1.0, 1)}
	b := NewCandidate(g, 1.0, txs, common.PeerID(1))
	err := b.Validate()
	if !errors.Is(err, common.ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
}

// TestValidateOrderMatters: a block whose first transaction would only be
// affordable after a later transaction's proceeds arrive must still be
// rejected — intra-block order is strict, not a multiset check.
func TestValidateOrderMatters(t *testing.T) {
	g := NewGenesis(3)
	funded := NewCandidate(g, 1.0, nil, common.PeerID(1)) // credits peer 1 with +50 reward
	if err := funded.Validate(); err != nil {
		t.Fatalf("setup block should validate: %v", err)
	}

	txs := []Transaction{
		NewTransaction(1, 2, uint256.NewInt(40), 2.0, 1), // peer 1 spends before...
		NewTransaction(2, 1, uint256.NewInt(40), 2.0, 2), // ...peer 2 sends it back
	}
	b := NewCandidate(funded, 2.0, txs, common.PeerID(0))
	if err := b.Validate(); err != nil {
		t.Fatalf("peer 1 has the reward already, first tx should succeed: %v", err)
	}

	// Reverse the same pair: peer 2 cannot spend 40 it doesn't have yet,
	// even though peer 1's later transaction would fund it.
	txs2 := []Transaction{
		NewTransaction(2, 1, uint256.NewInt(40), 2.0, 3),
		NewTransaction(1, 2, uint256.NewInt(40), 2.0, 4),
	}
	b2 := NewCandidate(funded, 2.0, txs2, common.PeerID(0))
	if err := b2.Validate(); !errors.Is(err, common.ErrInvalidTransaction) {
		t.Fatalf("expected rejection when sender lacks funds at its position in Txs order, got %v", err)
	}
}

func TestValidateIdempotent(t *testing.T) {
	g := NewGenesis(2)
	txs := []Transaction{NewTransaction(0, 1, uint256.NewInt(3), 1.0, 1)}
	b := NewCandidate(g, 1.0, txs, common.PeerID(0))
	if err := b.Validate(); err != nil {
		t.Fatalf("first validate failed: %v", err)
	}
	first := b.Balances[common.PeerID(1)].Clone()
	if err := b.Validate(); err != nil {
		t.Fatalf("second validate failed: %v", err)
	}
	if !b.Balances[common.PeerID(1)].Eq(first) {
		t.Fatalf("re-validating changed the balances map")
	}
}

func TestSelfTransferPermitted(t *testing.T) {
	g := NewGenesis(2)
	funded := NewCandidate(g, 1.0, nil, common.PeerID(0)) // gives peer 0 the +50 reward
	if err := funded.Validate(); err != nil {
		t.Fatalf("setup block should validate: %v", err)
	}
	txs := []Transaction{NewTransaction(0, 0, uint256.NewInt(1), 2.0, 1)}
	b := NewCandidate(funded, 2.0, txs, common.PeerID(1))
	if err := b.Validate(); err != nil {
		t.Fatalf("self-transfer should be permitted: %v", err)
	}
	if got, want := b.Balances[common.PeerID(0)].Uint64(), uint64(MiningReward); got != want {
		t.Fatalf("self-transfer should leave sender's balance unchanged net, got %d want %d", got, want)
	}
}
