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

package miner

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
)

func TestChainCacheWalksToGenesis(t *testing.T) {
	g := types.NewGenesis(2)
	tx1 := types.NewTransaction(0, 1, uint256.NewInt(1), 1.0, 1)
	b1 := types.NewCandidate(g, 1.0, []types.Transaction{tx1}, common.PeerID(0))
	if err := b1.Validate(); err != nil {
		t.Fatalf("b1.Validate() = %v, want nil", err)
	}
	tx2 := types.NewTransaction(1, 0, uint256.NewInt(1), 2.0, 2)
	b2 := types.NewCandidate(b1, 2.0, []types.Transaction{tx2}, common.PeerID(1))
	if err := b2.Validate(); err != nil {
		t.Fatalf("b2.Validate() = %v, want nil", err)
	}

	c := NewChainCache(DefaultCacheBytes)
	set := c.TxSet(b2)
	if len(set) != 2 {
		t.Fatalf("TxSet(b2) has %d entries, want 2 (tx1 and tx2)", len(set))
	}
	if _, ok := set[tx1.ID]; !ok {
		t.Fatalf("TxSet(b2) missing tx1 from the grandparent block")
	}
	if _, ok := set[tx2.ID]; !ok {
		t.Fatalf("TxSet(b2) missing tx2 from b2 itself")
	}
}

func TestChainCacheMemoizesPerTip(t *testing.T) {
	g := types.NewGenesis(1)
	b1 := types.NewCandidate(g, 1.0, nil, common.PeerID(0))
	if err := b1.Validate(); err != nil {
		t.Fatalf("b1.Validate() = %v, want nil", err)
	}

	c := NewChainCache(DefaultCacheBytes)
	first := c.TxSet(b1)
	second := c.TxSet(b1)
	if len(first) != len(second) {
		t.Fatalf("repeated TxSet(b1) calls diverged: %d vs %d entries", len(first), len(second))
	}
}

func TestChainCacheDistinguishesTips(t *testing.T) {
	g := types.NewGenesis(2)
	tx := types.NewTransaction(0, 1, uint256.NewInt(1), 1.0, 1)
	withTx := types.NewCandidate(g, 1.0, []types.Transaction{tx}, common.PeerID(0))
	if err := withTx.Validate(); err != nil {
		t.Fatalf("withTx.Validate() = %v, want nil", err)
	}
	empty := types.NewCandidate(g, 1.0, nil, common.PeerID(1))
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty.Validate() = %v, want nil", err)
	}

	c := NewChainCache(DefaultCacheBytes)
	if len(c.TxSet(withTx)) == len(c.TxSet(empty)) {
		t.Fatalf("distinct tips must not share a memoized transaction set")
	}
}
