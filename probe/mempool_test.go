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

package probe

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
)

func TestMempoolAddIsIdempotent(t *testing.T) {
	m := NewMempool()
	tx := types.NewTransaction(0, 1, uint256.NewInt(1), 1.0, 1)
	if !m.Add(tx) {
		t.Fatalf("first Add should report newly added")
	}
	if m.Add(tx) {
		t.Fatalf("second Add of the same tx should report no-op")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after a duplicate add", m.Len())
	}
}

func TestMempoolPoolExcludesChainTxs(t *testing.T) {
	m := NewMempool()
	t1 := types.NewTransaction(0, 1, uint256.NewInt(1), 1.0, 1)
	t2 := types.NewTransaction(0, 1, uint256.NewInt(2), 1.0, 2)
	m.Add(t1)
	m.Add(t2)

	exclude := map[common.TxID]struct{}{t1.ID: {}}
	pool := m.Pool(exclude)
	if len(pool) != 1 || pool[0].ID != t2.ID {
		t.Fatalf("Pool() = %v, want only t2", pool)
	}
}

func TestMempoolPoolPreservesInsertionOrder(t *testing.T) {
	m := NewMempool()
	var txs []types.Transaction
	for i := uint64(0); i < 5; i++ {
		tx := types.NewTransaction(0, 1, uint256.NewInt(1), 1.0, i)
		txs = append(txs, tx)
		m.Add(tx)
	}
	pool := m.Pool(nil)
	for i, tx := range pool {
		if tx.ID != txs[i].ID {
			t.Fatalf("Pool() order diverged at index %d: this must stay deterministic given a fixed scheduler seed", i)
		}
	}
}
