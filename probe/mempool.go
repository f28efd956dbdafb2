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
	mapset "github.com/deckarep/golang-set"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
)

// Mempool is the set of transactions a peer has seen. It grows
// monotonically within a run and is never pruned by forging a block — a
// transaction embedded in the main chain is merely filtered out when
// sampling a new candidate.
//
// Membership is tracked with deckarep/golang-set; enumeration order is kept
// in a separate append-only slice because Go map/set iteration order is
// randomized per-process and sampling must be reproducible given a fixed
// scheduler seed.
type Mempool struct {
	order []types.Transaction
	ids   mapset.Set
}

// NewMempool returns an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{ids: mapset.NewThreadUnsafeSet()}
}

// Add records tx if its id hasn't been seen before, returning whether it
// was newly added.
func (m *Mempool) Add(tx types.Transaction) bool {
	if m.ids.Contains(tx.ID) {
		return false
	}
	m.ids.Add(tx.ID)
	m.order = append(m.order, tx)
	return true
}

// Has reports whether id is already in the mempool.
func (m *Mempool) Has(id common.TxID) bool { return m.ids.Contains(id) }

// Len reports how many transactions the mempool holds.
func (m *Mempool) Len() int { return len(m.order) }

// Pool returns, in insertion order, every mempool transaction whose id is
// not present in exclude — the candidate pool for a new block, with
// whatever is already committed on the chain filtered out.
func (m *Mempool) Pool(exclude map[common.TxID]struct{}) []types.Transaction {
	out := make([]types.Transaction, 0, len(m.order))
	for _, tx := range m.order {
		if _, skip := exclude[tx.ID]; !skip {
			out = append(out, tx)
		}
	}
	return out
}
