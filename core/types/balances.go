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
	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
)

// Balances is a per-peer-id balance snapshot. Values are uint256 so
// coinbase accrual over a long-running simulation cannot silently overflow
// a machine word.
type Balances map[common.PeerID]*uint256.Int

// NewBalances seeds a zero balance for every peer 0..n-1, for constructing
// the genesis block.
func NewBalances(n int) Balances {
	b := make(Balances, n)
	for i := 0; i < n; i++ {
		b[common.PeerID(i)] = uint256.NewInt(0)
	}
	return b
}

// Copy returns an independent snapshot so mutating it never affects the
// block it was copied from (blocks are immutable once validated).
func (b Balances) Copy() Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = new(uint256.Int).Set(v)
	}
	return out
}

func (b Balances) get(id common.PeerID) *uint256.Int {
	if v, ok := b[id]; ok {
		return v
	}
	return uint256.NewInt(0)
}
