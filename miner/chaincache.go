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

// Package miner holds the block-forging support code shared by every
// peer's consensus loop: the memoized "all transactions on this chain"
// walk. The forging loop itself lives on probe.Peer; this package exists
// so the memoization doesn't need its own copy in every peer.
package miner

import (
	"encoding/binary"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
)

// DefaultCacheBytes sizes the per-peer memoization cache. A few thousand
// blocks' worth of transaction-id sets fits comfortably within this.
const DefaultCacheBytes = 4 * 1024 * 1024

// ChainCache memoizes, per tip block id, the set of transaction ids on the
// path from that tip to genesis. The walk is iterative rather than
// recursive so a very long chain can't blow the stack, and memoized since
// every forging attempt recomputes the same set for an unchanged tip.
type ChainCache struct {
	cache *fastcache.Cache
}

// NewChainCache returns an empty cache bounded at maxBytes.
func NewChainCache(maxBytes int) *ChainCache {
	return &ChainCache{cache: fastcache.New(maxBytes)}
}

// TxSet returns the set of transaction ids along tip's chain to genesis,
// computing it by an iterative walk on a cache miss and memoizing the
// result under tip's block id. fastcache.Set does not store entries of
// 64 KB or more, so a chain holding more than about 8,000 transactions is
// not memoized and is walked again on every call.
func (c *ChainCache) TxSet(tip *types.Block) map[common.TxID]struct{} {
	key := blockKey(tip.ID)
	if buf, ok := c.cache.HasGet(nil, key); ok {
		return decodeTxSet(buf)
	}
	set := make(map[common.TxID]struct{})
	for b := tip; b != nil; b = b.Parent {
		for id := range b.TxSet() {
			set[id] = struct{}{}
		}
	}
	c.cache.Set(key, encodeTxSet(set))
	return set
}

func blockKey(id common.BlockID) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

func encodeTxSet(set map[common.TxID]struct{}) []byte {
	buf := make([]byte, 0, 8*len(set))
	for id := range set {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(id))
		buf = append(buf, b[:]...)
	}
	return buf
}

func decodeTxSet(buf []byte) map[common.TxID]struct{} {
	set := make(map[common.TxID]struct{}, len(buf)/8)
	for i := 0; i+8 <= len(buf); i += 8 {
		set[common.TxID(binary.BigEndian.Uint64(buf[i:i+8]))] = struct{}{}
	}
	return set
}
