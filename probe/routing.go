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
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/bloomfilter/v2"

	"github.com/aka2910/netsim/common"
)

// routingTableCapacity bounds how many ids this peer remembers having
// sent-to-or-received-from any single neighbor, via a per-neighbor LRU
// that evicts the oldest entry once full.
const routingTableCapacity = 4096

// bloomM is the number of entries the per-peer Bloom filter is sized for,
// at a 0.1% false-positive rate; bloomfilter.NewOptimal derives the hash
// count itself, so bloomK is not used to build it. The filter is a probabilistic
// fast-reject in front of the authoritative LRU, not a source of truth —
// false positives only cost a redundant LRU lookup, never a false
// suppression (the LRU is always consulted before the route is trusted).
const (
	bloomM = 1 << 20
	bloomK = 4
)

// routingTable remembers, per neighbor, which item ids have already been
// sent to or received from it, so gossip never loops the same item back.
type routingTable struct {
	bloom       *bloomfilter.Filter
	perNeighbor map[common.PeerID]*lru.Cache
}

func newRoutingTable() *routingTable {
	f, err := bloomfilter.NewOptimal(bloomM, 0.001)
	if err != nil {
		// NewOptimal only fails on a nonsensical (n, p); our constants are
		// fixed and valid, so this can only be reached by a programming
		// error.
		panic(err)
	}
	return &routingTable{bloom: f, perNeighbor: make(map[common.PeerID]*lru.Cache)}
}

func bloomKey(neighbor common.PeerID, id uint64) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	buf[0] = byte(neighbor)
	buf[1] = byte(neighbor >> 8)
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(id >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}

// Seen reports whether id has already been recorded for neighbor.
func (r *routingTable) Seen(neighbor common.PeerID, id uint64) bool {
	if !r.bloom.ContainsHash(bloomKey(neighbor, id)) {
		return false
	}
	c, ok := r.perNeighbor[neighbor]
	if !ok {
		return false
	}
	_, ok = c.Get(id)
	return ok
}

// Record marks id as sent-to-or-received-from neighbor.
func (r *routingTable) Record(neighbor common.PeerID, id uint64) {
	c, ok := r.perNeighbor[neighbor]
	if !ok {
		c, _ = lru.New(routingTableCapacity)
		r.perNeighbor[neighbor] = c
	}
	c.Add(id, struct{}{})
	r.bloom.AddHash(bloomKey(neighbor, id))
}
