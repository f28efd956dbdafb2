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

import "testing"

func TestRoutingTableSeenRecord(t *testing.T) {
	r := newRoutingTable()
	if r.Seen(1, 100) {
		t.Fatalf("a fresh routing table should not have seen anything")
	}
	r.Record(1, 100)
	if !r.Seen(1, 100) {
		t.Fatalf("Seen should report true right after Record")
	}
	if r.Seen(2, 100) {
		t.Fatalf("Record against neighbor 1 must not mark neighbor 2 as seen")
	}
}

func TestRoutingTableEvictsByRecency(t *testing.T) {
	r := newRoutingTable()
	for i := 0; i < routingTableCapacity+10; i++ {
		r.Record(1, uint64(i))
	}
	if r.Seen(1, 0) {
		t.Fatalf("the oldest id should have been evicted once the per-neighbor LRU exceeded its capacity")
	}
	if !r.Seen(1, uint64(routingTableCapacity+9)) {
		t.Fatalf("the most recently recorded id must still be present")
	}
}
