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
	"testing"

	"github.com/aka2910/netsim/common"
)

func TestBlockTreeInsertAndOrphan(t *testing.T) {
	g := NewGenesis(1)
	tree := NewBlockTree(g)

	b1 := NewCandidate(g, 1.0, nil, common.PeerID(0))
	if _, inserted := tree.Insert(b1, 1.0); !inserted {
		t.Fatalf("inserting a block with a known parent should succeed")
	}
	if !tree.Has(b1.ID) {
		t.Fatalf("tree should know about b1 after insertion")
	}

	orphanParent := NewCandidate(g, 1.0, nil, common.PeerID(1)) // never inserted
	orphan := NewCandidate(orphanParent, 2.0, nil, common.PeerID(0))
	if _, inserted := tree.Insert(orphan, 2.0); inserted {
		t.Fatalf("inserting a block whose parent is unknown should fail")
	}
	if tree.Has(orphan.ID) {
		t.Fatalf("an orphan must not enter the tree")
	}
}

func TestBlockTreeDuplicateInsertIsNoop(t *testing.T) {
	g := NewGenesis(1)
	tree := NewBlockTree(g)
	b1 := NewCandidate(g, 1.0, nil, common.PeerID(0))
	tree.Insert(b1, 1.0)

	if _, inserted := tree.Insert(b1, 5.0); inserted {
		t.Fatalf("re-inserting an already-known block should be a no-op")
	}
	if got := len(tree.Root.Children); got != 1 {
		t.Fatalf("duplicate insert should not add a second child edge, got %d children", got)
	}
}

func TestBlockTreeUniqueIDsBijection(t *testing.T) {
	g := NewGenesis(1)
	tree := NewBlockTree(g)
	seen := map[common.BlockID]bool{g.ID: true}
	parent := g
	for i := 0; i < 5; i++ {
		b := NewCandidate(parent, float64(i+1), nil, common.PeerID(0))
		if seen[b.ID] {
			t.Fatalf("block id collision at step %d", i)
		}
		seen[b.ID] = true
		tree.Insert(b, float64(i+1))
		parent = b
	}
	if len(tree.Nodes) != len(seen) {
		t.Fatalf("blkid->Node map has %d entries, want %d (bijection with known ids)", len(tree.Nodes), len(seen))
	}
	for id := range seen {
		if !tree.Has(id) {
			t.Fatalf("tree missing node for id %s", id)
		}
	}
}
