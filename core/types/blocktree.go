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

import "github.com/aka2910/netsim/common"

// Node is a peer-local, mutable wrapper around an immutable Block: when the
// peer first accepted the block, and which children it has seen so far.
// Children are stored as block ids rather than back-pointers or child Node
// pointers, so the tree never holds a cyclic reference.
type Node struct {
	Block      *Block
	ReceiveTime float64
	Children   []common.BlockID
}

// BlockTree is one peer's view of all blocks it has validated and
// accepted, rooted at the shared genesis. Exactly one root; every non-root
// node's parent id resolves to another node in the same map.
type BlockTree struct {
	Root  *Node
	Nodes map[common.BlockID]*Node
}

// NewBlockTree seeds a tree containing only genesis, received at t=0.
func NewBlockTree(genesis *Block) *BlockTree {
	root := &Node{Block: genesis, ReceiveTime: 0}
	return &BlockTree{
		Root:  root,
		Nodes: map[common.BlockID]*Node{genesis.ID: root},
	}
}

// Insert adds b as a child of its parent node at receiveTime. It is a
// no-op (but not an error) if b is already present, and returns false if
// the parent is not yet known (the caller treats that as an orphan).
func (t *BlockTree) Insert(b *Block, receiveTime float64) (node *Node, inserted bool) {
	if existing, ok := t.Nodes[b.ID]; ok {
		return existing, false
	}
	parent, ok := t.Nodes[b.Parent.ID]
	if !ok {
		return nil, false
	}
	n := &Node{Block: b, ReceiveTime: receiveTime}
	t.Nodes[b.ID] = n
	for _, c := range parent.Children {
		if c == b.ID {
			return n, true
		}
	}
	parent.Children = append(parent.Children, b.ID)
	return n, true
}

// Has reports whether block id is already known to this tree.
func (t *BlockTree) Has(id common.BlockID) bool {
	_, ok := t.Nodes[id]
	return ok
}
