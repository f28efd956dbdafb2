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

// Package probe implements the overlay network and the per-peer
// gossip/consensus state machine: connectivity, link latency, mempool
// propagation, and block forging/adoption.
package probe

import (
	"math"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
	"github.com/aka2910/netsim/event"
)

// transactionSizeKb is the fixed wire size of a single transaction.
const transactionSizeKb = 8

// Network is the overlay graph plus link-latency oracle. It owns no peer
// state; it only routes and delays deliveries between peers registered
// with it.
type Network struct {
	sched *event.Scheduler
	peers []*Peer

	neighbors [][]common.PeerID // adjacency, peers[i].neighbors == neighbors[i]
	rho       [][]float64       // propagation delay, ms, symmetric
	capacity  [][]float64       // link capacity, Mbps, symmetric

	// meanBlockInterval is stored but never read by Network itself; each
	// peer carries its own copy for the proof-of-work delay model instead.
	meanBlockInterval float64
}

// NewNetwork builds the overlay for peers, generates connectivity, and
// precomputes per-link propagation delay and capacity. sched supplies both
// the RNG (so the whole run is reproducible from one seed) and the
// scheduler used by SendTransaction/SendBlock to defer delivery.
func NewNetwork(peers []*Peer, meanBlockInterval float64, sched *event.Scheduler) *Network {
	n := &Network{
		sched:             sched,
		peers:             peers,
		neighbors:         make([][]common.PeerID, len(peers)),
		meanBlockInterval: meanBlockInterval,
	}
	n.generateNetwork()
	n.checkGraph()
	n.initProperties()
	for i, p := range peers {
		p.attach(n, n.neighbors[i])
	}
	return n
}

// generateNetwork gives every peer 4..8 random distinct neighbors (capped
// at n-1), added symmetrically.
func (n *Network) generateNetwork() {
	rng := n.sched.Rand()
	np := len(n.peers)
	for i := range n.peers {
		k := 4 + rng.Intn(5) // uniform_int{4..8}
		if k > np-1 {
			k = np - 1
		}
		others := make([]int, 0, np-1)
		for j := 0; j < np; j++ {
			if j != i {
				others = append(others, j)
			}
		}
		rng.Shuffle(len(others), func(a, b int) { others[a], others[b] = others[b], others[a] })
		for _, j := range others[:k] {
			n.neighbors[i] = append(n.neighbors[i], common.PeerID(j))
			n.neighbors[j] = append(n.neighbors[j], common.PeerID(i))
		}
	}
}

// checkGraph runs a DFS from peer 0; if any peer is unreachable, the
// overlay is discarded and rebuilt as a 4-regular ring-with-chords graph
// (i connects to i±1, i±2 mod N), which is connected by construction for
// any n > 4.
func (n *Network) checkGraph() {
	np := len(n.peers)
	visited := make([]bool, np)
	stack := []int{0}
	visited[0] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range n.neighbors[cur] {
			if !visited[nb] {
				visited[nb] = true
				stack = append(stack, int(nb))
			}
		}
	}
	connected := true
	for _, v := range visited {
		if !v {
			connected = false
			break
		}
	}
	if connected {
		return
	}
	for i := range n.neighbors {
		n.neighbors[i] = nil
	}
	for i := 0; i < np; i++ {
		seen := map[common.PeerID]bool{}
		for _, off := range []int{-2, -1, 1, 2} {
			j := ((i+off)%np + np) % np
			id := common.PeerID(j)
			if id == common.PeerID(i) || seen[id] {
				continue
			}
			seen[id] = true
			n.neighbors[i] = append(n.neighbors[i], id)
		}
	}
}

// initProperties draws, once, a symmetric propagation delay and capacity
// class for every ordered pair.
func (n *Network) initProperties() {
	np := len(n.peers)
	n.rho = make([][]float64, np)
	n.capacity = make([][]float64, np)
	rng := n.sched.Rand()
	for i := range n.rho {
		n.rho[i] = make([]float64, np)
		n.capacity[i] = make([]float64, np)
	}
	for i := 0; i < np; i++ {
		for j := i + 1; j < np; j++ {
			rho := float64(10 + rng.Intn(491)) // uniform_int{10..500}
			n.rho[i][j] = rho
			n.rho[j][i] = rho

			cap := 5.0
			if n.peers[i].Speed == Fast && n.peers[j].Speed == Fast {
				cap = 100.0
			}
			n.capacity[i][j] = cap
			n.capacity[j][i] = cap
		}
	}
}

// queueSample draws a fresh exponential queueing delay with mean 96/c(i,j)
// ms.
func (n *Network) queueSample(i, j common.PeerID) float64 {
	mean := 96.0 / n.capacity[i][j]
	return n.sched.Rand().ExpFloat64() * mean
}

func (n *Network) latency(sender, receiver common.PeerID, sizeKb float64) float64 {
	return n.rho[sender][receiver] + sizeKb/n.capacity[sender][receiver] + n.queueSample(sender, receiver)
}

// SendTransaction schedules delivery of tx from sender to receiver after
// the link's latency, then invokes the receiver's ReceiveTransaction in a
// newly spawned process.
func (n *Network) SendTransaction(sender common.PeerID, receiver common.PeerID, tx types.Transaction) {
	delay := n.latency(sender, receiver, transactionSizeKb)
	n.sched.Spawn(func(p *event.Proc) {
		p.Timeout(delay)
		n.peers[receiver].ReceiveTransaction(sender, tx)
	})
}

// SendBlock is SendTransaction's twin for blocks, whose size scales the
// transmission-time component of latency.
func (n *Network) SendBlock(sender common.PeerID, receiver common.PeerID, b *types.Block) {
	delay := n.latency(sender, receiver, math.Max(float64(b.SizeKB), 0))
	n.sched.Spawn(func(p *event.Proc) {
		p.Timeout(delay)
		n.peers[receiver].ReceiveBlock(sender, b)
	})
}

// Neighbors returns peer id's adjacency list (used by tests and reporting).
func (n *Network) Neighbors(id common.PeerID) []common.PeerID { return n.neighbors[id] }
