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
	"fmt"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
	"github.com/aka2910/netsim/event"
	"github.com/aka2910/netsim/internal/log"
	"github.com/aka2910/netsim/miner"
)

// Speed classifies a peer's link capacity.
type Speed int

const (
	Slow Speed = iota
	Fast
)

// CPUClass classifies a peer's hashing power tier.
type CPUClass int

const (
	LowCPU CPUClass = iota
	HighCPU
)

// Peer is the per-node state machine: mempool, routing tables, block tree,
// longest-chain tip, and the gossip/forging processes that mutate them.
// Everything here is private to the peer and mutated only between
// scheduler suspension points, so none of it needs a lock.
type Peer struct {
	ID           common.PeerID
	Speed        Speed
	CPU          CPUClass
	HashingPower float64
	meanI        float64 // I: mean block interarrival, drives the PoW delay

	neighbors []common.PeerID
	net       *Network
	sched     *event.Scheduler
	log       *log.Logger

	mempool *Mempool
	rtx     *routingTable
	rblk    *routingTable

	tree *types.BlockTree
	tip  *types.Block

	chainCache *miner.ChainCache

	numGenerated int
	txSeq        uint64
}

// NewPeer builds a peer rooted at genesis, with an empty mempool and
// routing tables. It still needs attach (called by NewNetwork) before any
// gossip can flow.
func NewPeer(id common.PeerID, speed Speed, cpu CPUClass, hashingPower, meanI float64, genesis *types.Block, sched *event.Scheduler) *Peer {
	return &Peer{
		ID:           id,
		Speed:        speed,
		CPU:          cpu,
		HashingPower: hashingPower,
		meanI:        meanI,
		sched:        sched,
		log:          log.With("peer", int(id)),
		mempool:      NewMempool(),
		rtx:          newRoutingTable(),
		rblk:         newRoutingTable(),
		tree:         types.NewBlockTree(genesis),
		tip:          genesis,
		chainCache:   miner.NewChainCache(miner.DefaultCacheBytes),
	}
}

func (p *Peer) attach(net *Network, neighbors []common.PeerID) {
	p.net = net
	p.neighbors = neighbors
}

// Tip returns the peer's current longest-chain pointer.
func (p *Peer) Tip() *types.Block { return p.tip }

// Tree returns the peer's block tree.
func (p *Peer) Tree() *types.BlockTree { return p.tree }

// NumGenerated is how many blocks this peer has forged and committed to its
// own tree, whether or not they were later superseded. Candidates discarded
// because the tip moved during the proof-of-work delay are not counted.
func (p *Peer) NumGenerated() int { return p.numGenerated }

// MainChainContrib counts this peer's own blocks on the path tip->genesis.
func (p *Peer) MainChainContrib() int {
	n := 0
	for b := p.tip; b != nil; b = b.Parent {
		if b.Miner == p.ID {
			n++
		}
	}
	return n
}

// GenerateTransactions is the infinite transaction-generator process:
// await Exp(1/Ttx), pick a random other peer, emit a 1..5 coin transfer,
// and gossip it. It never adds the transaction to its own mempool — a
// freshly generated transaction only enters this peer's own pool if
// gossip loops it back. Routing-table suppression does not rule that out:
// a neighbor that receives the transaction over a relay path before the
// direct copy arrives has not yet recorded this peer, and forwards it back.
//
// A lone peer (len(peerIDs) == 1) has no one to send to; the process still
// waits out every interval, it just never has a transaction to emit.
func (p *Peer) GenerateTransactions(meanTtx float64, peerIDs []common.PeerID, proc *event.Proc) {
	if len(peerIDs) <= 1 {
		for {
			proc.Timeout(proc.Rand().ExpFloat64() * meanTtx)
		}
	}
	for {
		proc.Timeout(proc.Rand().ExpFloat64() * meanTtx)

		receiver := p.ID
		for receiver == p.ID {
			receiver = peerIDs[proc.Rand().Intn(len(peerIDs))]
		}
		amount := uint256.NewInt(uint64(1 + proc.Rand().Intn(5)))
		p.txSeq++
		tx := types.NewTransaction(p.ID, receiver, amount, proc.Now(), p.txSeq)
		p.ForwardTransaction(tx)
	}
}

// ForwardTransaction gossips tx to every neighbor that hasn't already sent
// it to, or received it from, this peer.
func (p *Peer) ForwardTransaction(tx types.Transaction) {
	for _, n := range p.neighbors {
		if p.rtx.Seen(n, uint64(tx.ID)) {
			continue
		}
		p.rtx.Record(n, uint64(tx.ID))
		p.net.SendTransaction(p.ID, n, tx)
	}
}

// ReceiveTransaction adds tx to the mempool (a no-op if already present),
// records it against sender so it is never reflected back, and forwards it
// onward.
func (p *Peer) ReceiveTransaction(sender common.PeerID, tx types.Transaction) {
	p.mempool.Add(tx)
	p.rtx.Record(sender, uint64(tx.ID))
	p.ForwardTransaction(tx)
}

// BroadcastBlock gossips b to every neighbor that hasn't already sent it
// to, or received it from, this peer.
func (p *Peer) BroadcastBlock(b *types.Block) {
	for _, n := range p.neighbors {
		if p.rblk.Seen(n, uint64(b.ID)) {
			continue
		}
		p.rblk.Record(n, uint64(b.ID))
		p.net.SendBlock(p.ID, n, b)
	}
}

// ReceiveBlock validates an incoming block, inserts it into the tree if its
// parent is known (dropping it as an orphan otherwise), possibly switches
// the tip, gossips it onward, and possibly spawns a new forging attempt.
func (p *Peer) ReceiveBlock(sender common.PeerID, b *types.Block) {
	if p.tree.Has(b.ID) {
		// Already known (arrived via another path); still worth
		// re-gossiping in case some neighbor hasn't seen it, but no tree
		// or tip work to redo.
		p.BroadcastBlock(b)
		return
	}
	if b.Balances == nil {
		if err := b.Validate(); err != nil {
			p.log.Debug("dropping invalid block", "block", b.ID, "from", sender, "err", fmt.Errorf("%w: %v", common.ErrInvalidBlock, err))
			return
		}
	}
	if !p.tree.Has(b.Parent.ID) {
		p.log.Debug("dropping orphan block", "block", b.ID, "parent", b.Parent.ID, "from", sender, "err", common.ErrOrphanBlock)
		return
	}
	p.tree.Insert(b, p.sched.Now())

	toCreate := false
	switch {
	case b.Height > p.tip.Height:
		p.tip = b
		toCreate = true
	case b.Height == p.tip.Height && b.Timestamp < p.tip.Timestamp:
		p.tip = b
	case b.Height == p.tip.Height && b.Timestamp == p.tip.Timestamp && b.ID < p.tip.ID:
		// Height and timestamp alone can still tie; fall back to the
		// block id so the tip is a pure function of the set of blocks
		// received, independent of arrival order.
		p.tip = b
	}

	p.BroadcastBlock(b)
	if toCreate {
		p.sched.Spawn(func(proc *event.Proc) { p.CreateBlock(proc) })
	}
}

// CreateBlock is the forging loop. It runs forever: every pass snapshots
// the current tip, samples a candidate from the mempool, and after a
// synthetic proof-of-work delay either commits (if nothing beat it to the
// tip) or discards and tries again. Multiple concurrent instances of this
// loop can be running for the same peer at once — one seeded at startup
// plus one freshly spawned every time ReceiveBlock advances the tip — so
// an active peer can have several forging attempts racing each other, each
// against the tip it snapshotted at the start of its current pass.
func (p *Peer) CreateBlock(proc *event.Proc) {
	for {
		l0 := p.tip
		exclude := p.chainCache.TxSet(l0)
		pool := p.mempool.Pool(exclude)

		maxK := len(pool)
		if maxK > 999 {
			maxK = 999
		}
		k := 0
		if maxK > 0 {
			k = proc.Rand().Intn(maxK + 1)
		}
		sample := append([]types.Transaction(nil), pool...)
		proc.Rand().Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
		sample = sample[:k]

		candidate := types.NewCandidate(l0, proc.Now(), sample, p.ID)
		if err := candidate.Validate(); err != nil {
			// The sampled transaction set lost a race with a conflicting
			// transaction already embedded in l0. Resample immediately
			// (zero elapsed simulated time) rather than paying a PoW
			// delay for a candidate we already know is dead.
			continue
		}

		tk := proc.Rand().ExpFloat64() * (p.meanI / p.HashingPower)
		proc.Timeout(tk)

		if p.tip == l0 {
			p.numGenerated++
			p.tree.Insert(candidate, proc.Now())
			p.tip = candidate
			p.BroadcastBlock(candidate)
		}
	}
}
