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

// Package driver is the orchestration layer: it turns a Config into a
// genesis block, a peer set, a network, and a running scheduler, and at the
// end of the run hands the finished peers to whatever artifact/metrics
// collaborators are wired in.
package driver

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aka2910/netsim/common"
	"github.com/aka2910/netsim/core/types"
	"github.com/aka2910/netsim/event"
	"github.com/aka2910/netsim/internal/log"
	"github.com/aka2910/netsim/probe"
)

// Config parameterizes one simulation run: peer count, the slow/low-CPU
// split, transaction and block timing, the run horizon, and the RNG seed.
type Config struct {
	N    int     // number of peers
	Z0   float64 // percent marked slow
	Z1   float64 // percent marked low-CPU
	Ttx  float64 // mean tx inter-arrival per peer
	Time float64 // simulation horizon
	I    float64 // mean block inter-arrival
	Seed int64   // RNG seed
}

// DefaultConfig returns the out-of-the-box 10-peer, 100-time-unit run.
func DefaultConfig() Config {
	return Config{N: 10, Z0: 50, Z1: 50, Ttx: 0.5, Time: 100, I: 0.5, Seed: 1}
}

// Sink receives the finished peer set for artifact rendering, an API
// server, or metrics — any narrow read-only collaborator. Driver never
// imports report/api/metrics directly so those packages stay optional; the
// caller (cmd/netsim) wires whichever it wants.
type Sink interface {
	Dump(peers []*probe.Peer) error
}

// Driver owns one simulation run's scheduler, network, and peer set.
type Driver struct {
	cfg     Config
	runID   uuid.UUID
	sched   *event.Scheduler
	network *probe.Network
	peers   []*probe.Peer
	sinks   []Sink
}

// RunID uniquely identifies this Driver instance, for tagging log lines
// and artifacts when multiple runs' output might otherwise collide (e.g.
// several invocations writing into the same metrics database).
func (d *Driver) RunID() uuid.UUID { return d.runID }

// New builds genesis, peers (with slow/low-CPU designation and hashing
// power), and the network. It does not start any process yet; call Run for
// that.
func New(cfg Config) *Driver {
	sched := event.New(cfg.Seed)
	genesis := types.NewGenesis(cfg.N)

	nSlow := int(math.Floor(float64(cfg.N) * cfg.Z0 / 100))
	nLow := int(math.Floor(float64(cfg.N) * cfg.Z1 / 100))

	slow := make([]bool, cfg.N)
	lowCPU := make([]bool, cfg.N)
	assignRandomSubset(sched.Rand(), slow, nSlow)
	assignRandomSubset(sched.Rand(), lowCPU, nLow)

	lowPower := 1.0 / (10*float64(cfg.N) - 9*float64(nLow))
	highPower := 10 * lowPower

	peers := make([]*probe.Peer, cfg.N)
	for i := 0; i < cfg.N; i++ {
		speed := probe.Fast
		if slow[i] {
			speed = probe.Slow
		}
		cpu := probe.HighCPU
		power := highPower
		if lowCPU[i] {
			cpu = probe.LowCPU
			power = lowPower
		}
		peers[i] = probe.NewPeer(common.PeerID(i), speed, cpu, power, cfg.I, genesis, sched)
	}

	network := probe.NewNetwork(peers, cfg.I, sched)

	return &Driver{cfg: cfg, runID: uuid.New(), sched: sched, network: network, peers: peers}
}

// assignRandomSubset marks exactly k indices of flags true, chosen without
// replacement.
func assignRandomSubset(rng *rand.Rand, flags []bool, k int) {
	if k <= 0 {
		return
	}
	idx := make([]int, len(flags))
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
	for _, i := range idx[:k] {
		flags[i] = true
	}
}

// AddSink registers a collaborator to receive the finished peer set once
// Run completes.
func (d *Driver) AddSink(s Sink) { d.sinks = append(d.sinks, s) }

// Network exposes the constructed overlay (used by sinks and tests that
// want the adjacency list alongside the finished peer set).
func (d *Driver) Network() *probe.Network { return d.network }

// Peers exposes the peer set (read-only use expected).
func (d *Driver) Peers() []*probe.Peer { return d.peers }

// Run seeds one transaction-generator process and one initial create_block
// process per peer, runs the scheduler to the configured horizon, then
// fans the finished peer set out to every registered sink.
func (d *Driver) Run() error {
	peerIDs := make([]common.PeerID, len(d.peers))
	for i, p := range d.peers {
		peerIDs[i] = p.ID
	}

	for _, p := range d.peers {
		p := p
		d.sched.Spawn(func(proc *event.Proc) { p.GenerateTransactions(d.cfg.Ttx, peerIDs, proc) })
		d.sched.Spawn(func(proc *event.Proc) { p.CreateBlock(proc) })
	}

	log.Info("simulation starting", "run", d.runID, "n", d.cfg.N, "time", d.cfg.Time, "seed", d.cfg.Seed)
	d.sched.RunUntil(d.cfg.Time)
	log.Info("simulation finished", "run", d.runID, "now", d.sched.Now())

	if len(d.sinks) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, s := range d.sinks {
		s := s
		g.Go(func() error { return s.Dump(d.peers) })
	}
	return g.Wait()
}
