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

// Package event implements the simulator's single-threaded discrete-event
// scheduler: a container/heap priority queue of timed wakeups, ordered by
// (time, insertion sequence) so ties resolve FIFO. Any process — transaction
// generation, mining, network delivery — schedules through one scheduler via
// an opaque per-wakeup callback channel.
//
// Processes are goroutines, not OS threads doing real work in parallel:
// the scheduler hands control to exactly one goroutine at a time and does
// not proceed to the next queued event until that goroutine suspends again
// (at Proc.Timeout) or returns. This cooperative handoff is what lets peer
// state be mutated without a lock between suspensions.
package event

import (
	"container/heap"
	"math/rand"
)

// Scheduler owns simulated time and the pending-event queue.
type Scheduler struct {
	now  float64
	pq   wakeHeap
	seq  uint64
	turn chan struct{}
	rng  *rand.Rand
}

// New builds a scheduler seeded from seed, threading a single *rand.Rand
// through every process rather than relying on math/rand's hidden global
// source, so a run is fully reproducible from its seed.
func New(seed int64) *Scheduler {
	return &Scheduler{
		turn: make(chan struct{}),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() float64 { return s.now }

// Rand returns the scheduler's seeded random source. It must only be used
// from the currently active process (the scheduler never runs two
// processes concurrently, so this is safe without a lock).
func (s *Scheduler) Rand() *rand.Rand { return s.rng }

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// wakeEvent is one pending wakeup: a process blocked in Proc.Timeout (or
// about to start, for a freshly Spawned process) waiting on resume.
type wakeEvent struct {
	when   float64
	seq    uint64
	resume chan struct{}
}

type wakeHeap []*wakeEvent

func (h wakeHeap) Len() int { return len(h) }
func (h wakeHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}
func (h wakeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *wakeHeap) Push(x interface{}) { *h = append(*h, x.(*wakeEvent)) }
func (h *wakeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Proc is the handle a running process uses to suspend itself. It carries
// no state of its own beyond the scheduler it belongs to.
type Proc struct {
	s *Scheduler
}

// Timeout suspends the calling process until now()+delta, the scheduler's
// only await primitive. delta must be >= 0.
func (p *Proc) Timeout(delta float64) {
	resume := make(chan struct{})
	heap.Push(&p.s.pq, &wakeEvent{when: p.s.now + delta, seq: p.s.nextSeq(), resume: resume})
	p.s.turn <- struct{}{}
	<-resume
}

// Now is a convenience forwarding to the owning scheduler.
func (p *Proc) Now() float64 { return p.s.now }

// Rand is a convenience forwarding to the owning scheduler.
func (p *Proc) Rand() *rand.Rand { return p.s.rng }

// Spawn admits fn as a new cooperative process, ready to run at the
// current simulated time. It does not itself suspend the caller: the
// caller (whether the top-level driver or another running process)
// continues immediately, and fn begins executing once the scheduler's loop
// reaches fn's admission event — after every other event already due at
// this same instant, in admission order (FIFO at equal timestamps).
func (s *Scheduler) Spawn(fn func(p *Proc)) {
	resume := make(chan struct{})
	heap.Push(&s.pq, &wakeEvent{when: s.now, seq: s.nextSeq(), resume: resume})
	go func() {
		<-resume
		fn(&Proc{s: s})
		s.turn <- struct{}{}
	}()
}

// RunUntil advances simulated time by repeatedly popping the earliest
// pending event and handing control to its process, until either the queue
// empties or the next event's time exceeds horizon. On return, Now()
// reports horizon (even if the last real event fired earlier), so that
// code running after RunUntil — artifact dumps, stats — sees a consistent
// "as of the horizon" clock.
func (s *Scheduler) RunUntil(horizon float64) {
	for len(s.pq) > 0 && s.pq[0].when <= horizon {
		next := heap.Pop(&s.pq).(*wakeEvent)
		s.now = next.when
		next.resume <- struct{}{}
		<-s.turn
	}
	if horizon > s.now {
		s.now = horizon
	}
}

// Pending reports how many events are still queued; used by tests to
// assert a run drained (or deliberately left events beyond the horizon).
func (s *Scheduler) Pending() int { return len(s.pq) }
