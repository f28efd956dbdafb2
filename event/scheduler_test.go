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

package event

import "testing"

func TestRunUntilOrdersByTime(t *testing.T) {
	s := New(1)
	var order []int

	s.Spawn(func(p *Proc) {
		p.Timeout(5)
		order = append(order, 1)
	})
	s.Spawn(func(p *Proc) {
		p.Timeout(2)
		order = append(order, 2)
	})
	s.Spawn(func(p *Proc) {
		p.Timeout(2)
		order = append(order, 3) // same time as the previous process: FIFO by admission order
	})

	s.RunUntil(10)

	want := []int{2, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRunUntilHonorsHorizon(t *testing.T) {
	s := New(1)
	fired := false
	s.Spawn(func(p *Proc) {
		p.Timeout(100)
		fired = true
	})
	s.RunUntil(10)
	if fired {
		t.Fatalf("process scheduled beyond the horizon should not have run")
	}
	if got, want := s.Now(), 10.0; got != want {
		t.Fatalf("Now() = %v, want %v (horizon, even with no event firing exactly at it)", got, want)
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1 (the unfired event should still be queued)", s.Pending())
	}
}

func TestSpawnDoesNotSuspendCaller(t *testing.T) {
	s := New(1)
	ran := false
	s.Spawn(func(p *Proc) { ran = true })
	if ran {
		t.Fatalf("Spawn must not run fn synchronously")
	}
	s.RunUntil(0)
	if !ran {
		t.Fatalf("fn should have run once the scheduler reached its admission event")
	}
}

func TestRandIsDeterministicGivenSeed(t *testing.T) {
	s1 := New(42)
	s2 := New(42)
	for i := 0; i < 10; i++ {
		a := s1.Rand().Float64()
		b := s2.Rand().Float64()
		if a != b {
			t.Fatalf("same seed produced divergent draws at step %d: %v != %v", i, a, b)
		}
	}
}
