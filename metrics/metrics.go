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

// Package metrics is an entirely optional collaborator: a periodic push of
// per-peer counters to InfluxDB, plus one-shot host resource sampling for
// the end-of-run summary. Nothing in the simulation depends on it; Driver
// runs identically whether or not a Pusher is registered.
package metrics

import (
	"context"
	"fmt"
	"time"

	client "github.com/influxdata/influxdb/client/v2"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"golang.org/x/time/rate"

	"github.com/aka2910/netsim/internal/log"
	"github.com/aka2910/netsim/probe"
)

// Pusher periodically writes every peer's forging counters to an InfluxDB
// v1 endpoint, rate-limited so a fast scheduler loop never floods it.
type Pusher struct {
	c        client.Client
	database string
	limiter  *rate.Limiter
}

// NewPusher dials addr (an InfluxDB HTTP endpoint) and prepares writes
// against database, at most once per interval.
func NewPusher(addr, database string, interval time.Duration) (*Pusher, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{Addr: addr})
	if err != nil {
		return nil, fmt.Errorf("metrics: dialing influxdb at %s: %w", addr, err)
	}
	return &Pusher{c: c, database: database, limiter: rate.NewLimiter(rate.Every(interval), 1)}, nil
}

// Close releases the underlying HTTP client.
func (p *Pusher) Close() error { return p.c.Close() }

// Push writes one point per peer (fields: num_generated, main_chain_contrib,
// tip_height) if the rate limiter currently allows it; otherwise it's a
// cheap no-op, so callers can call Push from inside a hot loop.
func (p *Pusher) Push(ctx context.Context, peers []*probe.Peer) error {
	if !p.limiter.Allow() {
		return nil
	}
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: p.database})
	if err != nil {
		return fmt.Errorf("metrics: building batch: %w", err)
	}
	now := time.Now()
	for _, peer := range peers {
		tags := map[string]string{"peer": fmt.Sprintf("%d", peer.ID)}
		fields := map[string]interface{}{
			"num_generated":      peer.NumGenerated(),
			"main_chain_contrib": peer.MainChainContrib(),
			"tip_height":         peer.Tip().Height,
		}
		pt, err := client.NewPoint("peer_stats", tags, fields, now)
		if err != nil {
			return fmt.Errorf("metrics: building point for peer %d: %w", peer.ID, err)
		}
		bp.AddPoint(pt)
	}
	if err := p.c.Write(bp); err != nil {
		return fmt.Errorf("metrics: writing batch: %w", err)
	}
	return nil
}

// HostSummary is a one-shot snapshot of the host the simulation ran on,
// included in the end-of-run log line.
type HostSummary struct {
	CPUPercent float64
	MemUsedPct float64
}

// SampleHost reads current CPU and memory utilization via gopsutil.
func SampleHost() (HostSummary, error) {
	cpuPct, err := cpu.Percent(0, false)
	if err != nil {
		return HostSummary{}, fmt.Errorf("metrics: reading cpu percent: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return HostSummary{}, fmt.Errorf("metrics: reading memory stats: %w", err)
	}
	summary := HostSummary{MemUsedPct: vm.UsedPercent}
	if len(cpuPct) > 0 {
		summary.CPUPercent = cpuPct[0]
	}
	log.Debug("host sample", "cpu_pct", summary.CPUPercent, "mem_pct", summary.MemUsedPct)
	return summary, nil
}
