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

// Package report renders per-peer artifacts at the end of a run: a
// Graphviz dot file of each peer's block tree, and a tabular summary of
// every peer's forging contribution. It consumes only the read-only
// accessors probe.Peer already exposes — nothing here reaches into mempool
// or routing-table internals.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aka2910/netsim/probe"
)

// LocalFiles writes one <peerID>.dot file plus a summary.txt into dir for
// every peer in the set it's given. It is the zero-configuration default
// sink, needing neither LevelDB nor a cloud credential.
type LocalFiles struct {
	Dir string
}

// Dump implements driver.Sink.
func (l LocalFiles) Dump(peers []*probe.Peer) error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("report: creating %s: %w", l.Dir, err)
	}
	for _, p := range peers {
		dotPath := filepath.Join(l.Dir, fmt.Sprintf("%d.dot", p.ID))
		if err := os.WriteFile(dotPath, []byte(DotGraph(p)), 0o644); err != nil {
			return fmt.Errorf("report: writing %s: %w", dotPath, err)
		}
	}
	summaryPath := filepath.Join(l.Dir, "summary.txt")
	var buf bytes.Buffer
	WriteSummary(&buf, peers)
	if err := os.WriteFile(summaryPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", summaryPath, err)
	}
	return nil
}

// DotGraph renders p's block tree as a Graphviz digraph: one node per
// block (labeled with its id and miner), one edge per parent->child link.
func DotGraph(p *probe.Peer) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph peer%d {\n", p.ID)
	tree := p.Tree()
	for id, node := range tree.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id.String(), fmt.Sprintf("%s\\nminer=%d h=%d", id, node.Block.Miner, node.Block.Height))
		for _, child := range node.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", id.String(), child.String())
		}
	}
	fmt.Fprintln(&buf, "}")
	return buf.String()
}

// WriteSummary renders one row per peer: id, blocks generated, main-chain
// contribution, and the ratio between them (0 when the peer never forged
// anything).
func WriteSummary(w io.Writer, peers []*probe.Peer) {
	p := message.NewPrinter(language.English)
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"peer", "generated", "main_chain_contrib", "ratio"})
	for _, peer := range peers {
		gen := peer.NumGenerated()
		contrib := peer.MainChainContrib()
		ratio := 0.0
		if gen > 0 {
			ratio = float64(contrib) / float64(gen)
		}
		table.Append([]string{
			fmt.Sprintf("%d", peer.ID),
			p.Sprintf("%d", gen),
			p.Sprintf("%d", contrib),
			fmt.Sprintf("%.3f", ratio),
		})
	}
	table.Render()
}
