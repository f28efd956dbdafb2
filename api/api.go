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

// Package api exposes a read-only HTTP/WebSocket view of a finished
// simulation's peer set. It never mutates a Peer; it only reads the
// accessors probe.Peer already exposes.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjl/memsize"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/aka2910/netsim/internal/log"
	"github.com/aka2910/netsim/probe"
)

// Server serves the stats API over peers. Handlers read Peer state without
// locking, so a Server is started only once Driver.Run has returned
// (cmd/netsim does this when --http is set); it never serves a run in
// progress.
type Server struct {
	peers    []*probe.Peer
	upgrader websocket.Upgrader
}

// New builds a Server over the given finished peer set.
func New(peers []*probe.Peer) *Server {
	return &Server{peers: peers}
}

// Handler builds the HTTP handler: CORS-wrapped httprouter routes plus the
// raw memsize debug endpoint.
func (s *Server) Handler() http.Handler {
	r := httprouter.New()
	r.GET("/peers", s.listPeers)
	r.GET("/peers/:id", s.peerDetail)
	r.GET("/peers/:id/tree", s.peerTree)
	r.GET("/ws", s.stream)
	r.GET("/debug/memsize", s.memsize)
	return cors.Default().Handler(r)
}

type peerSummary struct {
	ID               int    `json:"id"`
	TipID            string `json:"tip_id"`
	TipHeight        int64  `json:"tip_height"`
	NumGenerated     int    `json:"num_generated"`
	MainChainContrib int    `json:"main_chain_contrib"`
}

func summarize(p *probe.Peer) peerSummary {
	tip := p.Tip()
	return peerSummary{
		ID:               int(p.ID),
		TipID:            tip.ID.String(),
		TipHeight:        tip.Height,
		NumGenerated:     p.NumGenerated(),
		MainChainContrib: p.MainChainContrib(),
	}
}

func (s *Server) listPeers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	out := make([]peerSummary, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, summarize(p))
	}
	writeJSON(w, out)
}

func (s *Server) findPeer(idParam string) *probe.Peer {
	id, err := strconv.Atoi(idParam)
	if err != nil {
		return nil
	}
	for _, p := range s.peers {
		if int(p.ID) == id {
			return p
		}
	}
	return nil
}

func (s *Server) peerDetail(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	p := s.findPeer(ps.ByName("id"))
	if p == nil {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, summarize(p))
}

type treeNode struct {
	ID       string   `json:"id"`
	Height   int64    `json:"height"`
	Miner    int      `json:"miner"`
	Children []string `json:"children"`
}

func (s *Server) peerTree(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	p := s.findPeer(ps.ByName("id"))
	if p == nil {
		http.NotFound(w, nil)
		return
	}
	tree := p.Tree()
	out := make([]treeNode, 0, len(tree.Nodes))
	for id, n := range tree.Nodes {
		children := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, c.String())
		}
		out = append(out, treeNode{ID: id.String(), Height: n.Block.Height, Miner: int(n.Block.Miner), Children: children})
	}
	writeJSON(w, out)
}

// stream upgrades to a WebSocket, sends every peer's current summary once,
// on connect, and closes the connection; no further messages are pushed.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("api: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	out := make([]peerSummary, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, summarize(p))
	}
	if err := conn.WriteJSON(out); err != nil {
		log.Warn("api: websocket write failed", "err", err)
	}
}

func (s *Server) memsize(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	report := memsize.Scan(&s.peers)
	writeJSON(w, report.Report())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
