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

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aka2910/netsim/driver"
)

func newTestServer(t *testing.T) (*Server, []int) {
	t.Helper()
	cfg := driver.DefaultConfig()
	cfg.N = 3
	cfg.Time = 5
	d := driver.New(cfg)
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	ids := make([]int, 0, len(d.Peers()))
	for _, p := range d.Peers() {
		ids = append(ids, int(p.ID))
	}
	return New(d.Peers()), ids
}

func TestListPeersReturnsOneSummaryPerPeer(t *testing.T) {
	s, ids := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/peers", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /peers = %d, want 200", rr.Code)
	}
	var out []peerSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out) != len(ids) {
		t.Fatalf("got %d summaries, want %d", len(out), len(ids))
	}
}

func TestPeerDetailNotFoundForUnknownID(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/peers/9999", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /peers/9999 = %d, want 404", rr.Code)
	}
}

func TestPeerDetailReturnsMatchingID(t *testing.T) {
	s, ids := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/peers/0", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /peers/0 = %d, want 200", rr.Code)
	}
	var out peerSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.ID != ids[0] {
		t.Fatalf("peerDetail ID = %d, want %d", out.ID, ids[0])
	}
}
