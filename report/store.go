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

package report

import (
	"bytes"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/aka2910/netsim/probe"
)

// Store mirrors every peer's dot graph into an embedded LevelDB database,
// keyed "peer-<id>", plus one "summary" entry holding the rendered table,
// so a run's artifacts survive after the process exits without requiring
// any external service.
type Store struct {
	db *leveldb.DB
}

// OpenStore opens (creating if absent) a LevelDB database at path.
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("report: opening leveldb store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Dump implements driver.Sink.
func (s *Store) Dump(peers []*probe.Peer) error {
	batch := new(leveldb.Batch)
	for _, p := range peers {
		batch.Put([]byte(fmt.Sprintf("peer-%d", p.ID)), []byte(DotGraph(p)))
	}
	var buf bytes.Buffer
	WriteSummary(&buf, peers)
	batch.Put([]byte("summary"), buf.Bytes())
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("report: writing leveldb batch: %w", err)
	}
	return nil
}

// Get fetches a previously stored artifact by key ("peer-<id>" or
// "summary"), used by the console subcommand to inspect a finished run.
func (s *Store) Get(key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if err != nil {
		return nil, fmt.Errorf("report: reading %s: %w", key, err)
	}
	return v, nil
}
