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

// Package common holds the small, dependency-light types shared across the
// simulator: opaque peer/block/transaction identifiers and the error
// taxonomy.
package common

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// PeerID is a peer's position in the driver's 0..n-1 peer list.
type PeerID int

// NoMiner marks the genesis block, which no peer mined.
const NoMiner PeerID = -1

// BlockID is a content-deterministic fingerprint of a block.
type BlockID uint64

// TxID is a content-deterministic fingerprint of a transaction.
type TxID uint64

func (id BlockID) String() string { return fmt.Sprintf("%016x", uint64(id)) }
func (id TxID) String() string    { return fmt.Sprintf("%016x", uint64(id)) }

// Fingerprint hashes the given fields with Keccak256 and folds the digest
// down to a uint64 by taking its first 8 bytes big-endian. It is the single
// id-derivation primitive used for both block and transaction ids, so that
// "same content => same id" holds identically for both (spec invariant:
// ids are content-deterministic).
func Fingerprint(fields ...[]byte) uint64 {
	h := sha3.NewLegacyKeccak256()
	for _, f := range fields {
		h.Write(f)
	}
	var digest [32]byte
	h.Sum(digest[:0])
	return binary.BigEndian.Uint64(digest[:8])
}
