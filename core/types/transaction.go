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

// Package types holds the simulator's core value and tree types:
// Transaction, Block, and the per-peer BlockTree.
package types

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
)

// Transaction is an immutable value: a transfer of Amount coins from Sender
// to Receiver, created at Timestamp. Self-transfers (Sender == Receiver) are
// permitted and simply leave the sender's balance unchanged.
type Transaction struct {
	ID        common.TxID
	Sender    common.PeerID
	Receiver  common.PeerID
	Amount    *uint256.Int
	Timestamp float64
}

// NewTransaction builds a Transaction and derives its id from its content,
// per common.Fingerprint. seq disambiguates transactions created by the
// same sender at the exact same simulated instant — hashing only
// sender+receiver+time collides under heavy tx load; folding in a per-peer
// sequence number keeps ids unique without changing any externally
// observable field.
func NewTransaction(sender, receiver common.PeerID, amount *uint256.Int, timestamp float64, seq uint64) Transaction {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	id := common.Fingerprint(
		[]byte(fmt.Sprintf("%d", sender)),
		[]byte(fmt.Sprintf("%d", receiver)),
		[]byte(fmt.Sprintf("%g", timestamp)),
		buf[:],
	)
	return Transaction{
		ID:        common.TxID(id),
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

func (t Transaction) String() string {
	return fmt.Sprintf("tx{%s %d->%d %s}", t.ID, t.Sender, t.Receiver, t.Amount)
}
