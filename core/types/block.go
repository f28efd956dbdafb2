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

package types

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/aka2910/netsim/common"
)

// MiningReward is the coinbase credited to a block's miner on validation.
const MiningReward = 50

// Block is immutable once constructed: Validate fills in Balances exactly
// once, at acceptance time, and nothing mutates a Block afterwards.
type Block struct {
	ID        common.BlockID
	Parent    *Block // nil for genesis
	Height    int64
	Timestamp float64
	Txs       []Transaction // ordered; order affects validation, see Validate
	Miner     common.PeerID // common.NoMiner for genesis
	SizeKB    int
	Balances  Balances // filled by Validate; nil until then
}

// NewGenesis builds the genesis block: height 0, no parent, empty tx set,
// miner NoMiner, zero balance for every one of the n peers the driver is
// about to construct. Its id is the fingerprint of the literal string "0",
// so every peer in a run (and every run with the same n) shares one
// genesis id.
func NewGenesis(n int) *Block {
	b := &Block{
		Parent:    nil,
		Height:    0,
		Timestamp: 0,
		Txs:       nil,
		Miner:     common.NoMiner,
		SizeKB:    8,
		Balances:  NewBalances(n),
	}
	b.ID = common.BlockID(common.Fingerprint([]byte("0")))
	return b
}

// NewCandidate constructs an unvalidated candidate block with the given
// parent, timestamp, tx set and miner. Its id is the content fingerprint of
// (parent.id, timestamp, txs, miner). Balances is nil until Validate
// succeeds.
func NewCandidate(parent *Block, timestamp float64, txs []Transaction, miner common.PeerID) *Block {
	b := &Block{
		Parent:    parent,
		Height:    parent.Height + 1,
		Timestamp: timestamp,
		Txs:       txs,
		Miner:     miner,
		SizeKB:    8 * (len(txs) + 1),
	}
	fields := [][]byte{
		[]byte(parent.ID.String()),
		[]byte(fmt.Sprintf("%g", timestamp)),
		[]byte(fmt.Sprintf("%d", miner)),
	}
	for _, t := range txs {
		fields = append(fields, []byte(t.String()))
	}
	b.ID = common.BlockID(common.Fingerprint(fields...))
	return b
}

// Validate applies b's transactions to a copy of the parent's balance
// snapshot, in Txs order (order matters: balances are checked against the
// running copy, so a transaction whose sender lacks funds at its position is
// rejected even if a later transaction in the same block would fund it),
// credits the miner's coinbase,
// and on success stores the result in b.Balances.
//
// It is intentionally re-runnable: validating the same block twice against
// the same parent balances produces the same Balances map both times.
func (b *Block) Validate() error {
	balances := b.Parent.Balances.Copy()
	for _, tx := range b.Txs {
		if tx.Amount.Sign() <= 0 {
			return fmt.Errorf("%w: tx %s has non-positive amount", common.ErrInvalidTransaction, tx.ID)
		}
		senderBal := balances.get(tx.Sender)
		if senderBal.Lt(tx.Amount) {
			return fmt.Errorf("%w: tx %s sender %d has insufficient funds", common.ErrInvalidTransaction, tx.ID, tx.Sender)
		}
		balances[tx.Sender] = new(uint256.Int).Sub(senderBal, tx.Amount)
		balances[tx.Receiver] = new(uint256.Int).Add(balances.get(tx.Receiver), tx.Amount)
	}
	balances[b.Miner] = new(uint256.Int).Add(balances.get(b.Miner), uint256.NewInt(MiningReward))
	b.Balances = balances
	return nil
}

// TxSet returns the block's own transaction ids as a set, used by the
// iterative chain walk in the miner package rather than this package
// reaching into peer/mempool concerns.
func (b *Block) TxSet() map[common.TxID]struct{} {
	out := make(map[common.TxID]struct{}, len(b.Txs))
	for _, t := range b.Txs {
		out[t.ID] = struct{}{}
	}
	return out
}

func (b *Block) String() string {
	return fmt.Sprintf("block{%s h=%d miner=%d txs=%d}", b.ID, b.Height, b.Miner, len(b.Txs))
}
