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

package common

import "errors"

var (
	// ErrInvalidTransaction is returned when a transaction's amount is
	// non-positive or exceeds the sender's running balance within a block.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidBlock is returned when a block fails validation against its
	// parent's balance snapshot. The block is dropped: not gossiped, not
	// inserted into the tree.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrOrphanBlock is returned when a block's parent id is unknown to the
	// receiving peer. The block is dropped.
	ErrOrphanBlock = errors.New("orphan block: unknown parent")

	// ErrConfigError is returned for argument parsing / config decode
	// failures at startup.
	ErrConfigError = errors.New("configuration error")
)
