// Copyright 2026 The bears Authors
// This file is part of the bears library.
//
// The bears library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The bears library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the bears library. If not, see <http://www.gnu.org/licenses/>.

package witness

import "time"

// ChainEngine is everything this subsystem treats as an opaque collaborator:
// the chain engine proper (storage, fork choice, block assembly) and the
// state-object store that backs bandwidth and reserve-ratio records. None of
// it is implemented here.
type ChainEngine interface {
	HeadBlockNum() uint64
	HeadBlockTime() time.Time

	GetSlotAtTime(now time.Time) uint64
	GetSlotTime(slot uint64) time.Time
	GetScheduledProducer(slot uint64) string
	WitnessParticipationRate() float64

	IsProducing() bool
	HasHardfork(id int) bool

	GetAccount(name string) (*Account, error)
	GetComment(author, permlink string) (*Comment, error)
	FindComment(author, permlink string) (*Comment, bool)
	EffectiveStake(account string) uint64
	TotalStake() uint64

	MaxBlockSize() uint64

	GenerateBlock(scheduledTime time.Time, producer string, key PrivateKey, skip SkipFlags) (Block, error)

	// RequestUnboundedWriteLock asks the engine for an unbounded write-lock
	// hold time so block assembly is not interrupted by a reader.
	RequestUnboundedWriteLock()

	RegisterPreApplyBlock(func(BlockNotification))
	RegisterPreApplyTransaction(func(TransactionNotification) error)
	RegisterPreApplyOperation(func(OperationNotification) error)
	RegisterPostApplyOperation(func(OperationNotification) error)
	RegisterPostApplyBlock(func(BlockNotification))
}

// PeerLayer is the gossip / peer layer collaborator, also out of scope.
type PeerLayer interface {
	BroadcastBlock(Block) error
	SetBlockProduction(bool)
}

// Block is the opaque minted-block handle returned by GenerateBlock and
// handed to the peer layer.
type Block struct {
	Producer  string
	Timestamp time.Time
	Size      uint64
}

// SkipFlags is the bitmask forwarded to GenerateBlock.
type SkipFlags uint32

const (
	SkipNothing SkipFlags = 0
	// SkipUndoHistory is set automatically when enable-stale-production is
	// configured.
	SkipUndoHistory SkipFlags = 1 << 0
)

// BlockNotification is the payload delivered to pre/post-apply-block
// handlers.
type BlockNotification struct {
	Number uint64
	Size   uint64
	Time   time.Time
}

// TransactionNotification is the payload delivered to
// pre-apply-transaction handlers.
type TransactionNotification struct {
	Transaction *Transaction
}

// OperationNotification is the payload delivered to pre/post-apply-operation
// handlers.
type OperationNotification struct {
	Operation        Operation
	ImpactedAccounts []string
}

// ExportSnapshot is the per-block reserve-ratio snapshot exposed through the
// optional block-data-export collaborator.
type ExportSnapshot struct {
	AverageBlockSize    uint64
	CurrentReserveRatio uint64
	MaxVirtualBandwidth *BigUint
	BlockSize           uint64
}

// BandwidthUpdateEvent is one bandwidth-update record exposed through the
// same collaborator.
type BandwidthUpdateEvent struct {
	Account           string
	Kind              BandwidthKind
	AverageBandwidth  *BigUint
	LifetimeBandwidth *BigUint
	LastUpdate        time.Time
	TrxSize           uint64
}

// ExportSink receives export snapshots and bandwidth events; concrete
// implementations live in the export subpackage (SQL, Kafka).
type ExportSink interface {
	WriteSnapshot(blockNumber uint64, snap ExportSnapshot) error
	WriteBandwidthEvents(blockNumber uint64, events []BandwidthUpdateEvent) error
}
