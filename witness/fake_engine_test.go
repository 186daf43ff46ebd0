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

// fakeEngine is a hand-rolled stand-in for ChainEngine, shared by the
// policy, bandwidth and production tests the way tests/*_test.go in the
// teacher tree stubs its external collaborators rather than mocking them
// with a generated mock.
type fakeEngine struct {
	producing         bool
	hardforks         map[int]bool
	accounts          map[string]*Account
	comments          map[string]*Comment
	effectiveStake    map[string]uint64
	totalStake        uint64
	maxBlockSize      uint64
	headBlockTime     time.Time
	headBlockNum      uint64
	slotAtTime        uint64
	scheduledProducer string
	slotTime          time.Time
	participation     float64

	generateBlockErr error
	generatedBlocks  []Block

	preApplyBlockHandlers  []func(BlockNotification)
	preApplyTrxHandlers    []func(TransactionNotification) error
	preApplyOpHandlers     []func(OperationNotification) error
	postApplyOpHandlers    []func(OperationNotification) error
	postApplyBlockHandlers []func(BlockNotification)

	writeLockRequested bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		hardforks:      make(map[int]bool),
		accounts:       make(map[string]*Account),
		comments:       make(map[string]*Comment),
		effectiveStake: make(map[string]uint64),
	}
}

func (e *fakeEngine) HeadBlockNum() uint64               { return e.headBlockNum }
func (e *fakeEngine) HeadBlockTime() time.Time           { return e.headBlockTime }
func (e *fakeEngine) GetSlotAtTime(time.Time) uint64     { return e.slotAtTime }
func (e *fakeEngine) GetSlotTime(uint64) time.Time       { return e.slotTime }
func (e *fakeEngine) GetScheduledProducer(uint64) string { return e.scheduledProducer }
func (e *fakeEngine) WitnessParticipationRate() float64  { return e.participation }
func (e *fakeEngine) IsProducing() bool                  { return e.producing }
func (e *fakeEngine) HasHardfork(id int) bool            { return e.hardforks[id] }

func (e *fakeEngine) GetAccount(name string) (*Account, error) {
	a, ok := e.accounts[name]
	if !ok {
		return nil, errAccountNotFound
	}
	return a, nil
}

func (e *fakeEngine) GetComment(author, permlink string) (*Comment, error) {
	c, ok := e.comments[author+"/"+permlink]
	if !ok {
		return nil, errCommentNotFound
	}
	return c, nil
}

func (e *fakeEngine) FindComment(author, permlink string) (*Comment, bool) {
	c, ok := e.comments[author+"/"+permlink]
	return c, ok
}

func (e *fakeEngine) EffectiveStake(account string) uint64 { return e.effectiveStake[account] }
func (e *fakeEngine) TotalStake() uint64                   { return e.totalStake }
func (e *fakeEngine) MaxBlockSize() uint64                 { return e.maxBlockSize }

func (e *fakeEngine) GenerateBlock(scheduledTime time.Time, producer string, key PrivateKey, skip SkipFlags) (Block, error) {
	if e.generateBlockErr != nil {
		return Block{}, e.generateBlockErr
	}
	b := Block{Producer: producer, Timestamp: scheduledTime}
	e.generatedBlocks = append(e.generatedBlocks, b)
	return b, nil
}

func (e *fakeEngine) RequestUnboundedWriteLock() { e.writeLockRequested = true }

func (e *fakeEngine) RegisterPreApplyBlock(fn func(BlockNotification)) {
	e.preApplyBlockHandlers = append(e.preApplyBlockHandlers, fn)
}
func (e *fakeEngine) RegisterPreApplyTransaction(fn func(TransactionNotification) error) {
	e.preApplyTrxHandlers = append(e.preApplyTrxHandlers, fn)
}
func (e *fakeEngine) RegisterPreApplyOperation(fn func(OperationNotification) error) {
	e.preApplyOpHandlers = append(e.preApplyOpHandlers, fn)
}
func (e *fakeEngine) RegisterPostApplyOperation(fn func(OperationNotification) error) {
	e.postApplyOpHandlers = append(e.postApplyOpHandlers, fn)
}
func (e *fakeEngine) RegisterPostApplyBlock(fn func(BlockNotification)) {
	e.postApplyBlockHandlers = append(e.postApplyBlockHandlers, fn)
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

var (
	errAccountNotFound = notFoundError("account not found")
	errCommentNotFound = notFoundError("comment not found")
)

// fakePeer is a hand-rolled stand-in for PeerLayer.
type fakePeer struct {
	broadcasted     []Block
	broadcastErr    error
	blockProduction bool
}

func (p *fakePeer) BroadcastBlock(b Block) error {
	if p.broadcastErr != nil {
		return p.broadcastErr
	}
	p.broadcasted = append(p.broadcasted, b)
	return nil
}

func (p *fakePeer) SetBlockProduction(on bool) { p.blockProduction = on }
