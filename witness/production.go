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

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/bearshares/bears/witness/internal/wlog"
)

// ProductionCondition is the outcome of one maybe_produce_block evaluation.
type ProductionCondition string

const (
	ConditionWaitForGenesis          ProductionCondition = "wait_for_genesis"
	ConditionNotSynced               ProductionCondition = "not_synced"
	ConditionNotTimeYet              ProductionCondition = "not_time_yet"
	ConditionNotMyTurn               ProductionCondition = "not_my_turn"
	ConditionNoPrivateKey            ProductionCondition = "no_private_key"
	ConditionLowParticipation        ProductionCondition = "low_participation"
	ConditionLag                     ProductionCondition = "lag"
	ConditionConsecutive             ProductionCondition = "consecutive"
	ConditionExceptionProducingBlock ProductionCondition = "exception_producing_block"
	ConditionProduced                ProductionCondition = "produced"
)

var productionCounters = map[ProductionCondition]metrics.Counter{
	ConditionWaitForGenesis:          metrics.NewRegisteredCounter("witness/production/wait_for_genesis", nil),
	ConditionNotSynced:               metrics.NewRegisteredCounter("witness/production/not_synced", nil),
	ConditionNotTimeYet:              metrics.NewRegisteredCounter("witness/production/not_time_yet", nil),
	ConditionNotMyTurn:               metrics.NewRegisteredCounter("witness/production/not_my_turn", nil),
	ConditionNoPrivateKey:            metrics.NewRegisteredCounter("witness/production/no_private_key", nil),
	ConditionLowParticipation:        metrics.NewRegisteredCounter("witness/production/low_participation", nil),
	ConditionLag:                     metrics.NewRegisteredCounter("witness/production/lag", nil),
	ConditionConsecutive:             metrics.NewRegisteredCounter("witness/production/consecutive", nil),
	ConditionExceptionProducingBlock: metrics.NewRegisteredCounter("witness/production/exception_producing_block", nil),
	ConditionProduced:                metrics.NewRegisteredCounter("witness/production/produced", nil),
}

// Result is the outcome of one tick, carrying diagnostic context alongside
// the condition that produced it.
type Result struct {
	Condition ProductionCondition
	Context   map[string]interface{}
}

// fatalProductionError wraps an exception that must propagate and stop the
// loop from rescheduling: cancellation, an unknown-hardfork condition, or
// an InvariantViolation.
type fatalProductionError struct {
	cause error
}

func (e *fatalProductionError) Error() string { return e.cause.Error() }
func (e *fatalProductionError) Unwrap() error { return e.cause }

// ProductionLoop is the periodic timer-driven block-production task. It
// runs in its own goroutine, started by Start; the tick never runs
// concurrently with itself. Start calls RequestUnboundedWriteLock once;
// the tick takes no lock around its calls into the chain engine, so those
// calls are not serialized against chain-apply by this type.
type ProductionLoop struct {
	engine   ChainEngine
	peer     PeerLayer
	keystore *KeyStore
	cfg      Config
	log      *wlog.Logger

	productionEnabled int32 // atomic bool
	lastProducer      string

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	// genesisTime gates ConditionWaitForGenesis; zero means no gate.
	genesisTime time.Time

	// nowFn is overridden in tests to freeze the wall clock.
	nowFn func() time.Time
}

// NewProductionLoop constructs a loop bound to engine/peer/keystore. It does
// not start ticking until Start is called.
func NewProductionLoop(engine ChainEngine, peer PeerLayer, keystore *KeyStore, cfg Config, genesisTime time.Time) *ProductionLoop {
	return &ProductionLoop{
		engine:      engine,
		peer:        peer,
		keystore:    keystore,
		cfg:         cfg,
		log:         wlog.NewModuleLogger("production"),
		genesisTime: genesisTime,
		nowFn:       time.Now,
	}
}

// Start launches the periodic tick goroutine. It is a no-op if no producer
// is configured: the production loop is not started in that case.
func (l *ProductionLoop) Start() {
	if !l.keystore.ProducerConfigured() {
		return
	}
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.peer.SetBlockProduction(true)
	l.engine.RequestUnboundedWriteLock()
	go l.run()
}

// Stop cancels the timer. Any in-flight tick completes; its reschedule is
// skipped.
func (l *ProductionLoop) Stop() {
	l.once.Do(func() {
		if l.stopCh == nil {
			return
		}
		close(l.stopCh)
		<-l.doneCh
	})
}

func (l *ProductionLoop) run() {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		if fatal := l.tick(); fatal {
			// A fatal exception propagated out of maybe_produce_block: the
			// loop does not reschedule itself.
			return
		}

		select {
		case <-l.stopCh:
			return
		case <-time.After(l.sleepUntilNextBoundary()):
		}
	}
}

// sleepUntilNextBoundary re-aligns to the next BlockProductionLoopSleepTime
// boundary, with a floor of blockProductionLoopMinSleepTime to avoid
// busy-looping on clock skew.
func (l *ProductionLoop) sleepUntilNextBoundary() time.Duration {
	now := l.nowFn()
	period := BlockProductionLoopSleepTime
	next := now.Truncate(period).Add(period)
	d := next.Sub(now)
	if d < blockProductionLoopMinSleepTime {
		d += period
	}
	return d
}

// tick runs one maybe_produce_block evaluation and reports whether the loop
// must stop rescheduling (a fatal exception propagated).
func (l *ProductionLoop) tick() (fatal bool) {
	tickID := uuid.New()
	result, err := l.maybeProduceBlock()
	if err != nil {
		if _, fatal := err.(*fatalProductionError); fatal {
			l.log.Error("production loop stopping on fatal error", "tick", tickID, "err", err)
			return true
		}
		l.log.Warn("production loop tick failed", "tick", tickID, "err", err)
		return false
	}
	if counter, ok := productionCounters[result.Condition]; ok {
		counter.Inc(1)
	}
	if result.Condition == ConditionProduced {
		l.log.Info("produced block", "tick", tickID, "context", result.Context)
	} else {
		l.log.Debug("did not produce", "tick", tickID, "condition", result.Condition, "context", result.Context)
	}
	return false
}

// maybeProduceBlock evaluates whether this node should produce the block
// for the current slot and, if so, assembles and broadcasts it.
func (l *ProductionLoop) maybeProduceBlock() (Result, error) {
	nowFine := l.nowFn()
	now := roundToNearestSecond(nowFine)

	if !l.genesisTime.IsZero() && nowFine.Before(l.genesisTime) {
		return Result{Condition: ConditionWaitForGenesis}, nil
	}

	if atomic.LoadInt32(&l.productionEnabled) == 0 {
		if !l.engine.GetSlotTime(1).Before(now) {
			atomic.StoreInt32(&l.productionEnabled, 1)
		} else {
			return Result{Condition: ConditionNotSynced}, nil
		}
	}

	slot := l.engine.GetSlotAtTime(now)
	if slot == 0 {
		return Result{Condition: ConditionNotTimeYet}, nil
	}

	if !now.After(l.engine.HeadBlockTime()) {
		return Result{}, &fatalProductionError{cause: &InvariantViolation{
			Detail: "now is not after head_block_time",
		}}
	}

	scheduled := l.engine.GetScheduledProducer(slot)
	if !l.keystore.Producers(scheduled) {
		return Result{Condition: ConditionNotMyTurn, Context: map[string]interface{}{"scheduled": scheduled}}, nil
	}

	if l.lastProducer != "" && l.lastProducer == scheduled && l.cfg.guardConsecutive() {
		return Result{Condition: ConditionConsecutive, Context: map[string]interface{}{"scheduled": scheduled}}, nil
	}

	account, err := l.engine.GetAccount(scheduled)
	if err != nil {
		return Result{Condition: ConditionNoPrivateKey, Context: map[string]interface{}{"scheduled": scheduled}}, nil
	}
	key, ok := l.keystore.SigningKey(account.SigningKey)
	if !ok {
		return Result{Condition: ConditionNoPrivateKey, Context: map[string]interface{}{"scheduled": scheduled}}, nil
	}

	if rate := l.engine.WitnessParticipationRate(); rate < float64(l.cfg.RequiredParticipation) {
		return Result{Condition: ConditionLowParticipation, Context: map[string]interface{}{
			"participation": rate, "required": l.cfg.RequiredParticipation,
		}}, nil
	}

	scheduledTime := l.engine.GetSlotTime(slot)
	lag := scheduledTime.Sub(now)
	if lag < 0 {
		lag = -lag
	}
	if lag > BlockProducingLagTime {
		return Result{Condition: ConditionLag, Context: map[string]interface{}{
			"scheduled_time": scheduledTime, "now": now, "lag_ms": lag.Milliseconds(),
		}}, nil
	}

	skip := SkipNothing
	if l.cfg.EnableStaleProduction {
		skip |= SkipUndoHistory
	}

	block, err := l.engine.GenerateBlock(scheduledTime, scheduled, key, skip)
	if err != nil {
		if isFatalProducerException(err) {
			return Result{}, &fatalProductionError{cause: err}
		}
		return Result{Condition: ConditionExceptionProducingBlock, Context: map[string]interface{}{"err": err.Error()}}, nil
	}

	if err := l.peer.BroadcastBlock(block); err != nil {
		l.log.Warn("failed to broadcast produced block", "err", err)
	}
	l.lastProducer = scheduled

	return Result{Condition: ConditionProduced, Context: map[string]interface{}{
		"scheduled": scheduled, "slot": slot, "scheduled_time": scheduledTime,
	}}, nil
}

// roundToNearestSecond snaps a fine-grained clock reading to the nearest
// whole second; slot times are second-granular.
func roundToNearestSecond(t time.Time) time.Time {
	return t.Add(500 * time.Millisecond).Truncate(time.Second)
}

// isFatalProducerException reports whether err should propagate unchanged
// instead of becoming ConditionExceptionProducingBlock: a cancellation, or
// an unknown-hardfork condition.
func isFatalProducerException(err error) bool {
	switch err.(type) {
	case *CancellationError, *UnknownHardforkError:
		return true
	default:
		return false
	}
}

// CancellationError signals shutdown in progress.
type CancellationError struct{ Detail string }

func (e *CancellationError) Error() string { return "witness: cancelled: " + e.Detail }

// UnknownHardforkError signals the node is too old to continue producing.
type UnknownHardforkError struct{ Detail string }

func (e *UnknownHardforkError) Error() string { return "witness: unknown hardfork: " + e.Detail }

// guardConsecutive reports whether the optional consecutive-block guard is
// enabled. It always returns false: no Config field or flag turns the
// guard on, so ConditionConsecutive is never returned.
func (c Config) guardConsecutive() bool { return false }
