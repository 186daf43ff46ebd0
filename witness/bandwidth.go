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
	"time"

	"github.com/holiman/uint256"
)

// bandwidthRecordKey identifies one (account, kind) bandwidth record.
type bandwidthRecordKey struct {
	account string
	kind    BandwidthKind
}

// defaultBandwidthHardfork is the hardfork id that retires bandwidth
// enforcement in favor of the resource-credit plugin. NewBandwidthMeter
// copies it into the meter's bandwidthHardfork field, which is queried
// through ChainEngine.HasHardfork; no exported setter changes that field.
const defaultBandwidthHardfork = 20

// BandwidthMeter is the per-account exponentially-weighted bandwidth
// counter. Charges are driven from pre-apply-transaction, once per
// required signer.
type BandwidthMeter struct {
	engine ChainEngine

	skipEnforce       bool
	bandwidthHardfork int

	mu      sync.Mutex
	records map[bandwidthRecordKey]*BandwidthRecord

	onCharge func(BandwidthUpdateEvent) // optional export hook

	// maxVirtualBandwidthFn reads the reserve-ratio controller's current
	// max_virtual_bandwidth; wired in by the Plugin at construction time.
	maxVirtualBandwidthFn func() *uint256.Int
}

// SetMaxVirtualBandwidthSource wires the meter to the reserve-ratio
// controller that supplies max_virtual_bandwidth for the cap check.
func (m *BandwidthMeter) SetMaxVirtualBandwidthSource(fn func() *uint256.Int) {
	m.maxVirtualBandwidthFn = fn
}

// NewBandwidthMeter constructs a meter bound to engine. skipEnforceBandwidth
// mirrors the witness-skip-enforce-bandwidth configuration flag.
func NewBandwidthMeter(engine ChainEngine, skipEnforceBandwidth bool) *BandwidthMeter {
	return &BandwidthMeter{
		engine:            engine,
		skipEnforce:       skipEnforceBandwidth,
		bandwidthHardfork: defaultBandwidthHardfork,
		records:           make(map[bandwidthRecordKey]*BandwidthRecord),
	}
}

// SetExportHook registers a callback invoked after every successful charge,
// used by the export factory to emit BandwidthUpdateEvent records.
func (m *BandwidthMeter) SetExportHook(fn func(BandwidthUpdateEvent)) {
	m.onCharge = fn
}

func (m *BandwidthMeter) record(account string, kind BandwidthKind) *BandwidthRecord {
	key := bandwidthRecordKey{account, kind}
	rec, ok := m.records[key]
	if !ok {
		rec = newBandwidthRecord(account, kind)
		m.records[key] = rec
	}
	return rec
}

// OnPreApplyTransaction charges trx_size against every required signer's
// forum bandwidth, and, if the transaction contains a market operation,
// additionally charges 10x trx_size against each signer's market bandwidth
// once.
func (m *BandwidthMeter) OnPreApplyTransaction(n TransactionNotification) error {
	if m.engine.TotalStake() == 0 {
		return nil
	}
	trx := n.Transaction
	now := m.engine.HeadBlockTime()
	hasMarket := false
	for _, op := range trx.Operations {
		if marketOperationKinds[op.Kind()] {
			hasMarket = true
			break
		}
	}
	for _, signer := range trx.RequiredSigners {
		if err := m.charge(signer, BandwidthForum, trx.SerializedSize, now); err != nil {
			return err
		}
		if hasMarket {
			if err := m.charge(signer, BandwidthMarket, 10*trx.SerializedSize, now); err != nil {
				return err
			}
		}
	}
	return nil
}

// charge applies the exponentially-weighted update to the account's
// bandwidth record and then runs the cap check that follows it.
func (m *BandwidthMeter) charge(account string, kind BandwidthKind, weight uint64, now time.Time) error {
	m.mu.Lock()
	rec := m.record(account, kind)

	dt := now.Sub(rec.LastUpdate)
	if dt < 0 {
		dt = 0
	}
	seconds := uint64(dt / time.Second)

	var newAvg *uint256.Int
	if seconds > BandwidthAverageWindow {
		newAvg = uint256.NewInt(0)
	} else {
		window := uint256.NewInt(BandwidthAverageWindow)
		elapsed := uint256.NewInt(seconds)
		remaining := new(uint256.Int).Sub(window, elapsed)
		newAvg = new(uint256.Int).Mul(remaining, rec.AverageBandwidth)
		newAvg.Div(newAvg, window)
	}

	charge := new(uint256.Int).Mul(uint256.NewInt(weight), uint256.NewInt(BandwidthPrecision))
	newAvg = new(uint256.Int).Add(newAvg, charge)

	rec.AverageBandwidth = newAvg
	rec.LifetimeBandwidth = new(uint256.Int).Add(rec.LifetimeBandwidth, charge)
	rec.LastUpdate = now

	if m.onCharge != nil {
		m.onCharge(BandwidthUpdateEvent{
			Account:           account,
			Kind:              kind,
			AverageBandwidth:  new(uint256.Int).Set(newAvg),
			LifetimeBandwidth: new(uint256.Int).Set(rec.LifetimeBandwidth),
			LastUpdate:        now,
			TrxSize:           weight,
		})
	}
	m.mu.Unlock()

	return m.checkCap(account, newAvg)
}

// checkCap enforces the bandwidth cap: an account's stake-weighted share
// of max_virtual_bandwidth, v*M, must exceed its new average usage scaled
// by total stake, newAvg*V.
func (m *BandwidthMeter) checkCap(account string, newAvg *uint256.Int) error {
	enforcementActive := m.engine.IsProducing() &&
		(!m.engine.HasHardfork(m.bandwidthHardfork) || !m.skipEnforce)
	if !enforcementActive {
		return nil
	}

	v := m.engine.EffectiveStake(account)
	V := m.engine.TotalStake()
	if V == 0 {
		return nil
	}
	M := m.currentMaxVirtualBandwidth()
	if M == nil {
		return nil
	}

	lhs := new(uint256.Int).Mul(uint256.NewInt(v), M)
	rhs := new(uint256.Int).Mul(newAvg, uint256.NewInt(V))

	if lhs.Cmp(rhs) > 0 {
		return nil
	}
	return newPolicyError("account exceeded bandwidth allowance",
		"account", account, "effective_stake", v, "total_stake", V,
		"average_bandwidth", newAvg.String(), "max_virtual_bandwidth", M.String())
}

// currentMaxVirtualBandwidth is supplied by the reserve-ratio controller;
// wired in by the Plugin at construction time.
func (m *BandwidthMeter) currentMaxVirtualBandwidth() *uint256.Int {
	if m.maxVirtualBandwidthFn == nil {
		return nil
	}
	return m.maxVirtualBandwidthFn()
}
