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

	"github.com/holiman/uint256"

	"github.com/bearshares/bears/witness/internal/wlog"
)

var rrLogger = wlog.NewModuleLogger("reserveratio")

// ReserveRatioController is the global feedback loop that regulates
// effective bandwidth capacity from observed average block size. It is
// invoked from post-apply-block with the just-applied block's serialized
// size and the chain's configured max_block_size.
type ReserveRatioController struct {
	mu     sync.Mutex
	record *ReserveRatioRecord

	onUpdate func(ExportSnapshot) // optional export hook
}

// NewReserveRatioController constructs an empty controller; the record is
// created lazily on the first OnPostApplyBlock call.
func NewReserveRatioController() *ReserveRatioController {
	return &ReserveRatioController{}
}

// SetExportHook registers a callback invoked after every update, used by
// the export factory to emit ExportSnapshot records.
func (c *ReserveRatioController) SetExportHook(fn func(ExportSnapshot)) {
	c.onUpdate = fn
}

// CurrentMaxVirtualBandwidth returns the controller's current
// max_virtual_bandwidth, or nil if no block has been applied yet. Wired
// into the bandwidth meter's cap check.
func (c *ReserveRatioController) CurrentMaxVirtualBandwidth() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		return nil
	}
	return c.record.MaxVirtualBandwidth
}

// Snapshot returns a copy of the controller's current record, or the zero
// value if no block has been applied yet.
func (c *ReserveRatioController) Snapshot() ReserveRatioRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		return ReserveRatioRecord{}
	}
	return *c.record
}

// initialMaxVirtualBandwidth seeds max_virtual_bandwidth from the package's
// constant MaxBlockSize, not the dynamic max_block_size the chain engine
// reports — the same constant-vs-dynamic seed the original witness plugin
// uses for its first-call initialization, before the dynamic global
// properties object has had a chance to diverge from genesis defaults.
func initialMaxVirtualBandwidth() *uint256.Int {
	mv := new(uint256.Int).Mul(uint256.NewInt(MaxBlockSize), uint256.NewInt(MaxReserveRatio))
	mv.Mul(mv, uint256.NewInt(BandwidthPrecision))
	mv.Mul(mv, uint256.NewInt(BandwidthAverageWindow))
	mv.Div(mv, uint256.NewInt(BlockInterval))
	return mv
}

func recomputeMaxVirtualBandwidth(maxBlockSize, reserveRatio uint64) *uint256.Int {
	mv := new(uint256.Int).Mul(uint256.NewInt(maxBlockSize), uint256.NewInt(reserveRatio))
	mv.Mul(mv, uint256.NewInt(BandwidthPrecision))
	mv.Mul(mv, uint256.NewInt(BandwidthAverageWindow))
	mv.Div(mv, uint256.NewInt(BlockInterval))
	mv.Div(mv, uint256.NewInt(ReserveRatioPrecision))
	return mv
}

// OnPostApplyBlock updates average_block_size on every call and, every 20
// blocks, runs the feedback equations that adjust current_reserve_ratio.
func (c *ReserveRatioController) OnPostApplyBlock(headBlockNum uint64, blockSize, maxBlockSize uint64) {
	c.mu.Lock()
	if c.record == nil {
		c.record = &ReserveRatioRecord{
			AverageBlockSize:    0,
			CurrentReserveRatio: MaxReserveRatio * ReserveRatioPrecision,
			MaxVirtualBandwidth: initialMaxVirtualBandwidth(),
		}
	}
	rec := c.record

	rec.AverageBlockSize = (99*rec.AverageBlockSize + blockSize) / 100

	if headBlockNum%20 == 0 {
		before := rec.CurrentReserveRatio
		rec.CurrentReserveRatio = adjustReserveRatio(rec.AverageBlockSize, maxBlockSize, rec.CurrentReserveRatio)
		rec.MaxVirtualBandwidth = recomputeMaxVirtualBandwidth(maxBlockSize, rec.CurrentReserveRatio)
		if rec.CurrentReserveRatio != before {
			rrLogger.Info("reserve ratio changed",
				"old_ratio", before, "new_ratio", rec.CurrentReserveRatio,
				"average_block_size", rec.AverageBlockSize, "head_block_num", headBlockNum)
		}
	}

	snap := ExportSnapshot{
		AverageBlockSize:    rec.AverageBlockSize,
		CurrentReserveRatio: rec.CurrentReserveRatio,
		MaxVirtualBandwidth: new(uint256.Int).Set(rec.MaxVirtualBandwidth),
		BlockSize:           blockSize,
	}
	hook := c.onUpdate
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// adjustReserveRatio implements the pressure/slack feedback equations. The
// distance d can be negative and is computed in int64 from
// average_block_size and maxBlockSize; the products R*d are carried in
// uint256 so they cannot silently overflow.
func adjustReserveRatio(averageBlockSize, maxBlockSize, ratio uint64) uint64 {
	quarter := int64(maxBlockSize / 4)
	if quarter == 0 {
		quarter = 1
	}
	d := (int64(averageBlockSize) - quarter) * DistanceCalcPrecision / quarter

	r := new(uint256.Int).SetUint64(ratio)

	if d > 0 {
		// Pressure: R -= (R*d)/(d+P), clamped to >= precision.
		num := new(uint256.Int).Mul(r, uint256.NewInt(uint64(d)))
		num.Div(num, uint256.NewInt(uint64(d+DistanceCalcPrecision)))
		if num.Cmp(r) >= 0 {
			return ReserveRatioPrecision
		}
		newR := new(uint256.Int).Sub(r, num)
		if newR.LtUint64(ReserveRatioPrecision) {
			return ReserveRatioPrecision
		}
		return newR.Uint64()
	}

	// Slack: R += max(min_increment, (R*d)/(d-P)). d<=0 makes both the
	// numerator and denominator non-positive, so the quotient itself is
	// non-negative and grows from 0 toward R/2 as slack deepens (d is never
	// below -P); the max against min_increment only matters when slack is
	// shallow.
	var increment uint64
	if d == 0 {
		increment = ReserveRatioMinIncrement
	} else {
		num := new(uint256.Int).Mul(r, uint256.NewInt(uint64(-d)))
		num.Div(num, uint256.NewInt(uint64(DistanceCalcPrecision-d)))
		candidate := num.Uint64() // (R*d)/(d-P); d-P<0 and d<=0 so this quotient is >=0
		increment = ReserveRatioMinIncrement
		if candidate > increment {
			increment = candidate
		}
	}
	newR := ratio + increment
	if newR > MaxReserveRatio*ReserveRatioPrecision {
		return MaxReserveRatio * ReserveRatioPrecision
	}
	return newR
}
