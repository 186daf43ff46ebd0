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

// Chain-wide consensus parameters. These mirror the constants a real chain
// engine would expose as part of its consensus parameter set; they are
// pinned here as the values this subsystem was written against.
const (
	// BandwidthPrecision scales trx_size into bandwidth units.
	BandwidthPrecision = 1000 * 1000

	// BandwidthAverageWindow is the EWMA window, in seconds, used by the
	// bandwidth meter.
	BandwidthAverageWindow = 60 * 60 * 24 * 7 // one week

	// BlockInterval is the nominal spacing between blocks, in seconds.
	BlockInterval = 3

	// ReserveRatioPrecision scales current_reserve_ratio.
	ReserveRatioPrecision = 10000

	// ReserveRatioMinIncrement is the minimum step the reserve-ratio
	// controller takes when widening capacity.
	ReserveRatioMinIncrement = 1000

	// MaxReserveRatio bounds current_reserve_ratio, in units of
	// ReserveRatioPrecision.
	MaxReserveRatio = 20000

	// MaxBlockSize is the default max block size used to seed
	// max_virtual_bandwidth before the chain engine has reported one.
	MaxBlockSize = 2 * 1024 * 1024

	// SoftMaxCommentDepth is the maximum comment nesting depth allowed for
	// locally produced blocks.
	SoftMaxCommentDepth = 0xFFFF

	// OnePercent is 1% expressed in the precision used by participation
	// and reserve-ratio fractions.
	OnePercent = 100

	// BlockProducingLagTime is the maximum allowed drift, in milliseconds,
	// between a scheduled slot time and wall time at block-generation time.
	BlockProducingLagTime = 750 * time.Millisecond

	// BlockProductionLoopSleepTime is the nominal tick period of the
	// production loop.
	BlockProductionLoopSleepTime = 200 * time.Millisecond

	// blockProductionLoopMinSleepTime is the floor applied when the next
	// 200ms boundary is less than this far away, to avoid busy-looping on
	// clock skew.
	blockProductionLoopMinSleepTime = 50 * time.Millisecond

	// DistanceCalcPrecision is the fixed-point precision used by the
	// reserve-ratio feedback equations.
	DistanceCalcPrecision = 10000
)

// marketOperationKinds is the well-known set of operation kinds that incur
// the additional market bandwidth charge.
var marketOperationKinds = map[string]bool{
	"limit_order_create":  true,
	"limit_order_create2": true,
	"limit_order_cancel":  true,
	"fill_order":          true,
	"convert":             true,
}

// customOperationKinds is the set of operation kinds tracked by the
// duplicate-custom-JSON guard.
var customOperationKinds = map[string]bool{
	"custom_json":   true,
	"custom_binary": true,
	"custom":        true,
}
