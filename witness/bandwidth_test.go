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
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestBandwidthMeterBypassesWhenTotalStakeZero(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 0
	m := NewBandwidthMeter(e, false)

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice"},
		SerializedSize:  1000,
	}})
	require.NoError(t, err)
}

func TestBandwidthMeterChargesEachRequiredSigner(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	e.headBlockTime = time.Unix(1000, 0)
	m := NewBandwidthMeter(e, true) // skip enforcement so the charge alone is under test

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice", "bob"},
		SerializedSize:  1000,
	}})
	require.NoError(t, err)

	recA := m.record("alice", BandwidthForum)
	recB := m.record("bob", BandwidthForum)
	expected := new(uint256.Int).Mul(uint256.NewInt(1000), uint256.NewInt(BandwidthPrecision))
	require.Equal(t, expected.String(), recA.AverageBandwidth.String())
	require.Equal(t, expected.String(), recB.AverageBandwidth.String())
}

func TestBandwidthMeterChargesMarketWeightOnMarketOperation(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	e.headBlockTime = time.Unix(1000, 0)
	m := NewBandwidthMeter(e, true)

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice"},
		SerializedSize:  1000,
		Operations:      []Operation{CustomOperation{}, marketOpStub{}},
	}})
	require.NoError(t, err)

	forum := m.record("alice", BandwidthForum).AverageBandwidth
	market := m.record("alice", BandwidthMarket).AverageBandwidth

	expectedForum := new(uint256.Int).Mul(uint256.NewInt(1000), uint256.NewInt(BandwidthPrecision))
	expectedMarket := new(uint256.Int).Mul(uint256.NewInt(10*1000), uint256.NewInt(BandwidthPrecision))
	require.Equal(t, expectedForum.String(), forum.String())
	require.Equal(t, expectedMarket.String(), market.String())
}

// marketOpStub is a minimal Operation whose Kind is registered in
// marketOperationKinds, used only to exercise the market-charge branch.
type marketOpStub struct{}

func (marketOpStub) Kind() string { return "convert" }

func TestBandwidthMeterEWMADecaysOverWindow(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	m := NewBandwidthMeter(e, true)

	start := time.Unix(1000, 0)
	require.NoError(t, m.charge("alice", BandwidthForum, 1000, start))
	firstAvg := new(uint256.Int).Set(m.record("alice", BandwidthForum).AverageBandwidth)

	later := start.Add(time.Duration(BandwidthAverageWindow/2) * time.Second)
	require.NoError(t, m.charge("alice", BandwidthForum, 0, later))
	decayed := m.record("alice", BandwidthForum).AverageBandwidth

	require.True(t, decayed.Cmp(firstAvg) < 0)
}

func TestBandwidthMeterEWMAFullyDecaysPastWindow(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	m := NewBandwidthMeter(e, true)

	start := time.Unix(1000, 0)
	require.NoError(t, m.charge("alice", BandwidthForum, 1000, start))

	later := start.Add(time.Duration(BandwidthAverageWindow+1) * time.Second)
	require.NoError(t, m.charge("alice", BandwidthForum, 0, later))
	rec := m.record("alice", BandwidthForum)
	require.True(t, rec.AverageBandwidth.IsZero())
}

func TestBandwidthMeterCapRejectsOverallocation(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	e.effectiveStake["alice"] = 1
	e.producing = true
	m := NewBandwidthMeter(e, false)
	m.SetMaxVirtualBandwidthSource(func() *uint256.Int { return uint256.NewInt(1) })

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice"},
		SerializedSize:  1_000_000,
	}})
	require.Error(t, err)
}

func TestBandwidthMeterCapSkippedWhenNotProducing(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	e.effectiveStake["alice"] = 1
	e.producing = false
	m := NewBandwidthMeter(e, false)
	m.SetMaxVirtualBandwidthSource(func() *uint256.Int { return uint256.NewInt(1) })

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice"},
		SerializedSize:  1_000_000,
	}})
	require.NoError(t, err)
}

func TestBandwidthMeterCapSkippedWhenHardforkRetiresEnforcement(t *testing.T) {
	e := newFakeEngine()
	e.totalStake = 1000
	e.effectiveStake["alice"] = 1
	e.producing = true
	e.hardforks[defaultBandwidthHardfork] = true
	m := NewBandwidthMeter(e, true) // skipEnforceBandwidth
	m.SetMaxVirtualBandwidthSource(func() *uint256.Int { return uint256.NewInt(1) })

	err := m.OnPreApplyTransaction(TransactionNotification{Transaction: &Transaction{
		RequiredSigners: []string{"alice"},
		SerializedSize:  1_000_000,
	}})
	require.NoError(t, err)
}
