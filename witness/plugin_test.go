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

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	e := newFakeEngine()
	p := &fakePeer{}
	cfg := Config{Witnesses: []string{"alice"}, SkipEnforceBandwidth: false}

	_, err := New(e, p, cfg, time.Time{})
	require.Error(t, err)
}

func TestNewWiresReserveRatioIntoBandwidthCap(t *testing.T) {
	e := newFakeEngine()
	p := &fakePeer{}
	cfg := DefaultConfig

	plugin, err := New(e, p, cfg, time.Time{})
	require.NoError(t, err)
	require.Nil(t, plugin.bandwidth.currentMaxVirtualBandwidth())

	plugin.reserveRatio.OnPostApplyBlock(1, 1000, MaxBlockSize)
	require.NotNil(t, plugin.bandwidth.currentMaxVirtualBandwidth())
}

func TestBindEventsRegistersAllFiveHooks(t *testing.T) {
	e := newFakeEngine()
	p := &fakePeer{}
	plugin, err := New(e, p, DefaultConfig, time.Time{})
	require.NoError(t, err)

	plugin.bindEvents()

	require.Len(t, e.preApplyBlockHandlers, 1)
	require.Len(t, e.preApplyTrxHandlers, 1)
	require.Len(t, e.preApplyOpHandlers, 1)
	require.Len(t, e.postApplyOpHandlers, 1)
	require.Len(t, e.postApplyBlockHandlers, 1)
}

func TestPostApplyBlockResetsDuplicateCustomAndUpdatesReserveRatio(t *testing.T) {
	e := newFakeEngine()
	e.maxBlockSize = MaxBlockSize
	e.producing = true
	p := &fakePeer{}
	plugin, err := New(e, p, DefaultConfig, time.Time{})
	require.NoError(t, err)
	plugin.bindEvents()

	n := OperationNotification{
		Operation:        CustomJSONOperation{ID: "app"},
		ImpactedAccounts: []string{"alice"},
	}
	require.NoError(t, e.postApplyOpHandlers[0](n))
	require.Error(t, e.postApplyOpHandlers[0](n))

	e.postApplyBlockHandlers[0](BlockNotification{Number: 1, Size: 1000})
	require.NoError(t, e.postApplyOpHandlers[0](n))

	require.NotNil(t, plugin.ReserveRatio().MaxVirtualBandwidth)
}
