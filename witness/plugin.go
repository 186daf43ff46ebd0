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

// Package witness implements the block-producing subsystem: slot scheduling
// and signing, the reserve-ratio and bandwidth accounting controllers, and
// the policy predicates enforced on locally produced blocks.
package witness

import (
	"time"

	"github.com/bearshares/bears/witness/internal/wlog"
)

// Plugin wires the subsystem's six components together and exposes the
// lifecycle a hosting node drives it with (Start/Stop), the way
// datasync/chaindatafetcher.ChainDataFetcher is driven by node.Service.
type Plugin struct {
	engine ChainEngine
	peer   PeerLayer
	cfg    Config
	log    *wlog.Logger

	keystore     *KeyStore
	policy       *PolicyChecker
	bandwidth    *BandwidthMeter
	reserveRatio *ReserveRatioController
	production   *ProductionLoop

	export ExportSink
}

// New constructs the plugin, parses configured keys, and validates startup
// preconditions. It does not start the production loop or
// register any hooks; call Start for that.
func New(engine ChainEngine, peer PeerLayer, cfg Config, genesisTime time.Time) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	keystore, err := NewKeyStore(cfg.Witnesses, cfg.PrivateKeys)
	if err != nil {
		return nil, err
	}

	bandwidth := NewBandwidthMeter(engine, cfg.SkipEnforceBandwidth)
	reserveRatio := NewReserveRatioController()
	bandwidth.SetMaxVirtualBandwidthSource(reserveRatio.CurrentMaxVirtualBandwidth)

	p := &Plugin{
		engine:       engine,
		peer:         peer,
		cfg:          cfg,
		log:          wlog.NewModuleLogger("witness"),
		keystore:     keystore,
		policy:       NewPolicyChecker(engine),
		bandwidth:    bandwidth,
		reserveRatio: reserveRatio,
		production:   NewProductionLoop(engine, peer, keystore, cfg, genesisTime),
	}
	return p, nil
}

// SetExportSink wires the optional block-data-export collaborator. Once
// set, every post-apply-block reserve-ratio update and every bandwidth
// charge is also forwarded to the sink.
func (p *Plugin) SetExportSink(sink ExportSink, blockNumberFn func() uint64) {
	p.export = sink
	p.reserveRatio.SetExportHook(func(snap ExportSnapshot) {
		if err := p.export.WriteSnapshot(blockNumberFn(), snap); err != nil {
			p.log.Warn("failed to export reserve-ratio snapshot", "err", err)
		}
	})
	p.bandwidth.SetExportHook(func(ev BandwidthUpdateEvent) {
		if err := p.export.WriteBandwidthEvents(blockNumberFn(), []BandwidthUpdateEvent{ev}); err != nil {
			p.log.Warn("failed to export bandwidth event", "err", err)
		}
	})
}

// Start binds the subsystem's event handlers to the chain engine and, if a
// producer is configured, starts the production loop.
func (p *Plugin) Start() {
	p.bindEvents()
	p.production.Start()
}

// Stop cancels the production loop. Chain-apply handlers remain registered
// for the lifetime of the chain engine; they hold no resources to release.
func (p *Plugin) Stop() {
	p.production.Stop()
}

// KeyStore exposes the plugin's key store, e.g. for an RPC API that reports
// which producers this node can sign for.
func (p *Plugin) KeyStore() *KeyStore { return p.keystore }

// ReserveRatio exposes the current reserve-ratio snapshot.
func (p *Plugin) ReserveRatio() ReserveRatioRecord { return p.reserveRatio.Snapshot() }
