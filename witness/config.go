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
	"gopkg.in/urfave/cli.v1"
)

// Config is the witness subsystem's configuration surface. All options have
// process-scope effect.
type Config struct {
	Witnesses   []string // --witness, repeatable
	PrivateKeys []string // --private-key, repeatable, WIF-encoded

	// EnableStaleProduction allows producing before the node has caught up
	// to wall time; it also sets SkipUndoHistory on generated blocks.
	EnableStaleProduction bool

	// RequiredParticipation is a percent (0-99) of the producer set that
	// must be reported participating.
	RequiredParticipation int

	// SkipEnforceBandwidth, if true, computes the bandwidth cap but does
	// not enforce it.
	SkipEnforceBandwidth bool

	// ResourceCreditRejectOnInsufficientCredit is read from the sibling
	// resource-credit plugin's configuration and checked at startup.
	ResourceCreditRejectOnInsufficientCredit bool
}

// DefaultConfig mirrors the default flag values.
var DefaultConfig = Config{
	RequiredParticipation: 33,
	SkipEnforceBandwidth:  true,
}

var (
	WitnessFlag = cli.StringSliceFlag{
		Name:  "witness",
		Usage: "Producer account this node will produce blocks for (repeatable)",
	}
	PrivateKeyFlag = cli.StringSliceFlag{
		Name:  "private-key",
		Usage: "WIF-encoded private key for a configured witness (repeatable)",
	}
	EnableStaleProductionFlag = cli.BoolFlag{
		Name:  "enable-stale-production",
		Usage: "Allow producing before the node has caught up to wall-clock time",
	}
	RequiredParticipationFlag = cli.IntFlag{
		Name:  "required-participation",
		Usage: "Percent of the witness set that must report participating",
		Value: DefaultConfig.RequiredParticipation,
	}
	WitnessSkipEnforceBandwidthFlag = cli.BoolTFlag{
		Name:  "witness-skip-enforce-bandwidth",
		Usage: "Compute the bandwidth cap without enforcing it",
	}
)

// Flags is the full CLI flag surface registered by this subsystem, in the
// shape cmd/utils/flags.go registers flags for the rest of the node.
var Flags = []cli.Flag{
	WitnessFlag,
	PrivateKeyFlag,
	EnableStaleProductionFlag,
	RequiredParticipationFlag,
	WitnessSkipEnforceBandwidthFlag,
}

// ConfigFromCLI builds a Config from a parsed CLI context.
func ConfigFromCLI(ctx *cli.Context) Config {
	cfg := DefaultConfig
	if ctx.IsSet(WitnessFlag.Name) {
		cfg.Witnesses = ctx.StringSlice(WitnessFlag.Name)
	}
	if ctx.IsSet(PrivateKeyFlag.Name) {
		cfg.PrivateKeys = ctx.StringSlice(PrivateKeyFlag.Name)
	}
	cfg.EnableStaleProduction = ctx.Bool(EnableStaleProductionFlag.Name)
	if ctx.IsSet(RequiredParticipationFlag.Name) {
		cfg.RequiredParticipation = ctx.Int(RequiredParticipationFlag.Name)
	}
	cfg.SkipEnforceBandwidth = ctx.BoolT(WitnessSkipEnforceBandwidthFlag.Name)
	return cfg
}

// Validate enforces the startup preconditions: if at least one producer is
// configured, both witness-skip-enforce-bandwidth=on and the sibling
// resource-credit plugin's reject-on-insufficient-credit flag being off are
// required.
func (c Config) Validate() error {
	if len(c.Witnesses) == 0 {
		return nil
	}
	if !c.SkipEnforceBandwidth {
		return &StartupError{Detail: "witness-skip-enforce-bandwidth must be enabled while producing"}
	}
	if c.ResourceCreditRejectOnInsufficientCredit {
		return &StartupError{Detail: "resource-credit reject-on-insufficient-credit must be disabled while producing"}
	}
	return nil
}
