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
	"time"

	"github.com/holiman/uint256"
)

// BigUint is the wide-integer type used for bandwidth accounting and the
// reserve-ratio virtual-bandwidth figure; consensus state must never depend
// on floating point.
type BigUint = uint256.Int

// BandwidthKind distinguishes ordinary forum traffic from market (order
// book) traffic, which is charged at a 10x weight.
type BandwidthKind int

const (
	BandwidthForum BandwidthKind = iota
	BandwidthMarket
)

func (k BandwidthKind) String() string {
	if k == BandwidthMarket {
		return "market"
	}
	return "forum"
}

// BandwidthRecord is the per-(account, kind) accounting record. average_bandwidth
// and lifetime_bandwidth are kept as 256-bit integers because the feedback
// arithmetic in the reserve-ratio controller and the cap check both require
// a wide multiply that overflows 64 bits for busy accounts.
type BandwidthRecord struct {
	Account           string
	Kind              BandwidthKind
	AverageBandwidth  *uint256.Int
	LifetimeBandwidth *uint256.Int
	LastUpdate        time.Time
}

func newBandwidthRecord(account string, kind BandwidthKind) *BandwidthRecord {
	return &BandwidthRecord{
		Account:           account,
		Kind:              kind,
		AverageBandwidth:  uint256.NewInt(0),
		LifetimeBandwidth: uint256.NewInt(0),
	}
}

// ReserveRatioRecord is the singleton reserve-ratio accounting record.
type ReserveRatioRecord struct {
	AverageBlockSize    uint64
	CurrentReserveRatio uint64
	MaxVirtualBandwidth *uint256.Int
}

// Operation is implemented by every operation kind the policy checker and
// bandwidth meter inspect. Kinds outside this set are simply not dispatched.
type Operation interface {
	Kind() string
}

// CommentOperation models a post or reply.
type CommentOperation struct {
	Author         string
	Permlink       string
	ParentAuthor   string
	ParentPermlink string
}

func (CommentOperation) Kind() string { return "comment" }

// CommentOptionsExtension is the sum type of recognized comment-options
// extension variants.
type CommentOptionsExtension interface {
	isCommentOptionsExtension()
}

// BeneficiaryExtension carries payout beneficiaries; limited to 8 entries.
type BeneficiaryExtension struct {
	Beneficiaries []Beneficiary
}

func (BeneficiaryExtension) isCommentOptionsExtension() {}

// Beneficiary is one payout-split entry.
type Beneficiary struct {
	Account string
	Weight  uint16
}

// AllowedVoteAssetsExtension is accepted silently; nothing enforces it.
type AllowedVoteAssetsExtension struct {
	AssetSymbols []string
}

func (AllowedVoteAssetsExtension) isCommentOptionsExtension() {}

// CommentOptionsOperation carries zero or more extensions for a comment.
type CommentOptionsOperation struct {
	Author     string
	Permlink   string
	Extensions []CommentOptionsExtension
}

func (CommentOptionsOperation) Kind() string { return "comment_options" }

// transferLike is implemented by the three memo-bearing transfer kinds so
// the policy checker can share one arm for all of them.
type transferLike interface {
	Operation
	transferMemo() (sender string, memo string)
}

// TransferOperation is an ordinary balance transfer.
type TransferOperation struct {
	From, To string
	Memo     string
}

func (TransferOperation) Kind() string                     { return "transfer" }
func (t TransferOperation) transferMemo() (string, string) { return t.From, t.Memo }

// TransferToSavingsOperation moves balance into the savings sub-account.
type TransferToSavingsOperation struct {
	From, To string
	Memo     string
}

func (TransferToSavingsOperation) Kind() string                     { return "transfer_to_savings" }
func (t TransferToSavingsOperation) transferMemo() (string, string) { return t.From, t.Memo }

// TransferFromSavingsOperation withdraws balance from the savings sub-account.
type TransferFromSavingsOperation struct {
	From, To string
	Memo     string
}

func (TransferFromSavingsOperation) Kind() string                     { return "transfer_from_savings" }
func (t TransferFromSavingsOperation) transferMemo() (string, string) { return t.From, t.Memo }

// CustomJSONOperation carries an application-defined JSON payload.
type CustomJSONOperation struct {
	ID                   string
	RequiredAuths        []string
	RequiredPostingAuths []string
	JSON                 string
}

func (CustomJSONOperation) Kind() string { return "custom_json" }

// CustomBinaryOperation carries an application-defined binary payload.
type CustomBinaryOperation struct {
	ID                   string
	RequiredAuths        []string
	RequiredPostingAuths []string
	Data                 []byte
}

func (CustomBinaryOperation) Kind() string { return "custom_binary" }

// CustomOperation is the generic, unstructured custom operation kind.
type CustomOperation struct {
	RequiredAuths []string
	Data          []byte
}

func (CustomOperation) Kind() string { return "custom" }

// Transaction is the minimal shape the bandwidth meter and policy checker
// need: its signers and its operations.
type Transaction struct {
	Operations      []Operation
	RequiredSigners []string
	SerializedSize  uint64
}

// Comment is the minimal shape the comment-depth check needs.
type Comment struct {
	Author         string
	Permlink       string
	ParentAuthor   string
	ParentPermlink string
	Depth          int
}

// RootSentinelAuthor marks a top-level post (no parent).
const RootSentinelAuthor = ""

// Authority holds an authority's public keys; weights are not modelled, as
// only the keys matter to the memo check.
type Authority struct {
	Keys []string
}

// Account is the minimal shape the memo-leak check and the bandwidth meter
// need: its authority key lists, its memo key, and its stake.
type Account struct {
	Name           string
	Owner          Authority
	Active         Authority
	Posting        Authority
	MemoKey        string
	EffectiveStake uint64

	// SigningKey is the witness's configured block-signing public key,
	// distinct from its owner/active/posting/memo keys. Only populated
	// for accounts that are registered as witnesses.
	SigningKey string
}
