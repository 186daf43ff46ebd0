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
	"crypto/sha256"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bearshares/bears/witness/internal/wif"
)

// maxBeneficiaries is the cap enforced on the payout-beneficiaries
// comment-options extension.
const maxBeneficiaries = 8

// PolicyChecker applies a set of pure predicates over operations as they are
// produced locally: comment nesting depth, beneficiary count, leaked memo
// keys, and duplicate custom-JSON per account per block. The first three
// run from pre-apply-operation and the duplicate-custom tracking from
// post-apply-operation, in both cases only while the chain engine reports
// is_producing; replay and peer-block validation never run these checks.
type PolicyChecker struct {
	engine ChainEngine

	mu         sync.Mutex
	seenCustom map[string]struct{} // per-block duplicate-custom set
}

// NewPolicyChecker constructs a checker bound to engine, used to load
// parent comments and account authorities.
func NewPolicyChecker(engine ChainEngine) *PolicyChecker {
	return &PolicyChecker{
		engine:     engine,
		seenCustom: make(map[string]struct{}),
	}
}

// OnPreApplyBlock clears the per-block duplicate-custom set.
func (p *PolicyChecker) OnPreApplyBlock(BlockNotification) {
	p.mu.Lock()
	p.seenCustom = make(map[string]struct{})
	p.mu.Unlock()
}

// OnPostApplyBlock clears the set again: it is cleared both at pre-apply of
// each block and again after post-apply, so a late post-apply-operation
// callback can never leak a stale entry into the next block.
func (p *PolicyChecker) OnPostApplyBlock(BlockNotification) {
	p.mu.Lock()
	p.seenCustom = make(map[string]struct{})
	p.mu.Unlock()
}

// OnPreApplyOperation dispatches operation-kind-specific predicates. It is
// a no-op for any operation kind it does not recognize.
func (p *PolicyChecker) OnPreApplyOperation(n OperationNotification) error {
	if !p.engine.IsProducing() {
		return nil
	}
	switch op := n.Operation.(type) {
	case CommentOperation:
		return p.checkCommentDepth(op)
	case CommentOptionsOperation:
		return p.checkCommentOptions(op)
	case transferLike:
		return p.checkTransferMemo(op)
	default:
		return nil
	}
}

// OnPostApplyOperation tracks duplicate custom-JSON/binary/generic-custom
// submissions per account per block, while producing.
func (p *PolicyChecker) OnPostApplyOperation(n OperationNotification) error {
	if !customOperationKinds[n.Operation.Kind()] {
		return nil
	}
	if !p.engine.IsProducing() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, account := range n.ImpactedAccounts {
		if _, seen := p.seenCustom[account]; seen {
			return newPolicyError("account already submitted a custom operation this block",
				"account", account, "operation", n.Operation.Kind())
		}
		p.seenCustom[account] = struct{}{}
	}
	return nil
}

func (p *PolicyChecker) checkCommentDepth(op CommentOperation) error {
	if op.ParentAuthor == RootSentinelAuthor {
		return nil
	}
	parent, ok := p.engine.FindComment(op.ParentAuthor, op.ParentPermlink)
	if !ok {
		return nil
	}
	if parent.Depth >= SoftMaxCommentDepth {
		return newPolicyError("comment is nested too deeply",
			"parent_depth", parent.Depth, "depth", parent.Depth+1, "max_depth", SoftMaxCommentDepth)
	}
	return nil
}

func (p *PolicyChecker) checkCommentOptions(op CommentOptionsOperation) error {
	for _, ext := range op.Extensions {
		switch e := ext.(type) {
		case BeneficiaryExtension:
			if len(e.Beneficiaries) > maxBeneficiaries {
				return newPolicyError("comment options specifies too many beneficiaries",
					"count", len(e.Beneficiaries), "max", maxBeneficiaries)
			}
		case AllowedVoteAssetsExtension:
			// Accepted silently: nothing enforces the allowed-vote-assets
			// list today.
		default:
			// Unrecognized extension variants are accepted.
		}
	}
	return nil
}

func (p *PolicyChecker) checkTransferMemo(op transferLike) error {
	sender, memo := op.transferMemo()
	if memo == "" {
		return nil
	}
	account, err := p.engine.GetAccount(sender)
	if err != nil {
		return nil
	}
	return checkMemo(memo, account)
}

// checkMemo derives candidate public keys from memo and fails if any
// matches an authority key (or the memo key) of account.
func checkMemo(memo string, account *Account) error {
	for _, candidate := range memoCandidates(memo, account.Name) {
		if role, ok := matchesAuthority(candidate, account); ok {
			return newPolicyError("detected private "+role+" key in memo field",
				"account", account.Name, "key", candidate)
		}
	}
	return nil
}

// memoCandidates enumerates the public keys that could have leaked into
// memo: a directly WIF-encoded private key, or one derived from the
// account's name, role, and the memo text itself.
func memoCandidates(memo, account string) []string {
	var candidates []string
	if priv, err := wif.Decode(memo); err == nil {
		candidates = append(candidates, wif.PublicKeyString(priv))
	}
	for _, role := range []string{"owner", "active", "posting"} {
		h := sha256.Sum256([]byte(account + role + memo))
		priv, _ := btcec.PrivKeyFromBytes(h[:])
		candidates = append(candidates, wif.PublicKeyString(priv))
	}
	return candidates
}

func matchesAuthority(candidate string, account *Account) (role string, ok bool) {
	for _, k := range account.Owner.Keys {
		if k == candidate {
			return "owner", true
		}
	}
	for _, k := range account.Active.Keys {
		if k == candidate {
			return "active", true
		}
	}
	for _, k := range account.Posting.Keys {
		if k == candidate {
			return "posting", true
		}
	}
	if account.MemoKey == candidate {
		return "memo", true
	}
	return "", false
}
