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

import "fmt"

// PolicyError is raised by the policy checker and the bandwidth meter when
// producing; the chain engine is expected to reject the offending
// operation/transaction and roll back its enclosing transaction.
type PolicyError struct {
	Reason  string
	Context map[string]interface{}
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("witness: policy violation: %s %v", e.Reason, e.Context)
}

func newPolicyError(reason string, kv ...interface{}) *PolicyError {
	ctx := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx[key] = kv[i+1]
	}
	return &PolicyError{Reason: reason, Context: ctx}
}

// InvariantViolation signals a bug in the slot calculator or a caller that
// handed the production loop a clock reading that violates the chain's
// monotonicity invariant. It is always fatal.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "witness: invariant violation: " + e.Detail
}

// StartupError prevents the node from starting; Config.Validate returns it
// for conflicting flags. A bad private key is reported by NewKeyStore as a
// wrapped decode error rather than a StartupError.
type StartupError struct {
	Detail string
}

func (e *StartupError) Error() string {
	return "witness: startup error: " + e.Detail
}
