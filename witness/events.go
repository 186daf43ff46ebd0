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

// bindEvents registers the five handlers against the chain engine in
// dependence order: pre-apply-block, pre-apply-transaction,
// pre-apply-operation, post-apply-operation, post-apply-block. All of them
// run synchronously on the chain-apply flow; none of them may suspend.
//
// The duplicate-custom reset that belongs at the start of a block is
// registered against pre-apply-block, and the reserve-ratio update that
// belongs at the end of a block is registered against post-apply-block —
// an easy pair to swap, so the distinction is called out here.
func (p *Plugin) bindEvents() {
	p.engine.RegisterPreApplyBlock(p.policy.OnPreApplyBlock)
	p.engine.RegisterPreApplyTransaction(p.onPreApplyTransaction)
	p.engine.RegisterPreApplyOperation(p.onPreApplyOperation)
	p.engine.RegisterPostApplyOperation(p.onPostApplyOperation)
	p.engine.RegisterPostApplyBlock(p.onPostApplyBlock)
}

func (p *Plugin) onPreApplyTransaction(n TransactionNotification) error {
	if err := p.bandwidth.OnPreApplyTransaction(n); err != nil {
		p.log.Warn("bandwidth cap exceeded", "err", err)
		return err
	}
	return nil
}

func (p *Plugin) onPreApplyOperation(n OperationNotification) error {
	if err := p.policy.OnPreApplyOperation(n); err != nil {
		p.log.Warn("policy check failed", "err", err)
		return err
	}
	return nil
}

func (p *Plugin) onPostApplyOperation(n OperationNotification) error {
	if err := p.policy.OnPostApplyOperation(n); err != nil {
		p.log.Warn("policy check failed", "err", err)
		return err
	}
	return nil
}

func (p *Plugin) onPostApplyBlock(n BlockNotification) {
	p.policy.OnPostApplyBlock(n)
	p.reserveRatio.OnPostApplyBlock(n.Number, n.Size, p.engine.MaxBlockSize())
}
