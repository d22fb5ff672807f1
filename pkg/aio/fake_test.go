//go:build linux

package aio

// fakePoller resolves every submitted operation synchronously through a
// caller supplied handler, recording what actually reached it. It follows
// the same pre-submission step as the ring, so lazy descriptor creation
// behaves identically under test.
type fakePoller struct {
	submitted []*Operation
	handle    func(op *Operation) (res int32, flags uint32)
}

func (p *fakePoller) Submit(op *Operation) SubmitOutcome {
	if !op.submitAble() {
		return SubmitResolved
	}
	if op.prepareSubmit() {
		return SubmitResolved
	}
	p.submitted = append(p.submitted, op)
	res, flags := p.handle(op)
	op.completeRaw(res, flags)
	return SubmitPending
}
