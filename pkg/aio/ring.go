//go:build linux

package aio

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/eapache/queue"
	"github.com/pawelgaczynski/giouring"

	"github.com/brimscale/cio/pkg/sys"
)

const (
	DefaultRingEntries = 1024
	DefaultWaitTimeout = 50 * time.Millisecond
)

type RingOptions struct {
	// Entries is the submission queue depth, rounded up to a power of two.
	Entries int
	// WaitTimeout bounds one completion wait so shutdown is seen promptly.
	WaitTimeout time.Duration
}

// NewRing opens an io_uring instance and prepares the submission queue.
// Start must be called before the first Submit.
func NewRing(options RingOptions) (*Ring, error) {
	if !sys.KernelEnable(5, 6) {
		return nil, errors.From(ErrOldKernel)
	}
	entries := options.Entries
	if entries <= 0 {
		entries = DefaultRingEntries
	}
	waitTimeout := options.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	r, rErr := giouring.CreateRing(uint32(roundupPow2(entries)))
	if rErr != nil {
		return nil, rErr
	}
	return &Ring{
		ring:        r,
		queue:       newOperationQueue(entries),
		waitTimeout: waitTimeout,
	}, nil
}

// Ring is the io_uring implementation of Poller. One goroutine drains the
// operation queue into submission queue entries, another waits on the
// completion queue and writes each raw result into its operation's record
// before the awaiting goroutine wakes: a single-writer single-reader
// handoff per operation, no locking.
type Ring struct {
	ring        *giouring.Ring
	queue       *operationQueue
	waitTimeout time.Duration
	closed      atomic.Bool
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// Submit hands one prepared operation to the ring. When the operation's
// pre-submission step fails (connect's lazy socket creation), or the ring
// is shut down, the record is written immediately and SubmitResolved tells
// the caller its next Await returns on the same turn.
func (r *Ring) Submit(op *Operation) SubmitOutcome {
	if !op.submitAble() {
		op.failed(errors.From(ErrUnsupportedOp, errors.WithMeta("reason", "operation submitted twice without reset")))
		return SubmitResolved
	}
	if r.closed.Load() {
		op.failed(errors.From(ErrPollerClosed))
		return SubmitResolved
	}
	if op.prepareSubmit() {
		return SubmitResolved
	}
	for i := 0; i < 10; i++ {
		if r.queue.Enqueue(op) {
			return SubmitPending
		}
		runtime.Gosched()
	}
	op.failed(errors.From(ErrBusy))
	return SubmitResolved
}

func (r *Ring) Start(ctx context.Context) {
	r.stopCh = make(chan struct{})
	r.listenSQ(ctx)
	r.listenCQ(ctx)
}

func (r *Ring) Stop() {
	r.closed.Store(true)
	if r.stopCh != nil {
		close(r.stopCh)
		r.wg.Wait()
	}
	r.ring.QueueExit()
}

func submitRetryable(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.ETIME)
}

func (r *Ring) listenSQ(ctx context.Context) {
	r.wg.Add(1)
	go func(ctx context.Context, r *Ring) {
		defer r.wg.Done()
		var (
			stopCh  = r.stopCh
			ready   = make([]*Operation, r.queue.Cap())
			pending = queue.New() // operations that found no free sqe this cycle
			backlog = false       // flushed entries a failed submit left behind
			idles   = 0
			stopped = false
		)
		for !stopped {
			select {
			case <-ctx.Done():
				stopped = true
			case <-stopCh:
				stopped = true
			default:
				// move freshly enqueued operations behind the leftovers
				peeked := r.queue.PeekBatch(ready)
				for i := int64(0); i < peeked; i++ {
					pending.Add(ready[i])
					ready[i] = nil
				}
				r.queue.Advance(peeked)
				if pending.Length() == 0 && !backlog {
					idles++
					if idles > 10 {
						idles = 0
						runtime.Gosched()
					} else {
						time.Sleep(500 * time.Nanosecond)
					}
					break
				}
				prepared := 0
				for pending.Length() > 0 {
					sqe := r.ring.GetSQE()
					if sqe == nil {
						// sqe space exhausted, keep the rest for next cycle
						break
					}
					op := pending.Remove().(*Operation)
					if packErr := op.packing(sqe); packErr != nil {
						op.failed(packErr)
					}
					prepared++
				}
				if prepared == 0 && !backlog {
					break
				}
				for {
					_, submitErr := r.ring.Submit()
					if submitErr != nil {
						if submitRetryable(submitErr) {
							continue
						}
						// the flushed entries stay in the submission queue,
						// keep re-entering until the kernel takes them
						slog.Error("aio: submit failed", "error", submitErr)
						backlog = true
						time.Sleep(500 * time.Nanosecond)
					} else {
						backlog = false
					}
					break
				}
			}
		}
		// evict whatever never reached the kernel
		for pending.Length() > 0 {
			op := pending.Remove().(*Operation)
			op.failed(errors.From(ErrPollerClosed))
		}
		for {
			peeked := r.queue.PeekBatch(ready)
			if peeked == 0 {
				break
			}
			for i := int64(0); i < peeked; i++ {
				ready[i].failed(errors.From(ErrPollerClosed))
				ready[i] = nil
			}
			r.queue.Advance(peeked)
		}
	}(ctx, r)
}

func (r *Ring) listenCQ(ctx context.Context) {
	r.wg.Add(1)
	go func(ctx context.Context, r *Ring) {
		defer r.wg.Done()
		var (
			stopCh      = r.stopCh
			waitTimeout = syscall.NsecToTimespec(r.waitTimeout.Nanoseconds())
			cq          = make([]*giouring.CompletionQueueEvent, r.queue.Cap())
			stopped     = false
		)
		for !stopped {
			select {
			case <-ctx.Done():
				stopped = true
			case <-stopCh:
				stopped = true
			default:
				if _, waitErr := r.ring.WaitCQEs(1, &waitTimeout, nil); waitErr != nil {
					break
				}
				completed := r.ring.PeekBatchCQE(cq)
				if completed == 0 {
					break
				}
				for i := uint32(0); i < completed; i++ {
					cqe := cq[i]
					cq[i] = nil
					if cqe.UserData == 0 {
						continue
					}
					cop := (*Operation)(unsafe.Pointer(uintptr(cqe.UserData)))
					cop.completeRaw(cqe.Res, cqe.Flags)
				}
				r.ring.CQAdvance(completed)
			}
		}
	}(ctx, r)
}
