//go:build linux

package aio

import (
	"sync/atomic"
	"unsafe"
)

func roundupPow2(n int) int {
	if n < 1 {
		return 1
	}
	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// operationQueue is a bounded MPSC queue over a ring of linked nodes:
// submitters enqueue from any goroutine, the submission loop alone peeks
// and advances.
type operationQueue struct {
	head     unsafe.Pointer
	tail     unsafe.Pointer
	entries  int64
	capacity int64
}

func newOperationQueue(n int) (queue *operationQueue) {
	if n < 1 {
		n = 16384
	}
	n = roundupPow2(n)
	queue = &operationQueue{
		capacity: int64(n),
	}
	hn := &operationQueueNode{}
	queue.head = unsafe.Pointer(hn)
	queue.tail = unsafe.Pointer(hn)
	for i := 1; i < n; i++ {
		next := &operationQueueNode{}
		tail := (*operationQueueNode)(atomic.LoadPointer(&queue.tail))
		tail.next = unsafe.Pointer(next)
		atomic.CompareAndSwapPointer(&queue.tail, queue.tail, unsafe.Pointer(next))
	}
	tail := (*operationQueueNode)(atomic.LoadPointer(&queue.tail))
	tail.next = queue.head
	queue.tail = queue.head
	return
}

type operationQueueNode struct {
	value unsafe.Pointer
	next  unsafe.Pointer
}

func (queue *operationQueue) Enqueue(op *Operation) (ok bool) {
	ptr := unsafe.Pointer(op)
	for {
		if atomic.LoadInt64(&queue.entries) >= queue.capacity {
			return false
		}
		tail := (*operationQueueNode)(atomic.LoadPointer(&queue.tail))
		if tail.value != nil {
			continue
		}
		if atomic.CompareAndSwapPointer(&tail.value, tail.value, ptr) {
			for {
				if atomic.CompareAndSwapPointer(&queue.tail, queue.tail, tail.next) {
					atomic.AddInt64(&queue.entries, 1)
					return true
				}
			}
		}
	}
}

// PeekBatch copies up to len(operations) entries from the head without
// consuming them; Advance consumes what the caller managed to handle.
func (queue *operationQueue) PeekBatch(operations []*Operation) (n int64) {
	size := int64(len(operations))
	if size == 0 {
		return
	}
	if num := atomic.LoadInt64(&queue.entries); num < size {
		size = num
	}
	node := (*operationQueueNode)(atomic.LoadPointer(&queue.head))
	for i := int64(0); i < size; i++ {
		if node.value == nil {
			break
		}
		target := atomic.LoadPointer(&node.value)
		node = (*operationQueueNode)(atomic.LoadPointer(&node.next))
		operations[i] = (*Operation)(target)
		n++
	}
	return
}

func (queue *operationQueue) Advance(n int64) {
	for i := int64(0); i < n; i++ {
		head := (*operationQueueNode)(atomic.LoadPointer(&queue.head))
		atomic.StorePointer(&head.value, nil)
		if atomic.CompareAndSwapPointer(&queue.head, queue.head, head.next) {
			atomic.AddInt64(&queue.entries, -1)
		}
	}
}

func (queue *operationQueue) Cap() int64 {
	return queue.capacity
}
