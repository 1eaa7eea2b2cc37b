// Package queue implements an unbounded blocking FIFO queue with independent
// enqueue and dequeue locks, based on the two-lock queue of Scherer, Lea, and
// Scott ("Scalable Synchronous Queues", PPoPP '06). A producer and a consumer
// can make progress concurrently; consumers serialize against each other on
// the dequeue lock.
package queue

import (
	"sync"
	"sync/atomic"
)

// node holds one value and a link to the next node. A dummy head node is
// always present so head is never nil.
type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is an unbounded FIFO handoff channel. Enqueue never blocks; Dequeue
// suspends the caller while the queue is empty. There is no close, timeout,
// or cancellation; shutdown is a caller convention (e.g. one poison value per
// consumer).
type Queue[T any] struct {
	enqMu sync.Mutex // guards tail
	deqMu sync.Mutex // guards head
	size  atomic.Int64

	notEmpty *sync.Cond // signaled on 0 -> 1 transitions, waits on deqMu

	head *node[T] // dummy node; head.next is the oldest live value
	tail *node[T]
}

func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	dummy := &node[T]{}
	q.head = dummy
	q.tail = dummy
	q.notEmpty = sync.NewCond(&q.deqMu)
	return q
}

// Enqueue appends v to the tail. It holds only the enqueue lock; if the size
// transitioned from 0 to 1 it takes the dequeue lock afterwards to wake any
// waiting consumers.
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{value: v}

	q.enqMu.Lock()
	q.tail.next = n
	q.tail = n
	mustWake := q.size.Add(1) == 1
	q.enqMu.Unlock()

	if mustWake {
		q.deqMu.Lock()
		q.notEmpty.Broadcast()
		q.deqMu.Unlock()
	}
}

// Dequeue removes and returns the oldest value, blocking while the queue is
// empty. Values come back in the order the corresponding Enqueue calls
// completed.
func (q *Queue[T]) Dequeue() T {
	q.deqMu.Lock()
	for q.size.Load() == 0 {
		q.notEmpty.Wait()
	}
	n := q.head.next
	q.size.Add(-1)
	v := n.value

	// n becomes the new dummy head; clear its value so the queue does not
	// pin the consumed item.
	var zero T
	n.value = zero
	q.head = n
	q.deqMu.Unlock()
	return v
}

// Len reports the number of queued values at some instant.
func (q *Queue[T]) Len() int {
	return int(q.size.Load())
}
