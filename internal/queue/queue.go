// Package queue is the bounded hand-off between the MIDI input thread and the
// audio render thread.
package queue

import (
	"sync/atomic"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1024

// Stats is a snapshot of queue counters.
type Stats struct {
	Pushed  uint64 // Events accepted by Push.
	Dropped uint64 // Events lost to the overflow policy.
	Len     int    // Events waiting at snapshot time.
}

// Queue is a bounded, non-blocking note event queue with one producer and one consumer.
// It implements contracts.EventSink.
type Queue struct {
	ch      chan contracts.NoteEvent
	policy  contracts.OverflowPolicy
	pushed  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a queue holding at most capacity events.
func New(capacity int, policy contracts.OverflowPolicy) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:     make(chan contracts.NoteEvent, capacity),
		policy: policy,
	}
}

// Push enqueues event without blocking. It returns false when an event was
// discarded: the incoming one under DropNewest, the oldest under DropOldest.
func (q *Queue) Push(event contracts.NoteEvent) bool {
	select {
	case q.ch <- event:
		q.pushed.Add(1)
		return true
	default:
	}

	if q.policy != contracts.DropOldest {
		q.dropped.Add(1)
		return false
	}
	return q.evictAndPush(event)
}

// evictAndPush discards the oldest event until event fits. It reports false
// only when something was evicted; the consumer may have made room first.
func (q *Queue) evictAndPush(event contracts.NoteEvent) bool {
	evicted := false
	for {
		select {
		case <-q.ch:
			q.dropped.Add(1)
			evicted = true
		default:
		}
		select {
		case q.ch <- event:
			q.pushed.Add(1)
			return !evicted
		default:
		}
	}
}

// TryPop returns the oldest event, or false when the queue is empty.
func (q *Queue) TryPop() (contracts.NoteEvent, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return contracts.NoteEvent{}, false
	}
}

// Drain hands every available event to fn and returns how many it handled.
// It never blocks and stops after Cap events so a flooding producer cannot
// hold the consumer indefinitely.
func (q *Queue) Drain(fn func(contracts.NoteEvent)) int {
	n := 0
	for limit := cap(q.ch); n < limit; n++ {
		select {
		case ev := <-q.ch:
			fn(ev)
		default:
			return n
		}
	}
	return n
}

// Len returns the number of queued events.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Stats returns the current counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Pushed:  q.pushed.Load(),
		Dropped: q.dropped.Load(),
		Len:     len(q.ch),
	}
}
