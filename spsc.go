// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// SPSC is a single-producer single-consumer queue that grows instead of
// rejecting elements.
//
// Storage is a circular singly-linked chain of fixed-capacity segments.
// The producer writes into the tail segment; when it fills, the producer
// first reuses the next segment in the chain if the consumer has already
// drained it, and only otherwise splices in a freshly allocated segment.
// The chain therefore behaves like a ring of rings: long-run memory is
// bounded by the peak number of elements simultaneously in flight, not by
// the total number of elements ever enqueued. Segments are never released
// while the queue is alive; Close frees them all at teardown.
//
// Every mutable shared field has exactly one writer goroutine. Cross-thread
// visibility rests on acquire/release cursor pairs and on the chain pointer
// publications; there is no compare-and-swap and no retry loop anywhere.
//
// Memory: O(peak occupancy), in steps of SegmentCap slots
type SPSC[T any] struct {
	_        pad
	head     atomic.Pointer[segment[T]] // Consumer's read frontier
	_        padPtr
	tail     atomic.Pointer[segment[T]] // Producer's write frontier
	_        padPtr
	segments atomix.Int64 // Chain length; producer increments on growth
	_        padShort
	segCap   int64         // Capacity of every segment
	ring     []*segment[T] // Teardown roster; producer appends on growth
}

// NewSPSC creates a new growing SPSC queue.
// The per-segment capacity rounds up to the next power of 2; the minimum
// is 1. Returns ErrInvalidCapacity or ErrCapacityOverflow when the request
// cannot be represented.
func NewSPSC[T any](capacity int) (*SPSC[T], error) {
	segCap, err := normalizeCapacity(capacity)
	if err != nil {
		return nil, err
	}

	seg := newSegment[T](segCap)
	seg.next.Store(seg)
	q := &SPSC[T]{
		segCap: segCap,
		ring:   []*segment[T]{seg},
	}
	q.head.Store(seg)
	q.tail.Store(seg)
	q.segments.StoreRelaxed(1)
	return q, nil
}

// Enqueue adds an element to the queue (producer only).
// It never fails and never blocks: when the tail segment is full the
// producer moves the write frontier to the next drained segment, or grows
// the chain by one segment when no drained segment is available.
func (q *SPSC[T]) Enqueue(elem *T) {
	tail := q.tail.Load()
	w := tail.write.LoadRelaxed()
	if tail.hasCapacity(w) {
		tail.put(w+1, elem)
		tail.advanceWrite(w, 1)
		return
	}

	nxt := tail.next.Load()
	if nxt != q.head.Load() {
		// nxt sits strictly between the exhausted tail and the head, so
		// the consumer has left it fully drained: its cursors are equal.
		// Precondition of the single-producer single-consumer contract;
		// not re-verified against the consumer here.
		w = nxt.write.LoadRelaxed()
		nxt.put(w+1, elem)
		nxt.advanceWrite(w, 1)
		q.tail.Store(nxt)
		return
	}

	// Chain fully occupied: splice in a fresh segment right after the
	// tail. The segment carries its first element before any link makes
	// it reachable, so no partial splice is ever observable.
	seg := newSegment[T](q.segCap)
	seg.put(0, elem)
	seg.advanceWrite(initialCursor, 1)
	seg.next.Store(nxt)
	tail.next.Store(seg)
	q.tail.Store(seg)
	q.segments.Add(1)
	q.ring = append(q.ring, seg)
}

// EnqueueBatch adds all elements of elems in order (producer only).
// Elements are copied chunk-wise: each segment's free slots are filled with
// plain stores and published by a single advance of the write cursor. Like
// Enqueue, it never fails and never blocks.
func (q *SPSC[T]) EnqueueBatch(elems []T) {
	tail := q.tail.Load()
	for len(elems) > 0 {
		w := tail.write.LoadRelaxed()
		if n := tail.free(w, int64(len(elems))); n > 0 {
			for i := range n {
				tail.put(w+1+i, &elems[i])
			}
			tail.advanceWrite(w, n)
			elems = elems[n:]
			continue
		}

		nxt := tail.next.Load()
		if nxt != q.head.Load() {
			// Drained successor; same precondition as Enqueue. The
			// chunk lands before the frontier publication, as in the
			// single-element path.
			w = nxt.write.LoadRelaxed()
			n := nxt.free(w, int64(len(elems)))
			for i := range n {
				nxt.put(w+1+i, &elems[i])
			}
			nxt.advanceWrite(w, n)
			q.tail.Store(nxt)
			elems = elems[n:]
			tail = nxt
			continue
		}

		// The fresh segment takes the next chunk before becoming
		// reachable, so the consumer never hops onto an empty segment.
		seg := newSegment[T](q.segCap)
		n := q.segCap
		if m := int64(len(elems)); m < n {
			n = m
		}
		for i := range n {
			seg.put(i, &elems[i])
		}
		seg.advanceWrite(initialCursor, n)
		seg.next.Store(nxt)
		tail.next.Store(seg)
		q.tail.Store(seg)
		q.segments.Add(1)
		q.ring = append(q.ring, seg)
		elems = elems[n:]
		tail = seg
	}
}

// Dequeue removes and returns the next element in FIFO order (consumer
// only). Returns (zero-value, ErrWouldBlock) if the queue is empty; the
// call never blocks and leaves all state unchanged in that case.
func (q *SPSC[T]) Dequeue() (T, error) {
	tail := q.tail.Load() // Consistency anchor for this call
	head := q.head.Load()
	r := head.read.LoadRelaxed()
	if !head.isEmpty(r) {
		elem := head.take(r + 1)
		head.advanceRead(r, 1)
		return elem, nil
	}

	if head != tail {
		// More data further along the chain. The successor is never
		// empty: it became reachable only after the producer wrote its
		// first element.
		nxt := head.next.Load()
		q.head.Store(nxt)
		r = nxt.read.LoadRelaxed()
		elem := nxt.take(r + 1)
		nxt.advanceRead(r, 1)
		return elem, nil
	}

	var zero T
	return zero, ErrWouldBlock
}

// DequeueBatch fills dst with up to len(dst) elements in FIFO order
// (consumer only). Returns the number of elements copied; 0 when the queue
// is empty. Never blocks.
func (q *SPSC[T]) DequeueBatch(dst []T) int {
	tail := q.tail.Load() // Consistency anchor for this call
	head := q.head.Load()
	total := 0
	for total < len(dst) {
		r := head.read.LoadRelaxed()
		if n := head.readable(r, int64(len(dst)-total)); n > 0 {
			for i := range n {
				dst[total+int(i)] = head.take(r + 1 + i)
			}
			head.advanceRead(r, n)
			total += int(n)
			continue
		}

		if head == tail {
			break
		}
		head = head.next.Load()
		q.head.Store(head)
	}
	return total
}

// OccupiedApprox reports the approximate number of enqueued, not-yet-
// dequeued elements. It walks the chain once from the current head,
// summing each segment's cursor distance under relaxed loads; cursors may
// advance mid-walk, so the result is advisory only.
func (q *SPSC[T]) OccupiedApprox() int {
	start := q.head.Load()
	n := int64(0)
	for seg := start; ; {
		n += seg.occupied()
		seg = seg.next.Load()
		if seg == start {
			break
		}
	}
	return int(n)
}

// AvailableApprox reports the approximate number of free slots across all
// segments currently in the chain. Advisory only: the producer always
// succeeds regardless, by growing.
func (q *SPSC[T]) AvailableApprox() int {
	return q.Cap() - q.OccupiedApprox()
}

// HasAvailableCapacityApprox reports whether the chain appears to have a
// free slot. Never a hard guarantee in either direction.
func (q *SPSC[T]) HasAvailableCapacityApprox() bool {
	return q.AvailableApprox() > 0
}

// SegmentsApprox reports the approximate number of segments in the chain.
// The count only grows while the queue is alive.
func (q *SPSC[T]) SegmentsApprox() int {
	return int(q.segments.LoadRelaxed())
}

// SegmentCap returns the per-segment slot count.
func (q *SPSC[T]) SegmentCap() int {
	return int(q.segCap)
}

// Cap returns the approximate total allocated capacity,
// SegmentCap() * SegmentsApprox().
func (q *SPSC[T]) Cap() int {
	return q.SegmentCap() * q.SegmentsApprox()
}

// Close releases every segment in the chain (single-threaded teardown).
// The caller must guarantee no Enqueue or Dequeue is in flight; the queue
// must not be used after Close. Close walks the teardown roster rather
// than the cycle, so each segment is released exactly once even if a next
// link were corrupted. Calling Close again is a no-op.
func (q *SPSC[T]) Close() {
	if q.ring == nil {
		return
	}
	for _, seg := range q.ring {
		seg.next.Store(nil)
		seg.slots = nil
	}
	q.ring = nil
	q.head.Store(nil)
	q.tail.Store(nil)
	q.segments.StoreRelaxed(0)
}
