// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dynq provides a dynamically growing FIFO queue for exactly one
// producer goroutine and exactly one consumer goroutine.
//
// Where a bounded SPSC ring rejects elements when full, dynq grows: the
// queue is a circular chain of fixed-capacity segments, and the producer
// extends the chain instead of failing. Enqueue always succeeds and never
// blocks; Dequeue never blocks and reports an empty queue as a normal
// outcome. There are no locks, no compare-and-swap loops, and no retries:
// every mutable shared field has exactly one writer goroutine, and
// cross-thread visibility rests on acquire/release pairs alone.
//
// # Quick Start
//
//	q, err := dynq.NewSPSC[Event](1024)
//	if err != nil {
//	    // Capacity configuration was invalid
//	}
//
//	// Producer goroutine
//	ev := Event{ID: 1}
//	q.Enqueue(&ev) // Never fails, never blocks
//
//	// Consumer goroutine
//	ev, err := q.Dequeue()
//	if dynq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Basic Usage
//
// Pipeline stage with a queue that absorbs bursts instead of dropping:
//
//	q, _ := dynq.NewSPSC[Data](1024)
//
//	go func() { // Producer (Stage 1)
//	    for data := range input {
//	        q.Enqueue(&data) // Burst-safe: the chain grows as needed
//	    }
//	}()
//
//	go func() { // Consumer (Stage 2)
//	    backoff := iox.Backoff{}
//	    for {
//	        data, err := q.Dequeue()
//	        if err != nil {
//	            backoff.Wait() // Empty - adaptive wait
//	            continue
//	        }
//	        backoff.Reset()
//	        process(data)
//	    }
//	}()
//
// Only the consumer ever needs a backoff: the producer has nothing to
// wait for.
//
// # Growth Model
//
// The queue starts as a single segment whose next link points to itself.
// Segments hold a power-of-two number of slots and two cursors (positions
// of the last written and last consumed element). The producer fills the
// tail segment; the consumer drains the head segment and follows next
// links toward the tail.
//
// When the tail segment fills, the producer checks the segment after it:
//
//   - If that segment is not the consumer's head segment, it sits strictly
//     between an exhausted tail and the head, which means the consumer has
//     already drained it. The producer reuses it in place: no allocation.
//   - Otherwise the chain is fully occupied. The producer allocates a new
//     segment, writes the pending element into it, splices it in right
//     after the tail, and only then publishes it as the new tail.
//
// The chain therefore behaves like a ring of rings: allocation happens
// only while the consumer lags, and the total footprint is bounded by the
// peak number of elements simultaneously in flight. Segments are never
// released while the queue is alive (there is no shrink-on-drain); Close
// releases them all at teardown.
//
// # Queue Flavors
//
// Three flavors share the same algorithm and the same interface shape:
//
//	NewSPSC[T]       - Generic type-safe queue for any payload type
//	NewSPSCIndirect  - Queue for uintptr values (pool indices, handles)
//	NewSPSCPtr       - Queue for unsafe.Pointer (zero-copy pointer passing)
//
// The generic flavor copies values and zeroes consumed slots so referenced
// objects become collectible. The indirect flavor stores raw uintptr
// values with pointer-arithmetic slot access and no clearing. The ptr
// flavor transfers object ownership from producer to consumer and nils
// consumed slots.
//
// # Batch Transfer
//
// EnqueueBatch and DequeueBatch move slices of elements with one cursor
// publication per segment chunk instead of one per element:
//
//	q.EnqueueBatch(events) // All of events, in order, growth included
//
//	buf := make([]Event, 256)
//	n := q.DequeueBatch(buf) // Up to 256 elements, 0 when empty
//	for _, ev := range buf[:n] {
//	    process(ev)
//	}
//
// Batch calls preserve FIFO order exactly as repeated single calls do.
//
// # Error Handling
//
// Dequeue returns [ErrWouldBlock] when the queue is empty. The error is
// sourced from [code.hybscloud.com/iox] for ecosystem consistency and is a
// control flow signal, not a failure:
//
//	elem, err := q.Dequeue()
//	if dynq.IsWouldBlock(err) {
//	    // Empty queue - a normal outcome, not an error condition
//	}
//
// Enqueue has no error surface at all. The only construction-time errors
// are [ErrInvalidCapacity] and [ErrCapacityOverflow], reported by the
// constructors; both are genuine failures and fatal to that construction
// call.
//
// For semantic error classification (delegates to iox):
//
//	dynq.IsWouldBlock(err)  // true if queue empty
//	dynq.IsSemantic(err)    // true if control flow signal
//	dynq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Capacity and Diagnostics
//
// The per-segment capacity rounds up to the next power of 2 and has a
// minimum of 1:
//
//	q, _ := dynq.NewSPSC[int](1)    // Segment capacity: 1
//	q, _ := dynq.NewSPSC[int](5)    // Segment capacity: 8
//	q, _ := dynq.NewSPSC[int](8)    // Segment capacity: 8
//	q, _ := dynq.NewSPSC[int](1000) // Segment capacity: 1024
//
// Exact occupancy is intentionally not provided: accurate counts in
// lock-free algorithms require expensive cross-core synchronization. The
// [Meter] methods carry the Approx suffix because that is the contract:
// they may be computed while both cursors and the chain advance, and they
// must only feed monitoring or backpressure heuristics, never correctness
// decisions. At rest (no concurrent mutation) they are exact:
//
//	q.OccupiedApprox() + q.AvailableApprox() == q.SegmentCap()*q.SegmentsApprox()
//
// # Thread Safety
//
// Exactly one goroutine may enqueue and exactly one goroutine may dequeue.
// The producer owns the tail pointer, every write cursor, and all next
// links; the consumer owns the head pointer and every read cursor.
// Violating the single-producer single-consumer contract causes undefined
// behavior including data corruption, and no internal check exists to
// detect it: the growth path in particular relies on segments between the
// tail and the head being fully drained, which only the SPSC discipline
// guarantees.
//
// Diagnostics (the Meter methods) may be called from either goroutine.
//
// # Teardown
//
// Close releases every segment. It is single-threaded by contract: the
// caller must guarantee no Enqueue or Dequeue is in flight, and the queue
// must not be used afterwards. Close walks the internal segment roster
// once rather than chasing next links around the cycle, severs the links,
// and drops the slot storage so retained payloads become collectible.
// Close is idempotent.
//
// In a garbage-collected runtime Close is a promptness aid rather than a
// requirement: dropping the last reference to the queue eventually
// reclaims everything, but until then the circular chain pins whatever
// the slots still reference.
//
// # Cursor Range
//
// Cursors are signed 64-bit positions advancing by one per element from -1
// and are never wrapped or reset. The sequence space is exhausted only
// after 2^63 operations through a single segment; this limit is accepted
// and not handled.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels,
// WaitGroup) but cannot observe happens-before relationships established
// through atomic memory orderings on separate variables.
//
// The segment chain protects plain slot data with acquire-release cursor
// pairs and pointer publications. These protocols are correct, but the
// race detector may report false positives on the generic flavor because
// it cannot track synchronization provided by atomic operations on
// variables other than the data it watches.
//
// For lock-free algorithm correctness verification, use:
//   - Formal verification tools (TLA+, SPIN)
//   - Stress testing without race detector
//   - Memory model analysis
//
// Tests incompatible with race detection are excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and the standard library's [sync/atomic.Pointer] for the typed
// chain links.
package dynq
