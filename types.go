// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import "unsafe"

// Queue is the combined producer-consumer interface for a growing FIFO
// queue.
//
// Queue provides a non-failing Enqueue and a non-blocking Dequeue. Enqueue
// always succeeds: when the current segment is full the producer reuses a
// drained segment from the chain or splices in a fresh one. Dequeue returns
// ErrWouldBlock when the queue is empty.
//
// The interface exposes occupancy only through [Meter], whose methods are
// named and documented as approximations. Exact counts in lock-free
// algorithms require expensive cross-core synchronization; track exact
// counts in application logic when needed.
//
// Example:
//
//	q, err := dynq.NewSPSC[int](1024)
//	if err != nil {
//	    // Invalid capacity configuration
//	}
//
//	// Enqueue (never fails)
//	val := 42
//	q.Enqueue(&val)
//
//	// Dequeue
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Meter
	// Close releases every segment in the chain. Single-threaded: the
	// caller must guarantee no Enqueue or Dequeue is in flight and that
	// the queue is not used afterwards.
	Close()
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
//
// Exactly one goroutine may act as the producer. Concurrent producers
// cause undefined behavior including data corruption.
type Producer[T any] interface {
	// Enqueue adds an element to the queue. It never fails and never
	// blocks: the chain grows when the write frontier is full. The only
	// way Enqueue can abort is an allocator panic during growth, and the
	// queue stays consistent in that case (a new segment becomes
	// reachable only after it is fully initialized).
	Enqueue(elem *T)

	// EnqueueBatch adds all elements of elems in order. Elements are
	// copied segment-chunk-wise with one cursor publication per chunk,
	// not per element. Like Enqueue, it never fails and never blocks.
	EnqueueBatch(elems []T)
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value (copied from the queue's internal
// buffer). The consumed slot is cleared to allow garbage collection of
// referenced objects.
//
// Exactly one goroutine may act as the consumer. Concurrent consumers
// cause undefined behavior including data corruption.
type Consumer[T any] interface {
	// Dequeue removes and returns the next element in FIFO order
	// (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty; that
	// result is a normal outcome for the call, not a failure.
	Dequeue() (T, error)

	// DequeueBatch fills dst with up to len(dst) elements in FIFO order
	// and returns the number of elements copied. Returns 0 when the
	// queue is empty; never blocks.
	DequeueBatch(dst []T) int
}

// Meter exposes advisory occupancy diagnostics.
//
// Every count is an approximation: cursors and the chain may advance while
// a query walks the chain, so results must not be relied on for
// correctness, only for monitoring and backpressure heuristics. The
// producer always succeeds regardless of what HasAvailableCapacityApprox
// reported.
//
// With no concurrent mutation the results are exact and satisfy
//
//	OccupiedApprox() + AvailableApprox() == SegmentCap() * SegmentsApprox()
type Meter interface {
	// OccupiedApprox reports the approximate number of enqueued,
	// not-yet-dequeued elements. Walks the whole chain once.
	OccupiedApprox() int

	// AvailableApprox reports the approximate number of free slots
	// across all segments currently in the chain.
	AvailableApprox() int

	// HasAvailableCapacityApprox reports whether the chain appears to
	// have a free slot. Never a guarantee in either direction.
	HasAvailableCapacityApprox() bool

	// SegmentsApprox reports the approximate number of segments in the
	// chain. It only grows; segments are never released while the queue
	// is alive.
	SegmentsApprox() int

	// SegmentCap reports the exact per-segment slot count. Immutable.
	SegmentCap() int

	// Cap reports the approximate total allocated capacity,
	// SegmentCap() * SegmentsApprox().
	Cap() int
}

// QueueIndirect is the combined interface for indirect (uintptr) queues.
//
// QueueIndirect passes indices or handles instead of full objects. This is
// useful for buffer pools, object pools, or any index-based data structure
// where the pool itself is unbounded or grows.
//
// Example (buffer pool):
//
//	pool := make([][]byte, 0, 1024)
//	recycled, _ := dynq.NewSPSCIndirect(1024)
//
//	// Producer side returns exhausted buffer indices
//	recycled.Enqueue(uintptr(idx))
//
//	// Consumer side prefers a recycled index over growing the pool
//	idx, err := recycled.Dequeue()
//	if err != nil {
//	    pool = append(pool, make([]byte, 4096))
//	    idx = uintptr(len(pool) - 1)
//	}
//	buf := pool[idx]
type QueueIndirect interface {
	ProducerIndirect
	ConsumerIndirect
	Meter
	// Close releases every segment in the chain. Single-threaded; see
	// [Queue].
	Close()
}

// ProducerIndirect enqueues uintptr values. Single producer goroutine.
type ProducerIndirect interface {
	// Enqueue adds an element to the queue. Never fails, never blocks.
	Enqueue(elem uintptr)

	// EnqueueBatch adds all elements of elems in order.
	EnqueueBatch(elems []uintptr)
}

// ConsumerIndirect dequeues uintptr values. Single consumer goroutine.
type ConsumerIndirect interface {
	// Dequeue removes and returns an element from the queue.
	// Returns (0, ErrWouldBlock) immediately if the queue is empty.
	Dequeue() (uintptr, error)

	// DequeueBatch fills dst and returns the number of elements copied.
	DequeueBatch(dst []uintptr) int
}

// QueuePtr is the combined interface for unsafe.Pointer queues.
//
// QueuePtr passes pointers directly without copying. This enables
// zero-copy transfer of objects between goroutines. The producer creates
// an object, enqueues its pointer, and the consumer receives the same
// pointer.
//
// Ownership semantics: the producer transfers ownership to the consumer.
// After enqueueing, the producer should not access the object.
//
// Example:
//
//	type Message struct {
//	    Data []byte
//	}
//
//	q, _ := dynq.NewSPSCPtr(1024)
//
//	// Producer
//	msg := &Message{Data: largePayload}
//	q.Enqueue(unsafe.Pointer(msg))
//	// msg ownership transferred - do not use msg after this
//
//	// Consumer
//	ptr, _ := q.Dequeue()
//	msg := (*Message)(ptr)
//	// msg is now owned by consumer
type QueuePtr interface {
	ProducerPtr
	ConsumerPtr
	Meter
	// Close releases every segment in the chain and clears any pointers
	// still held in slots. Single-threaded; see [Queue].
	Close()
}

// ProducerPtr enqueues unsafe.Pointer values. Single producer goroutine.
type ProducerPtr interface {
	// Enqueue adds an element to the queue. Never fails, never blocks.
	Enqueue(elem unsafe.Pointer)

	// EnqueueBatch adds all elements of elems in order.
	EnqueueBatch(elems []unsafe.Pointer)
}

// ConsumerPtr dequeues unsafe.Pointer values. Single consumer goroutine.
type ConsumerPtr interface {
	// Dequeue removes and returns an element from the queue.
	// Returns (nil, ErrWouldBlock) immediately if the queue is empty.
	Dequeue() (unsafe.Pointer, error)

	// DequeueBatch fills dst and returns the number of elements copied.
	DequeueBatch(dst []unsafe.Pointer) int
}
