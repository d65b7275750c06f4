// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// ptrSegment is one fixed-capacity ring in an SPSCPtr chain.
// Consumed slots are nil'd: a growing chain can hold cold segments for a
// long time, and a stale unsafe.Pointer in a slot would pin its object.
type ptrSegment struct {
	write atomix.Int64
	_     padShort
	read  atomix.Int64
	_     padShort
	next  atomic.Pointer[ptrSegment]
	_     padPtr
	slots []unsafe.Pointer
	mask  int64
}

func newPtrSegment(capacity int64) *ptrSegment {
	s := &ptrSegment{
		slots: make([]unsafe.Pointer, capacity),
		mask:  capacity - 1,
	}
	s.write.StoreRelaxed(initialCursor)
	s.read.StoreRelaxed(initialCursor)
	return s
}

func (s *ptrSegment) hasCapacity(w int64) bool {
	return w-s.mask <= s.read.LoadAcquire()
}

func (s *ptrSegment) free(w, want int64) int64 {
	n := s.mask + 1 - (w - s.read.LoadAcquire())
	if n > want {
		n = want
	}
	return n
}

func (s *ptrSegment) isEmpty(r int64) bool {
	return r == s.write.LoadAcquire()
}

func (s *ptrSegment) readable(r, want int64) int64 {
	n := s.write.LoadAcquire() - r
	if n > want {
		n = want
	}
	return n
}

func (s *ptrSegment) put(cursor int64, elem unsafe.Pointer) {
	// Bounds check eliminated: cursor&mask is always < len(slots)
	// because mask = len(slots)-1 and x&mask <= mask
	*(*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(s.slots)), int(cursor&s.mask)*ptrSize)) = elem
}

func (s *ptrSegment) take(cursor int64) unsafe.Pointer {
	// Bounds check eliminated: cursor&mask is always < len(slots)
	p := (*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(s.slots)), int(cursor&s.mask)*ptrSize))
	elem := *p
	*p = nil
	return elem
}

func (s *ptrSegment) advanceWrite(w, n int64) {
	s.write.StoreRelease(w + n)
}

func (s *ptrSegment) advanceRead(r, n int64) {
	s.read.StoreRelease(r + n)
}

func (s *ptrSegment) occupied() int64 {
	return s.write.LoadRelaxed() - s.read.LoadRelaxed()
}

// SPSCPtr is a growing SPSC queue for unsafe.Pointer values.
// Useful for zero-copy pointer passing between goroutines: the producer
// transfers ownership of the pointed-to object to the consumer.
// Same segment-chain algorithm as [SPSC].
type SPSCPtr struct {
	_        pad
	head     atomic.Pointer[ptrSegment] // Consumer's read frontier
	_        padPtr
	tail     atomic.Pointer[ptrSegment] // Producer's write frontier
	_        padPtr
	segments atomix.Int64 // Chain length; producer increments on growth
	_        padShort
	segCap   int64
	ring     []*ptrSegment // Teardown roster
}

// NewSPSCPtr creates a new growing SPSC queue for unsafe.Pointer values.
// The per-segment capacity rounds up to the next power of 2; the minimum
// is 1. Returns ErrInvalidCapacity or ErrCapacityOverflow when the request
// cannot be represented.
func NewSPSCPtr(capacity int) (*SPSCPtr, error) {
	segCap, err := normalizeCapacity(capacity)
	if err != nil {
		return nil, err
	}

	seg := newPtrSegment(segCap)
	seg.next.Store(seg)
	q := &SPSCPtr{
		segCap: segCap,
		ring:   []*ptrSegment{seg},
	}
	q.head.Store(seg)
	q.tail.Store(seg)
	q.segments.StoreRelaxed(1)
	return q, nil
}

// Enqueue adds an element (producer only). Never fails, never blocks.
func (q *SPSCPtr) Enqueue(elem unsafe.Pointer) {
	tail := q.tail.Load()
	w := tail.write.LoadRelaxed()
	if tail.hasCapacity(w) {
		tail.put(w+1, elem)
		tail.advanceWrite(w, 1)
		return
	}

	nxt := tail.next.Load()
	if nxt != q.head.Load() {
		// Drained successor; SPSC precondition, see SPSC.Enqueue.
		w = nxt.write.LoadRelaxed()
		nxt.put(w+1, elem)
		nxt.advanceWrite(w, 1)
		q.tail.Store(nxt)
		return
	}

	seg := newPtrSegment(q.segCap)
	seg.put(0, elem)
	seg.advanceWrite(initialCursor, 1)
	seg.next.Store(nxt)
	tail.next.Store(seg)
	q.tail.Store(seg)
	q.segments.Add(1)
	q.ring = append(q.ring, seg)
}

// EnqueueBatch adds all elements of elems in order (producer only).
// One cursor publication per segment chunk.
func (q *SPSCPtr) EnqueueBatch(elems []unsafe.Pointer) {
	tail := q.tail.Load()
	for len(elems) > 0 {
		w := tail.write.LoadRelaxed()
		if n := tail.free(w, int64(len(elems))); n > 0 {
			for i := range n {
				tail.put(w+1+i, elems[i])
			}
			tail.advanceWrite(w, n)
			elems = elems[n:]
			continue
		}

		nxt := tail.next.Load()
		if nxt != q.head.Load() {
			w = nxt.write.LoadRelaxed()
			n := nxt.free(w, int64(len(elems)))
			for i := range n {
				nxt.put(w+1+i, elems[i])
			}
			nxt.advanceWrite(w, n)
			q.tail.Store(nxt)
			elems = elems[n:]
			tail = nxt
			continue
		}

		seg := newPtrSegment(q.segCap)
		n := q.segCap
		if m := int64(len(elems)); m < n {
			n = m
		}
		for i := range n {
			seg.put(i, elems[i])
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

// Dequeue removes and returns an element (consumer only).
// Returns (nil, ErrWouldBlock) if the queue is empty.
func (q *SPSCPtr) Dequeue() (unsafe.Pointer, error) {
	tail := q.tail.Load() // Consistency anchor for this call
	head := q.head.Load()
	r := head.read.LoadRelaxed()
	if !head.isEmpty(r) {
		elem := head.take(r + 1)
		head.advanceRead(r, 1)
		return elem, nil
	}

	if head != tail {
		nxt := head.next.Load()
		q.head.Store(nxt)
		r = nxt.read.LoadRelaxed()
		elem := nxt.take(r + 1)
		nxt.advanceRead(r, 1)
		return elem, nil
	}

	return nil, ErrWouldBlock
}

// DequeueBatch fills dst and returns the number of elements copied
// (consumer only). Returns 0 when the queue is empty; never blocks.
func (q *SPSCPtr) DequeueBatch(dst []unsafe.Pointer) int {
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

// OccupiedApprox reports the approximate number of queued elements.
// Advisory only; see SPSC.OccupiedApprox.
func (q *SPSCPtr) OccupiedApprox() int {
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

// AvailableApprox reports the approximate number of free slots in the
// chain. Advisory only.
func (q *SPSCPtr) AvailableApprox() int {
	return q.Cap() - q.OccupiedApprox()
}

// HasAvailableCapacityApprox reports whether the chain appears to have a
// free slot. Never a hard guarantee.
func (q *SPSCPtr) HasAvailableCapacityApprox() bool {
	return q.AvailableApprox() > 0
}

// SegmentsApprox reports the approximate number of segments in the chain.
func (q *SPSCPtr) SegmentsApprox() int {
	return int(q.segments.LoadRelaxed())
}

// SegmentCap returns the per-segment slot count.
func (q *SPSCPtr) SegmentCap() int {
	return int(q.segCap)
}

// Cap returns the approximate total allocated capacity.
func (q *SPSCPtr) Cap() int {
	return q.SegmentCap() * q.SegmentsApprox()
}

// Close releases every segment and drops any pointers still held in slots
// (single-threaded teardown). Idempotent. The queue must not be used after
// Close.
func (q *SPSCPtr) Close() {
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
