// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// indirectSegment is one fixed-capacity ring in an SPSCIndirect chain.
// Same cursor protocol as segment; slots hold uintptr values accessed
// through pointer arithmetic to avoid slice bounds checks in the hot path.
type indirectSegment struct {
	write atomix.Int64
	_     padShort
	read  atomix.Int64
	_     padShort
	next  atomic.Pointer[indirectSegment]
	_     padPtr
	slots []uintptr
	mask  int64
}

func newIndirectSegment(capacity int64) *indirectSegment {
	s := &indirectSegment{
		slots: make([]uintptr, capacity),
		mask:  capacity - 1,
	}
	s.write.StoreRelaxed(initialCursor)
	s.read.StoreRelaxed(initialCursor)
	return s
}

func (s *indirectSegment) hasCapacity(w int64) bool {
	return w-s.mask <= s.read.LoadAcquire()
}

func (s *indirectSegment) free(w, want int64) int64 {
	n := s.mask + 1 - (w - s.read.LoadAcquire())
	if n > want {
		n = want
	}
	return n
}

func (s *indirectSegment) isEmpty(r int64) bool {
	return r == s.write.LoadAcquire()
}

func (s *indirectSegment) readable(r, want int64) int64 {
	n := s.write.LoadAcquire() - r
	if n > want {
		n = want
	}
	return n
}

func (s *indirectSegment) put(cursor int64, elem uintptr) {
	// Bounds check eliminated: cursor&mask is always < len(slots)
	// because mask = len(slots)-1 and x&mask <= mask
	*(*uintptr)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(s.slots)), int(cursor&s.mask)*ptrSize)) = elem
}

func (s *indirectSegment) get(cursor int64) uintptr {
	// Bounds check eliminated: cursor&mask is always < len(slots)
	return *(*uintptr)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(s.slots)), int(cursor&s.mask)*ptrSize))
}

func (s *indirectSegment) advanceWrite(w, n int64) {
	s.write.StoreRelease(w + n)
}

func (s *indirectSegment) advanceRead(r, n int64) {
	s.read.StoreRelease(r + n)
}

func (s *indirectSegment) occupied() int64 {
	return s.write.LoadRelaxed() - s.read.LoadRelaxed()
}

// SPSCIndirect is a growing SPSC queue for uintptr values.
// Useful for pool indices and handles where the pool itself is unbounded.
// Same segment-chain algorithm as [SPSC]; slots are not cleared on
// dequeue because uintptr values are opaque to the garbage collector.
type SPSCIndirect struct {
	_        pad
	head     atomic.Pointer[indirectSegment] // Consumer's read frontier
	_        padPtr
	tail     atomic.Pointer[indirectSegment] // Producer's write frontier
	_        padPtr
	segments atomix.Int64 // Chain length; producer increments on growth
	_        padShort
	segCap   int64
	ring     []*indirectSegment // Teardown roster
}

// NewSPSCIndirect creates a new growing SPSC queue for uintptr values.
// The per-segment capacity rounds up to the next power of 2; the minimum
// is 1. Returns ErrInvalidCapacity or ErrCapacityOverflow when the request
// cannot be represented.
func NewSPSCIndirect(capacity int) (*SPSCIndirect, error) {
	segCap, err := normalizeCapacity(capacity)
	if err != nil {
		return nil, err
	}

	seg := newIndirectSegment(segCap)
	seg.next.Store(seg)
	q := &SPSCIndirect{
		segCap: segCap,
		ring:   []*indirectSegment{seg},
	}
	q.head.Store(seg)
	q.tail.Store(seg)
	q.segments.StoreRelaxed(1)
	return q, nil
}

// Enqueue adds an element (producer only). Never fails, never blocks.
func (q *SPSCIndirect) Enqueue(elem uintptr) {
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

	seg := newIndirectSegment(q.segCap)
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
func (q *SPSCIndirect) EnqueueBatch(elems []uintptr) {
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

		seg := newIndirectSegment(q.segCap)
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
// Returns (0, ErrWouldBlock) if the queue is empty.
func (q *SPSCIndirect) Dequeue() (uintptr, error) {
	tail := q.tail.Load() // Consistency anchor for this call
	head := q.head.Load()
	r := head.read.LoadRelaxed()
	if !head.isEmpty(r) {
		elem := head.get(r + 1)
		head.advanceRead(r, 1)
		return elem, nil
	}

	if head != tail {
		nxt := head.next.Load()
		q.head.Store(nxt)
		r = nxt.read.LoadRelaxed()
		elem := nxt.get(r + 1)
		nxt.advanceRead(r, 1)
		return elem, nil
	}

	return 0, ErrWouldBlock
}

// DequeueBatch fills dst and returns the number of elements copied
// (consumer only). Returns 0 when the queue is empty; never blocks.
func (q *SPSCIndirect) DequeueBatch(dst []uintptr) int {
	tail := q.tail.Load() // Consistency anchor for this call
	head := q.head.Load()
	total := 0
	for total < len(dst) {
		r := head.read.LoadRelaxed()
		if n := head.readable(r, int64(len(dst)-total)); n > 0 {
			for i := range n {
				dst[total+int(i)] = head.get(r + 1 + i)
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
func (q *SPSCIndirect) OccupiedApprox() int {
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
func (q *SPSCIndirect) AvailableApprox() int {
	return q.Cap() - q.OccupiedApprox()
}

// HasAvailableCapacityApprox reports whether the chain appears to have a
// free slot. Never a hard guarantee.
func (q *SPSCIndirect) HasAvailableCapacityApprox() bool {
	return q.AvailableApprox() > 0
}

// SegmentsApprox reports the approximate number of segments in the chain.
func (q *SPSCIndirect) SegmentsApprox() int {
	return int(q.segments.LoadRelaxed())
}

// SegmentCap returns the per-segment slot count.
func (q *SPSCIndirect) SegmentCap() int {
	return int(q.segCap)
}

// Cap returns the approximate total allocated capacity.
func (q *SPSCIndirect) Cap() int {
	return q.SegmentCap() * q.SegmentsApprox()
}

// Close releases every segment (single-threaded teardown). Idempotent.
// The queue must not be used after Close.
func (q *SPSCIndirect) Close() {
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
