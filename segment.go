// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// segment is one fixed-capacity ring in the circular chain.
//
// Each cursor holds the position of the last element written or consumed,
// starting at initialCursor. Positions map to slots via cursor & mask, which
// is valid because the capacity is a power of two. The write cursor and the
// next link are advanced only by the producer, the read cursor only by the
// consumer; neither ever needs a compare-and-swap.
//
// Slot stores and loads are plain. The release-store of the owning cursor
// publishes the slot contents to the other side, which observes them through
// an acquire-load of that cursor (or of a chain pointer published after the
// cursor advanced).
type segment[T any] struct {
	write atomix.Int64 // Producer advances; position of last written element
	_     padShort
	read  atomix.Int64 // Consumer advances; position of last consumed element
	_     padShort
	next  atomic.Pointer[segment[T]] // Producer writes at splice time; never nil once reachable
	_     padPtr
	slots []T
	mask  int64
}

// newSegment allocates a segment with capacity slots and both cursors at
// the sentinel. The next link is left for the caller: the construction-time
// segment points to itself, spliced segments point to their successor before
// they become reachable.
func newSegment[T any](capacity int64) *segment[T] {
	s := &segment[T]{
		slots: make([]T, capacity),
		mask:  capacity - 1,
	}
	s.write.StoreRelaxed(initialCursor)
	s.read.StoreRelaxed(initialCursor)
	return s
}

// hasCapacity reports whether one more element fits behind the producer's
// write cursor snapshot w without overwriting an unconsumed slot.
// Producer only.
func (s *segment[T]) hasCapacity(w int64) bool {
	return w-s.mask <= s.read.LoadAcquire()
}

// free returns the number of slots writable behind the producer's write
// cursor snapshot w, at most want. Producer only.
func (s *segment[T]) free(w, want int64) int64 {
	n := s.mask + 1 - (w - s.read.LoadAcquire())
	if n > want {
		n = want
	}
	return n
}

// isEmpty reports whether the consumer's read cursor snapshot r has caught
// up with the producer. The acquire-load pairs with the producer's
// release-store, so a false result also publishes the slot contents up to
// the observed write cursor. Consumer only.
func (s *segment[T]) isEmpty(r int64) bool {
	return r == s.write.LoadAcquire()
}

// readable returns the number of elements consumable from the consumer's
// read cursor snapshot r, at most want. Consumer only.
func (s *segment[T]) readable(r, want int64) int64 {
	n := s.write.LoadAcquire() - r
	if n > want {
		n = want
	}
	return n
}

// put stores the element at position cursor. The caller must hold a
// reserved position; there is no bounds check beyond the mask.
func (s *segment[T]) put(cursor int64, elem *T) {
	s.slots[cursor&s.mask] = *elem
}

// take returns the element at position cursor and zeroes the slot so
// referenced objects become collectible once the read cursor advances.
func (s *segment[T]) take(cursor int64) T {
	i := cursor & s.mask
	elem := s.slots[i]
	var zero T
	s.slots[i] = zero
	return elem
}

// advanceWrite publishes n elements stored behind the write cursor
// snapshot w. The release-store makes the slot contents visible to the
// consumer before the new cursor value. Producer only.
func (s *segment[T]) advanceWrite(w, n int64) {
	s.write.StoreRelease(w + n)
}

// advanceRead publishes the consumption of n elements behind the read
// cursor snapshot r, releasing their slots for reuse by the producer.
// Consumer only.
func (s *segment[T]) advanceRead(r, n int64) {
	s.read.StoreRelease(r + n)
}

// occupied returns write - read under relaxed loads. Advisory: either
// cursor may move mid-call.
func (s *segment[T]) occupied() int64 {
	return s.write.LoadRelaxed() - s.read.LoadRelaxed()
}
