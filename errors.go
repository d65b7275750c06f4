// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the queue is empty.
//
// Only Dequeue returns it: Enqueue never fails and never blocks, because the
// producer grows the chain instead of rejecting the element. An empty queue
// is a control flow signal, not a failure. The caller should retry later
// (with backoff or yield) rather than propagating the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    elem, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        process(elem)
//	        continue
//	    }
//	    if dynq.IsWouldBlock(err) {
//	        backoff.Wait() // Queue drained - wait for the producer
//	        continue
//	    }
//	    return err // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidCapacity indicates a requested capacity below the minimum of 1.
// Reported at construction; the construction call fails and no queue is
// created.
var ErrInvalidCapacity = errors.New("dynq: capacity must be >= 1")

// ErrCapacityOverflow indicates a requested capacity whose next power of
// two is not representable as a positive int. Reported at construction; the
// construction call fails and no queue is created.
var ErrCapacityOverflow = errors.New("dynq: capacity rounds beyond int range")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock. Construction errors are genuine
// failures and return false.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
