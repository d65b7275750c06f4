// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import "unsafe"

// initialCursor is the sentinel value of a segment cursor before any
// element has been produced or consumed through it. Cursors count
// positions, so the first element of a segment lives at position 0.
const initialCursor int64 = -1

// normalizeCapacity rounds the requested per-segment capacity up to the
// next power of two and validates the result.
//
// Returns ErrInvalidCapacity for capacity < 1 and ErrCapacityOverflow when
// rounding cannot be represented as a positive int. The minimum capacity
// is 1: a one-slot segment is valid and simply grows sooner.
func normalizeCapacity(capacity int) (int64, error) {
	if capacity < 1 {
		return 0, ErrInvalidCapacity
	}
	n := roundToPow2(capacity)
	if n <= 0 {
		return 0, ErrCapacityOverflow
	}
	return int64(n), nil
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
