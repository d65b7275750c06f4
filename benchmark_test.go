// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq_test

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"code.hybscloud.com/dynq"
	"code.hybscloud.com/spin"
)

// =============================================================================
// SPSC Baselines (steady state, no growth)
// =============================================================================

func BenchmarkSPSC_SingleOp(b *testing.B) {
	q, _ := dynq.NewSPSC[int](1024)

	b.ResetTimer()
	for i := range b.N {
		v := i
		q.Enqueue(&v)
		q.Dequeue()
	}
}

func BenchmarkSPSCIndirect_SingleOp(b *testing.B) {
	q, _ := dynq.NewSPSCIndirect(1024)

	b.ResetTimer()
	for i := range b.N {
		q.Enqueue(uintptr(i))
		q.Dequeue()
	}
}

func BenchmarkSPSCPtr_SingleOp(b *testing.B) {
	q, _ := dynq.NewSPSCPtr(1024)
	val := 42

	b.ResetTimer()
	for range b.N {
		q.Enqueue(unsafe.Pointer(&val))
		q.Dequeue()
	}
}

// =============================================================================
// Segment Hop (worst case: one-slot segments)
// =============================================================================

// With capacity 1 and one element in flight, the chain settles at three
// segments; every enqueue lands via the reuse branch and every dequeue hops.
func BenchmarkSPSC_SegmentHop(b *testing.B) {
	q, _ := dynq.NewSPSC[int](1)
	v := 0
	q.Enqueue(&v)

	b.ResetTimer()
	for i := range b.N {
		v := i
		q.Enqueue(&v)
		q.Dequeue()
	}
}

func BenchmarkSPSCIndirect_SegmentHop(b *testing.B) {
	q, _ := dynq.NewSPSCIndirect(1)
	q.Enqueue(1)

	b.ResetTimer()
	for i := range b.N {
		q.Enqueue(uintptr(i))
		q.Dequeue()
	}
}

// =============================================================================
// Segment Capacity Variants
// =============================================================================

func BenchmarkSPSCIndirect_SegmentCapacity(b *testing.B) {
	capacities := []int{16, 64, 256, 1024, 4096, 8192}

	for _, cap := range capacities {
		b.Run(fmt.Sprintf("Cap%d", cap), func(b *testing.B) {
			q, _ := dynq.NewSPSCIndirect(cap)
			b.ResetTimer()
			for i := range b.N {
				q.Enqueue(uintptr(i))
				q.Dequeue()
			}
		})
	}
}

// =============================================================================
// Batch Operations
// =============================================================================

func BenchmarkSPSC_Batch(b *testing.B) {
	batchSizes := []int{1, 4, 16, 64}

	for _, batch := range batchSizes {
		b.Run(fmt.Sprintf("Batch%d", batch), func(b *testing.B) {
			q, _ := dynq.NewSPSC[int](4096)
			src := make([]int, batch)
			dst := make([]int, batch)
			for i := range src {
				src[i] = i
			}
			ops := b.N / batch
			if ops < 1 {
				ops = 1
			}

			b.ResetTimer()
			for range ops {
				q.EnqueueBatch(src)
				q.DequeueBatch(dst)
			}
		})
	}
}

func BenchmarkSPSCIndirect_Batch(b *testing.B) {
	batchSizes := []int{1, 4, 16, 64}

	for _, batch := range batchSizes {
		b.Run(fmt.Sprintf("Batch%d", batch), func(b *testing.B) {
			q, _ := dynq.NewSPSCIndirect(4096)
			src := make([]uintptr, batch)
			dst := make([]uintptr, batch)
			for i := range src {
				src[i] = uintptr(i + 1)
			}
			ops := b.N / batch
			if ops < 1 {
				ops = 1
			}

			b.ResetTimer()
			for range ops {
				q.EnqueueBatch(src)
				q.DequeueBatch(dst)
			}
		})
	}
}

// =============================================================================
// Concurrent Throughput
// =============================================================================

// The producer paces itself on the advisory occupancy counter; without
// pacing an unbounded queue would grow with the full benchmark workload.
func BenchmarkSPSC_Concurrent(b *testing.B) {
	q, _ := dynq.NewSPSC[int](1024)

	var consumerWg sync.WaitGroup
	done := make(chan struct{})
	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		sw := spin.Wait{}
		for {
			select {
			case <-done:
				for {
					if _, err := q.Dequeue(); err != nil {
						return
					}
				}
			default:
				if _, err := q.Dequeue(); err == nil {
					sw.Reset()
				} else {
					sw.Once()
				}
			}
		}
	}()

	b.ResetTimer()
	sw := spin.Wait{}
	for i := range b.N {
		for q.OccupiedApprox() > 8192 {
			sw.Once()
		}
		sw.Reset()
		v := i
		q.Enqueue(&v)
	}
	b.StopTimer()
	close(done)
	consumerWg.Wait()
}

func BenchmarkSPSCIndirect_Concurrent(b *testing.B) {
	q, _ := dynq.NewSPSCIndirect(1024)

	var consumerWg sync.WaitGroup
	done := make(chan struct{})
	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		sw := spin.Wait{}
		for {
			select {
			case <-done:
				for {
					if _, err := q.Dequeue(); err != nil {
						return
					}
				}
			default:
				if _, err := q.Dequeue(); err == nil {
					sw.Reset()
				} else {
					sw.Once()
				}
			}
		}
	}()

	b.ResetTimer()
	sw := spin.Wait{}
	for i := range b.N {
		for q.OccupiedApprox() > 8192 {
			sw.Once()
		}
		sw.Reset()
		q.Enqueue(uintptr(i + 1))
	}
	b.StopTimer()
	close(done)
	consumerWg.Wait()
}

// =============================================================================
// Flavor Overhead Comparison
// =============================================================================

func BenchmarkOverhead_Comparison(b *testing.B) {
	b.Run("Generic", func(b *testing.B) {
		q, _ := dynq.NewSPSC[int](1024)
		b.ResetTimer()
		for i := range b.N {
			v := i
			q.Enqueue(&v)
			q.Dequeue()
		}
	})

	b.Run("Indirect", func(b *testing.B) {
		q, _ := dynq.NewSPSCIndirect(1024)
		b.ResetTimer()
		for i := range b.N {
			q.Enqueue(uintptr(i))
			q.Dequeue()
		}
	})

	b.Run("Ptr", func(b *testing.B) {
		q, _ := dynq.NewSPSCPtr(1024)
		val := 42
		b.ResetTimer()
		for range b.N {
			q.Enqueue(unsafe.Pointer(&val))
			q.Dequeue()
		}
	})
}
