// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples with concurrent producer/consumer goroutines.
// These trigger false positives with Go's race detector because lock-free
// queue synchronization uses atomic sequences that the detector cannot see.
// The examples are correct; they're excluded from race testing.

package dynq_test

import (
	"fmt"
	"sync"

	"code.hybscloud.com/dynq"
	"code.hybscloud.com/iox"
)

// Example_pipeline demonstrates a multi-stage pipeline using SPSC queues.
// Enqueue never fails, so only the dequeue side of each stage backs off.
func Example_pipeline() {
	// Pipeline: Generate → Double → Print
	stage1to2, _ := dynq.NewSPSC[int](8) // Generate → Double
	stage2to3, _ := dynq.NewSPSC[int](8) // Double → Print

	var wg sync.WaitGroup
	results := make([]int, 0, 5)
	var mu sync.Mutex

	// Stage 1: Generate numbers 1-5
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5; i++ {
			v := i
			stage1to2.Enqueue(&v)
		}
	}()

	// Stage 2: Double each number
	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		processed := 0
		for processed < 5 {
			v, err := stage1to2.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			doubled := v * 2
			stage2to3.Enqueue(&doubled)
			processed++
		}
	}()

	// Stage 3: Collect results
	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for {
			mu.Lock()
			done := len(results) >= 5
			mu.Unlock()
			if done {
				return
			}
			v, err := stage2to3.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			mu.Lock()
			results = append(results, v)
			mu.Unlock()
		}
	}()

	wg.Wait()

	for i, v := range results {
		fmt.Printf("Stage output %d: %d\n", i, v)
	}

	// Output:
	// Stage output 0: 2
	// Stage output 1: 4
	// Stage output 2: 6
	// Stage output 3: 8
	// Stage output 4: 10
}

// Example_burstyProducer demonstrates the main use case: a producer that
// must never stall, feeding a slower consumer. The queue grows under the
// burst and the consumer catches up at its own pace.
func Example_burstyProducer() {
	q, _ := dynq.NewSPSC[int](16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// The whole burst lands without a single retry loop
		for i := 1; i <= 100; i++ {
			v := i
			q.Enqueue(&v)
		}
	}()

	// Consumer drains with backoff on empty
	received := make([]int, 0, 100)
	backoff := iox.Backoff{}
	for len(received) < 100 {
		v, err := q.Dequeue()
		if err != nil {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		received = append(received, v)
	}
	wg.Wait()

	fmt.Println("Received:", len(received))
	fmt.Println("First:", received[0])
	fmt.Println("Last:", received[99])

	// Output:
	// Received: 100
	// First: 1
	// Last: 100
}
