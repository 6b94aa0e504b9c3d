// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

func TestFAASegBasic(t *testing.T) {
	q := mpmcq.NewFAASeg(4, 2)

	vals := []int{10, 20, 30}
	for i := range vals {
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := range vals {
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if *(*int)(got) != vals[i] {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), vals[i])
		}
	}
	if _, err := q.Pop(0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestFAASegGrows checks that pushing past a single node's capacity
// allocates a successor node rather than failing, unlike the ring-based
// segment kinds.
func TestFAASegGrows(t *testing.T) {
	q := mpmcq.NewFAASeg(2, 1)
	n := 10
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		vals[i] = i
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if *(*int)(got) != vals[i] {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), vals[i])
		}
	}
}

func TestFAASegConcurrent(t *testing.T) {
	if mpmcq.RaceEnabled {
		t.Skip("skipped under -race: pure-atomics synchronization triggers known false positives")
	}
	const producers = 4
	const perProducer = 2000
	q := mpmcq.NewFAASeg(64, producers+1)

	items := make([][perProducer]int, producers)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				items[p][i] = p*perProducer + i
				for q.Push(unsafe.Pointer(&items[p][i]), p) != nil {
				}
			}
		}(p)
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	total := producers * perProducer
	count := 0
	for count < total {
		got, err := q.Pop(producers)
		if err != nil {
			select {
			case <-done:
				got, err = q.Pop(producers)
				if err != nil {
					continue
				}
			default:
				continue
			}
		}
		v := *(*int)(got)
		mu.Lock()
		if seen[v] {
			mu.Unlock()
			t.Fatalf("duplicate item %d", v)
		}
		seen[v] = true
		mu.Unlock()
		count++
	}
}
