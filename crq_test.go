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

func TestCRQSegBasic(t *testing.T) {
	q := mpmcq.NewCRQSeg(4, 2)

	vals := []int{1, 2, 3, 4}
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

// TestCRQSegClosesOnceFull verifies a standalone CRQSeg never reopens
// for pushes after closing, even once drained by pops.
func TestCRQSegClosesOnceFull(t *testing.T) {
	q := mpmcq.NewCRQSeg(2, 1)
	a, b := 1, 2
	if err := q.Push(unsafe.Pointer(&a), 0); err != nil {
		t.Fatalf("Push(a): %v", err)
	}
	if err := q.Push(unsafe.Pointer(&b), 0); err != nil {
		t.Fatalf("Push(b): %v", err)
	}
	c := 3
	if err := q.Push(unsafe.Pointer(&c), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}
	if _, err := q.Pop(0); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if _, err := q.Pop(0); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if err := q.Push(unsafe.Pointer(&c), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push after drain on a closed segment: got %v, want ErrWouldBlock", err)
	}
}

func TestCRQSegConcurrentMPMC(t *testing.T) {
	if mpmcq.RaceEnabled {
		t.Skip("skipped under -race: pure-atomics synchronization triggers known false positives")
	}
	const n = 4096
	q := mpmcq.NewCRQSeg(n, 8)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	var wg sync.WaitGroup
	const producers = 4
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := p; i < n; i += producers {
				for q.Push(unsafe.Pointer(&items[i]), 0) != nil {
				}
			}
		}(p)
	}
	wg.Wait()

	seen := make([]bool, n)
	count := 0
	for count < n {
		got, err := q.Pop(0)
		if err != nil {
			continue
		}
		v := *(*int)(got)
		if seen[v] {
			t.Fatalf("duplicate item %d", v)
		}
		seen[v] = true
		count++
	}
}
