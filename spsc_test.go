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

func TestSPSCBasic(t *testing.T) {
	q := mpmcq.NewSPSC(3)

	if q.Capacity() != 4 {
		t.Fatalf("Capacity: got %d, want 4", q.Capacity())
	}

	vals := []int{100, 101, 102, 103}
	for i := range vals {
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := q.Push(unsafe.Pointer(&vals[0]), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}
	if got := q.Length(0); got != 4 {
		t.Fatalf("Length: got %d, want 4", got)
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

func TestSPSCConcurrent(t *testing.T) {
	if mpmcq.RaceEnabled {
		t.Skip("skipped under -race: pure-atomics synchronization triggers known false positives")
	}
	const n = 20000
	q := mpmcq.NewSPSC(64)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range items {
			for q.Push(unsafe.Pointer(&items[i]), 0) != nil {
			}
		}
	}()

	for i := 0; i < n; i++ {
		var got unsafe.Pointer
		var err error
		for {
			got, err = q.Pop(0)
			if err == nil {
				break
			}
		}
		if *(*int)(got) != i {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), i)
		}
	}
	wg.Wait()
}
