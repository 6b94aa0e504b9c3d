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

func TestLinkedAdapterGrowsAcrossSegments(t *testing.T) {
	q := mpmcq.NewLinkedCRQ(2, 1)
	const n = 20
	items := make([]int, n)
	for i := 0; i < n; i++ {
		items[i] = i
		if err := q.Push(unsafe.Pointer(&items[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if got := q.Length(0); got != n {
		t.Fatalf("Length: got %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		got, err := q.Pop(0)
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if *(*int)(got) != i {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), i)
		}
	}
	if _, err := q.Pop(0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestLinkedAdapterAllSegmentKinds(t *testing.T) {
	adapters := []mpmcq.Queue{
		mpmcq.NewLinkedCRQ(4, 2),
		mpmcq.NewLinkedPRQ(4, 2),
		mpmcq.NewLinkedMTQ(4, 2),
		mpmcq.NewLinkedFAA(4, 2),
	}
	for _, q := range adapters {
		v := 99
		if err := q.Push(unsafe.Pointer(&v), 0); err != nil {
			t.Fatalf("%s: Push: %v", q.ClassName(false), err)
		}
		got, err := q.Pop(1)
		if err != nil {
			t.Fatalf("%s: Pop: %v", q.ClassName(false), err)
		}
		if *(*int)(got) != 99 {
			t.Fatalf("%s: Pop: got %d, want 99", q.ClassName(false), *(*int)(got))
		}
	}
}

func TestLinkedAdapterConcurrentMPMC(t *testing.T) {
	if mpmcq.RaceEnabled {
		t.Skip("skipped under -race: pure-atomics synchronization triggers known false positives")
	}
	const producers = 4
	const consumers = 4
	const perProducer = 2000
	q := mpmcq.NewLinkedCRQ(64, producers+consumers)

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

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var mu sync.Mutex
	seen := make(map[int]bool)
	var cwg sync.WaitGroup
	total := producers * perProducer
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func(c int) {
			defer cwg.Done()
			for {
				got, err := q.Pop(producers + c)
				if err != nil {
					select {
					case <-done:
						if got, err = q.Pop(producers + c); err != nil {
							return
						}
					default:
						continue
					}
				}
				v := *(*int)(got)
				mu.Lock()
				if seen[v] {
					mu.Unlock()
					t.Errorf("duplicate item %d", v)
					return
				}
				seen[v] = true
				n := len(seen)
				mu.Unlock()
				if n == total {
					return
				}
			}
		}(c)
	}
	cwg.Wait()
}
