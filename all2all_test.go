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

func TestAll2AllBasic(t *testing.T) {
	a := mpmcq.NewAll2All(2, 3, 4)
	if a.Producers() != 2 || a.Consumers() != 3 {
		t.Fatalf("Producers/Consumers: got %d/%d, want 2/3", a.Producers(), a.Consumers())
	}
	if a.Capacity() != 2*3*4 {
		t.Fatalf("Capacity: got %d, want %d", a.Capacity(), 2*3*4)
	}

	vals := []int{1, 2, 3}
	for i := range vals {
		if err := a.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if got := a.Length(0); got != 3 {
		t.Fatalf("Length: got %d, want 3", got)
	}

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		var got unsafe.Pointer
		var err error
		for c := 0; c < a.Consumers(); c++ {
			got, err = a.Pop(c)
			if err == nil {
				break
			}
		}
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		seen[*(*int)(got)] = true
	}
	for _, v := range vals {
		if !seen[v] {
			t.Fatalf("item %d never popped", v)
		}
	}
}

func TestAll2AllConcurrent(t *testing.T) {
	if mpmcq.RaceEnabled {
		t.Skip("skipped under -race: pure-atomics synchronization triggers known false positives")
	}
	const producers = 3
	const consumers = 3
	const perProducer = 2000
	a := mpmcq.NewAll2All(producers, consumers, 32)

	items := make([][perProducer]int, producers)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				items[p][i] = p*perProducer + i
				for a.Push(unsafe.Pointer(&items[p][i]), p) != nil {
				}
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	seen := make(map[int]bool)
	var mu sync.Mutex
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func(c int) {
			defer cwg.Done()
			lastFromProducer := make([]int, producers)
			for p := range lastFromProducer {
				lastFromProducer[p] = -1
			}
			for {
				got, err := a.Pop(c)
				if err != nil {
					select {
					case <-done:
						if got, err = a.Pop(c); err != nil {
							return
						}
					default:
						continue
					}
				}
				v := *(*int)(got)
				p := v / perProducer
				if v <= lastFromProducer[p] {
					t.Errorf("consumer %d saw producer %d's item %d out of order after %d", c, p, v, lastFromProducer[p])
					return
				}
				lastFromProducer[p] = v

				mu.Lock()
				if seen[v] {
					mu.Unlock()
					t.Errorf("duplicate item %d", v)
					return
				}
				seen[v] = true
				n := len(seen)
				mu.Unlock()
				if n == producers*perProducer {
					return
				}
			}
		}(c)
	}
	cwg.Wait()
}
