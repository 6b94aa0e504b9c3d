// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

// Hazard-pointer retirement is exercised end-to-end through LinkedAdapter's
// multi-segment retirement path rather than directly: the registry has no
// exported type in this package's public surface, only adapters that hold
// one. This test grows a chain across many small segments from one
// goroutine, then drains it in FIFO order, so every drained segment passes
// through Retire while items behind it must still come back intact.
func TestLinkedAdapterSurvivesManySegmentTransitions(t *testing.T) {
	q := mpmcq.NewLinkedCRQ(4, 2)
	const n = 500
	items := make([]int, n)
	for i := 0; i < n; i++ {
		items[i] = i
		if err := q.Push(unsafe.Pointer(&items[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		got, err := q.Pop(1)
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if *(*int)(got) != i {
			t.Fatalf("Pop(%d): got %d, want %d", i, *(*int)(got), i)
		}
	}
}
