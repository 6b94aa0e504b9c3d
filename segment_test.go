// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

// segmentBase is unexported; its promoted methods are exercised here
// through CRQSeg, which embeds it directly with no overrides beyond
// isClosedForPush.
func TestSegmentBaseIndicesAndClose(t *testing.T) {
	q := mpmcq.NewCRQSeg(2, 1)
	if q.IsClosed() {
		t.Fatal("freshly constructed segment reports closed")
	}
	if q.TailIndexValue() != 0 || q.HeadIndex() != 0 {
		t.Fatalf("fresh segment indices: tail=%d head=%d, want 0/0", q.TailIndexValue(), q.HeadIndex())
	}

	a := 1
	if err := q.Push(unsafe.Pointer(&a), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if q.TailIndexValue() != 1 {
		t.Fatalf("TailIndexValue after one push: got %d, want 1", q.TailIndexValue())
	}

	q.ForceClose()
	if !q.IsClosed() {
		t.Fatal("ForceClose did not set the closed state")
	}
	b := 2
	if err := q.Push(unsafe.Pointer(&b), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on force-closed segment: got %v, want ErrWouldBlock", err)
	}

	// Items pushed before the forced close remain poppable.
	got, err := q.Pop(0)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if *(*int)(got) != 1 {
		t.Fatalf("Pop: got %d, want 1", *(*int)(got))
	}
}
