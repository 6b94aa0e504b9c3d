// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmcq_test

import (
	"testing"
	"unsafe"

	"github.com/ringforge/mpmcq"
)

func TestMutexQueueBasic(t *testing.T) {
	q := mpmcq.NewMutexQueue(2)

	vals := []int{1, 2}
	for i := range vals {
		if err := q.Push(unsafe.Pointer(&vals[i]), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := q.Push(unsafe.Pointer(&vals[0]), 0); !mpmcq.IsWouldBlock(err) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
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

func TestMutexQueueUnbounded(t *testing.T) {
	q := mpmcq.NewMutexQueue(0)
	if q.Capacity() != 0 {
		t.Fatalf("Capacity: got %d, want 0", q.Capacity())
	}
	v := 42
	for i := 0; i < 1000; i++ {
		if err := q.Push(unsafe.Pointer(&v), 0); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if got := q.Length(0); got != 1000 {
		t.Fatalf("Length: got %d, want 1000", got)
	}
}
