// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/oubliette-security/oubliette/lib/arena"
)

// Element constrains containers to fixed-size scalar types whose bit
// pattern is the whole value: no pointers, no internal structure the
// garbage collector needs to trace. rune and byte are covered through
// their underlying types.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~int | ~uint | ~uintptr | ~float32 | ~float64
}

// elementSize reports sizeof(T) in bytes.
func elementSize[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// checkedByteLen computes count elements of T in bytes, failing like
// an allocation failure on overflow rather than wrapping.
func checkedByteLen[T Element](count int) (int, error) {
	size := elementSize[T]()
	if count < 0 || count > math.MaxInt/size {
		return 0, fmt.Errorf("%w: %d elements of %d bytes overflows", arena.ErrAllocation, count, size)
	}
	return count * size, nil
}

// byteView reinterprets a typed slice as its raw bytes without
// copying. The view aliases s; it is valid only while s is reachable.
// Copies through the view are alignment-agnostic by construction: the
// typed side of every copy is a real []T allocated by Go, and the
// untyped side is addressed byte-wise.
func byteView[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*elementSize[T]())
}
