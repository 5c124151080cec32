// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
	"unsafe"
)

// allocator is the capability abstraction over the two backends. alloc
// returns a zero-filled region of exactly size bytes; free returns a
// region previously obtained from alloc on the same backend.
type allocator interface {
	alloc(size int) ([]byte, error)
	free(region []byte) error
}

// heapAllocator serves platforms without mmap, and test harnesses that
// need to inspect freed regions. Regions live on the ordinary Go heap;
// the registry keeps them reachable between alloc and free (the base
// address alone is invisible to the garbage collector) and detects
// frees of unknown regions.
type heapAllocator struct {
	mu      sync.Mutex
	regions map[uintptr][]byte
}

func newHeapAllocator() *heapAllocator {
	return &heapAllocator{regions: make(map[uintptr][]byte)}
}

func (h *heapAllocator) alloc(size int) ([]byte, error) {
	region := make([]byte, size)
	base := uintptr(unsafe.Pointer(&region[0]))
	h.mu.Lock()
	h.regions[base] = region
	h.mu.Unlock()
	return region, nil
}

func (h *heapAllocator) free(region []byte) error {
	base := uintptr(unsafe.Pointer(&region[0]))
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, known := h.regions[base]; !known {
		panic("arena: free of unknown region (double free or corrupted base address)")
	}
	delete(h.regions, base)
	return nil
}
