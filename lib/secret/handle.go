// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"sync/atomic"

	"github.com/oubliette-security/oubliette/lib/arena"
	"github.com/oubliette-security/oubliette/lib/veil"
)

// The handle state is one atomic word: the outstanding-reference count
// in the low bits, a dispose-requested bit, and a freed bit. Packing
// everything into one word lets a single compare-and-swap decide the
// transition to freed, so the region is freed exactly once no matter
// how acquire, release, and dispose race.
const (
	stateDisposed = uint64(1) << 62
	stateFreed    = uint64(1) << 63
	countMask     = stateDisposed - 1
)

// handle owns exactly one arena region. The base address and byte
// length are stored veiled so that neither is structurally visible.
type handle struct {
	base  veil.Word
	size  veil.Word
	state atomic.Uint64
}

// newHandle allocates a region sized for payload and copies payload in.
func newHandle(payload []byte) (*handle, error) {
	base, err := arena.Default().Alloc(len(payload))
	if err != nil {
		return nil, err
	}
	copy(arena.Default().Payload(base), payload)
	return &handle{
		base: veil.Wrap(base),
		size: veil.Wrap(uintptr(len(payload))),
	}, nil
}

// acquire takes a reference. It fails with ErrDisposed once the region
// has been freed; it succeeds while a dispose is pending but not yet
// final, which is what makes Close safe to race with in-flight reads.
// Every successful acquire must be paired with exactly one release.
func (h *handle) acquire() error {
	for {
		state := h.state.Load()
		if state&stateFreed != 0 {
			return ErrDisposed
		}
		if h.state.CompareAndSwap(state, state+1) {
			return nil
		}
	}
}

// release drops a reference. The compare-and-swap that both drops the
// count to zero and observes the dispose bit is the one and only
// transition to freed; the winning goroutine frees the region.
func (h *handle) release() {
	for {
		state := h.state.Load()
		if state&countMask == 0 {
			panic("secret: release without matching acquire")
		}
		next := state - 1
		if next&countMask == 0 && next&stateDisposed != 0 {
			next |= stateFreed
		}
		if h.state.CompareAndSwap(state, next) {
			if next&stateFreed != 0 {
				h.free()
			}
			return
		}
	}
}

// dispose requests release of the region. If no references are
// outstanding the region is freed immediately; otherwise the last
// release performs the free. Idempotent.
func (h *handle) dispose() {
	for {
		state := h.state.Load()
		if state&stateFreed != 0 {
			return
		}
		next := state | stateDisposed
		if next&countMask == 0 {
			next |= stateFreed
		}
		if h.state.CompareAndSwap(state, next) {
			if next&stateFreed != 0 && state&stateFreed == 0 {
				h.free()
			}
			return
		}
	}
}

func (h *handle) free() {
	arena.Default().Free(h.base.Unwrap())
}

// disposeRequested reports whether dispose has been called, whether or
// not the region has been freed yet.
func (h *handle) disposeRequested() bool {
	return h.state.Load()&(stateDisposed|stateFreed) != 0
}

// payloadLen returns the byte length the region was allocated with.
// It reads only the veiled copy, never the region itself, so it is
// safe at any point in the handle's lifecycle.
func (h *handle) payloadLen() int {
	return int(h.size.Unwrap())
}

// payload returns the region's bytes. The caller must hold a reference
// from acquire; calling without one is a lifecycle bug and panics.
func (h *handle) payload() []byte {
	if h.state.Load()&countMask == 0 {
		panic("secret: payload access without an acquired reference")
	}
	return arena.Default().Payload(h.base.Unwrap())
}

// duplicate allocates a new region of equal size and copies the bytes
// across under a reference, returning an independent handle.
func (h *handle) duplicate() (*handle, error) {
	if err := h.acquire(); err != nil {
		return nil, err
	}
	defer h.release()
	return newHandle(h.payload())
}
