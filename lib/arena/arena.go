// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"unsafe"
)

// ErrAllocation is returned when a region cannot be allocated, either
// because the backend reported exhaustion or because the requested
// size would overflow. Size overflow is deliberately indistinguishable
// from exhaustion: it must never wrap to a small allocation.
var ErrAllocation = errors.New("arena: allocation failed")

const (
	// wordSize is the platform machine word in bytes.
	wordSize = int(unsafe.Sizeof(uintptr(0)))

	// headerSize covers the cookie word and the payload-length word.
	headerSize = 2 * wordSize
)

// Arena allocates and frees secret-storage regions. All methods are
// safe for concurrent use.
type Arena struct {
	backend   allocator
	cookieKey uintptr
}

var (
	defaultOnce  sync.Once
	defaultArena *Arena
)

// Default returns the process-wide arena. It is created on first use
// and never destroyed. The mmap backend is probed once; if the probe
// fails (no mmap support, or mlock forbidden by RLIMIT_MEMLOCK), the
// arena falls back to the heap backend for the life of the process.
func Default() *Arena {
	defaultOnce.Do(func() {
		defaultArena = newArena()
	})
	return defaultArena
}

func newArena() *Arena {
	a := &Arena{cookieKey: randomCookieKey()}
	if backend, ok := newPlatformAllocator(); ok && probe(backend) {
		a.backend = backend
		return a
	}
	a.backend = newHeapAllocator()
	return a
}

// probe verifies the backend can actually allocate. mlock in
// particular can fail at runtime even when the syscall exists.
func probe(backend allocator) bool {
	region, err := backend.alloc(headerSize)
	if err != nil {
		return false
	}
	return backend.free(region) == nil
}

func randomCookieKey() uintptr {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic("arena: reading cookie entropy: " + err.Error())
	}
	key := uintptr(binary.LittleEndian.Uint64(raw[:]))
	if key == 0 {
		key = 1
	}
	return key
}

// cookieFor mixes the base address into the per-process cookie key so
// that a cookie copied from one allocation never validates another.
func (a *Arena) cookieFor(base uintptr) uintptr {
	return a.cookieKey ^ base
}

// header gives word-level access to the cookie and length fields at
// the front of a region. The base address comes from the arena's own
// backend, so the conversion from uintptr is to memory the Go runtime
// either never manages (mmap) or that the backend registry keeps
// reachable (heap).
func header(base uintptr) *[2]uintptr {
	return (*[2]uintptr)(unsafe.Pointer(base)) //nolint:govet // off-heap or registry-pinned region
}

// Alloc allocates a region for payloadLen payload bytes and writes the
// header. It returns the region's base address. A zero payload length
// is valid. Negative lengths and lengths that would overflow when the
// header is added fail exactly like backend exhaustion.
func (a *Arena) Alloc(payloadLen int) (uintptr, error) {
	if payloadLen < 0 || payloadLen > math.MaxInt-headerSize {
		return 0, fmt.Errorf("%w: invalid payload length %d", ErrAllocation, payloadLen)
	}
	region, err := a.backend.alloc(headerSize + payloadLen)
	if err != nil {
		return 0, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, headerSize+payloadLen, err)
	}
	base := uintptr(unsafe.Pointer(&region[0]))
	h := header(base)
	h[0] = a.cookieFor(base)
	h[1] = uintptr(payloadLen)
	return base, nil
}

// PayloadLen returns the payload length recorded in the region header.
// Panics if the cookie does not validate: a mismatch means the header
// was overwritten, or the region was already freed.
func (a *Arena) PayloadLen(base uintptr) int {
	h := header(base)
	if h[0] != a.cookieFor(base) {
		panic("arena: header cookie mismatch (memory corruption or use after free)")
	}
	return int(h[1])
}

// Payload returns the payload bytes of a region. The caller must hold
// a reference that prevents the region from being freed for the
// lifetime of the returned slice.
func (a *Arena) Payload(base uintptr) []byte {
	n := a.PayloadLen(base)
	return unsafe.Slice((*byte)(unsafe.Pointer(base+uintptr(headerSize))), n) //nolint:govet
}

// Free validates the region's cookie, overwrites the entire region
// (header and payload) with zero bytes, and returns it to the backend.
// A cookie mismatch, or a backend free failure, indicates corrupted
// allocator state and panics rather than leaving secret memory in an
// inconsistent state.
func (a *Arena) Free(base uintptr) {
	h := header(base)
	if h[0] != a.cookieFor(base) {
		panic("arena: free cookie mismatch (memory corruption or double free)")
	}
	n := int(h[1])
	region := unsafe.Slice((*byte)(unsafe.Pointer(base)), headerSize+n) //nolint:govet
	Zero(region)
	if err := a.backend.free(region); err != nil {
		panic("arena: releasing region: " + err.Error())
	}
}
