// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"

	"github.com/oubliette-security/oubliette/lib/arena"
)

// Container holds one secret value of element type T in protected
// memory. Containers are immutable after construction and safe for
// concurrent use: any number of goroutines may reveal the same
// container while another closes it.
type Container[T Element] struct {
	h *handle
}

// New copies source into protected memory. The source slice is not
// zeroed; callers holding transient plaintext should zero it once the
// container is built (see [Zero]). An empty source is valid and
// produces a container of length zero.
func New[T Element](source []T) (*Container[T], error) {
	if _, err := checkedByteLen[T](len(source)); err != nil {
		return nil, err
	}
	h, err := newHandle(byteView(source))
	if err != nil {
		return nil, err
	}
	return &Container[T]{h: h}, nil
}

// NewFromBytes copies a byte slice into protected memory.
func NewFromBytes(source []byte) (*Container[byte], error) {
	return New(source)
}

// Len returns the element count. It is recomputed from the stored byte
// length on every call; a byte length that is not a multiple of the
// element size means the container's size class was corrupted, which
// is unrecoverable. Returns 0 once Close has been called.
func (c *Container[T]) Len() int {
	if c.h.disposeRequested() {
		return 0
	}
	return c.length()
}

// length computes the element count without consulting the dispose
// flag, for use while a reference is held.
func (c *Container[T]) length() int {
	size := elementSize[T]()
	byteLen := c.h.payloadLen()
	if byteLen%size != 0 {
		panic(fmt.Sprintf("secret: stored byte length %d is not a multiple of element size %d", byteLen, size))
	}
	return byteLen / size
}

// RevealInto copies the contents into destination and returns the
// number of elements written. If destination is too short it returns
// ErrDestinationTooShort and leaves destination untouched — there are
// no partial writes.
func (c *Container[T]) RevealInto(destination []T) (int, error) {
	if err := c.h.acquire(); err != nil {
		return 0, err
	}
	defer c.h.release()

	count := c.length()
	if len(destination) < count {
		return 0, ErrDestinationTooShort
	}
	copy(byteView(destination[:count]), c.h.payload())
	return count, nil
}

// Reveal copies the contents into a newly allocated slice on the
// ordinary heap. The caller owns an unprotected copy from this point:
// this is the explicit escape hatch for API boundaries, and the caller
// is responsible for the copy's lifetime.
func (c *Container[T]) Reveal() ([]T, error) {
	if err := c.h.acquire(); err != nil {
		return nil, err
	}
	defer c.h.release()

	out := make([]T, c.length())
	copy(byteView(out), c.h.payload())
	return out, nil
}

// Use copies the contents into a fresh scratch slice, invokes fn with
// it, and zeroes the scratch on every exit path — normal return, error
// return, and panic unwind. The scratch is never pooled or recycled.
// fn must treat the view as read-only and must not retain it.
//
// The handle reference is released before fn runs: a concurrent Close
// only has to wait for the copy, never for the callback.
func (c *Container[T]) Use(fn func(view []T) error) error {
	scratch, err := c.Reveal()
	if err != nil {
		return err
	}
	defer Zero(byteView(scratch))
	return fn(scratch)
}

// UseNulTerminated runs fn over a NUL-terminated copy of a byte
// container's contents, for interop with consumers that expect
// C-style strings. The scratch copy is zeroed on all exit paths.
func UseNulTerminated(c *Container[byte], fn func(view []byte) error) error {
	if err := c.h.acquire(); err != nil {
		return err
	}
	count := c.length()
	scratch := make([]byte, count+1)
	copy(scratch, c.h.payload())
	c.h.release()

	defer Zero(scratch)
	return fn(scratch)
}

// RevealString returns the contents of a byte container as a string.
// Go strings are immutable heap values, so the result cannot be zeroed
// — use this only at API boundaries that require string arguments.
func RevealString(c *Container[byte]) (string, error) {
	data, err := c.Reveal()
	if err != nil {
		return "", err
	}
	s := string(data)
	Zero(data)
	return s, nil
}

// Clone produces a fully independent deep copy: a new allocation with
// the bytes copied across, never a shared reference. Closing the clone
// does not affect the original and vice versa.
func (c *Container[T]) Clone() (*Container[T], error) {
	duplicated, err := c.h.duplicate()
	if err != nil {
		return nil, err
	}
	return &Container[T]{h: duplicated}, nil
}

// Close releases the container. The backing region is zeroed and freed
// once the last in-flight reveal completes. Idempotent; subsequent
// reveals return ErrDisposed.
func (c *Container[T]) Close() error {
	c.h.dispose()
	return nil
}

// Zero overwrites b with zero bytes.
func Zero(b []byte) {
	arena.Zero(b)
}
