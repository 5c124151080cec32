// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package securetext

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oubliette-security/oubliette/lib/secret"
)

// MaxLength is the maximum buffer length in runes. The ceiling bounds
// the scratch allocation an edit can make.
const MaxLength = 65536

var (
	// ErrClosed is returned when a buffer is used after Close.
	ErrClosed = errors.New("securetext: buffer has been closed")

	// ErrReadOnly is returned by mutating operations after
	// MakeReadOnly. The buffer state is unchanged.
	ErrReadOnly = errors.New("securetext: buffer is read-only")

	// ErrIndexOutOfRange is returned for an index outside the valid
	// range of the operation. The buffer state is unchanged.
	ErrIndexOutOfRange = errors.New("securetext: index out of range")

	// ErrTooLong is returned when an edit would grow the buffer past
	// MaxLength. The buffer state is unchanged.
	ErrTooLong = errors.New("securetext: buffer length would exceed maximum")
)

// Buffer is an editable secret text buffer. All operations on one
// Buffer are serialized by its lock; no interleaving of two edits is
// observable. The zero value is not usable — construct with New.
type Buffer struct {
	mu       sync.Mutex
	content  *secret.Container[rune]
	readOnly bool
	closed   bool
}

// New creates an empty, writable buffer.
func New() (*Buffer, error) {
	content, err := secret.New([]rune{})
	if err != nil {
		return nil, err
	}
	return &Buffer{content: content}, nil
}

// NewFromRunes creates a buffer holding a copy of source. The source
// slice is not zeroed; callers holding transient plaintext should zero
// it once the buffer is built.
func NewFromRunes(source []rune) (*Buffer, error) {
	if len(source) > MaxLength {
		return nil, fmt.Errorf("%w: %d runes (maximum %d)", ErrTooLong, len(source), MaxLength)
	}
	content, err := secret.New(source)
	if err != nil {
		return nil, err
	}
	return &Buffer{content: content}, nil
}

// Append appends one rune to the end of the buffer.
func (b *Buffer) Append(r rune) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mutable(); err != nil {
		return err
	}

	length := b.content.Len()
	if length+1 > MaxLength {
		return fmt.Errorf("%w: %d runes (maximum %d)", ErrTooLong, length+1, MaxLength)
	}
	return b.rebuild(length+1, func(current, next []rune) {
		copy(next, current)
		next[length] = r
	})
}

// Insert inserts one rune at index, shifting the remainder right.
// Valid indices are 0 through Len inclusive.
func (b *Buffer) Insert(index int, r rune) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mutable(); err != nil {
		return err
	}

	length := b.content.Len()
	if index < 0 || index > length {
		return fmt.Errorf("%w: insert at %d with length %d", ErrIndexOutOfRange, index, length)
	}
	if length+1 > MaxLength {
		return fmt.Errorf("%w: %d runes (maximum %d)", ErrTooLong, length+1, MaxLength)
	}
	return b.rebuild(length+1, func(current, next []rune) {
		copy(next, current[:index])
		next[index] = r
		copy(next[index+1:], current[index:])
	})
}

// Remove deletes the rune at index, shifting the remainder left.
// Valid indices are 0 through Len-1.
func (b *Buffer) Remove(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mutable(); err != nil {
		return err
	}

	length := b.content.Len()
	if index < 0 || index >= length {
		return fmt.Errorf("%w: remove at %d with length %d", ErrIndexOutOfRange, index, length)
	}
	return b.rebuild(length-1, func(current, next []rune) {
		copy(next, current[:index])
		copy(next[index:], current[index+1:])
	})
}

// Set replaces the rune at index. Valid indices are 0 through Len-1.
func (b *Buffer) Set(index int, r rune) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mutable(); err != nil {
		return err
	}

	length := b.content.Len()
	if index < 0 || index >= length {
		return fmt.Errorf("%w: set at %d with length %d", ErrIndexOutOfRange, index, length)
	}
	return b.rebuild(length, func(current, next []rune) {
		copy(next, current)
		next[index] = r
	})
}

// Clear empties the buffer.
func (b *Buffer) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mutable(); err != nil {
		return err
	}
	return b.rebuild(0, func(current, next []rune) {})
}

// Len returns the current length in runes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return b.content.Len()
}

// IsReadOnly reports whether the buffer has been made read-only.
func (b *Buffer) IsReadOnly() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readOnly
}

// MakeReadOnly permanently blocks all mutating operations. There is no
// way to make the buffer writable again. Reveal operations and Len
// continue to work.
func (b *Buffer) MakeReadOnly() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = true
}

// Copy returns a new writable buffer holding an independent clone of
// the current content. Closing or editing either buffer never affects
// the other.
func (b *Buffer) Copy() (*Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	clone, err := b.content.Clone()
	if err != nil {
		return nil, err
	}
	return &Buffer{content: clone}, nil
}

// Use invokes fn with a transient scratch copy of the content; the
// scratch is zeroed on every exit path. fn must treat the view as
// read-only, must not retain it, and must not call back into the
// buffer (the instance lock is held).
func (b *Buffer) Use(fn func(view []rune) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.content.Use(fn)
}

// String returns the content as a string. Go strings are immutable
// heap values that cannot be zeroed — this is the explicit escape
// hatch for API boundaries, and the caller owns the consequence.
func (b *Buffer) String() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrClosed
	}

	revealed, err := b.content.Reveal()
	if err != nil {
		return "", err
	}
	s := string(revealed)
	zeroRunes(revealed)
	return s, nil
}

// Close releases the buffer's content. Idempotent; all further
// operations return ErrClosed.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.content.Close()
}

// mutable checks the preconditions shared by all edits. Caller holds
// the lock.
func (b *Buffer) mutable() error {
	if b.closed {
		return ErrClosed
	}
	if b.readOnly {
		return ErrReadOnly
	}
	return nil
}

// rebuild performs one edit: reveal the current content into scratch,
// let build produce the new content into a second scratch of newLen
// runes, swap in a fresh container, and close the old one. Both
// scratches are zeroed on every exit path. Caller holds the lock.
func (b *Buffer) rebuild(newLen int, build func(current, next []rune)) error {
	current := make([]rune, b.content.Len())
	defer zeroRunes(current)
	if _, err := b.content.RevealInto(current); err != nil {
		return err
	}

	next := make([]rune, newLen)
	defer zeroRunes(next)
	build(current, next)

	replacement, err := secret.New(next)
	if err != nil {
		return err
	}
	previous := b.content
	b.content = replacement
	return previous.Close()
}

func zeroRunes(s []rune) {
	for i := range s {
		s[i] = 0
	}
}
