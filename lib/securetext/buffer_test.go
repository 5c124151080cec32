// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package securetext

import (
	"errors"
	"sync"
	"testing"

	"github.com/oubliette-security/oubliette/lib/testutil"
)

// revealString reads the buffer content for assertions.
func revealString(t *testing.T, b *Buffer) string {
	t.Helper()
	s, err := b.String()
	if err != nil {
		t.Fatalf("String() failed: %v", err)
	}
	return s
}

func newBuffer(t *testing.T) *Buffer {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return b
}

func TestBuffer_EditSequence(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	// append 'a', append 'b', insert 'z' at 0, remove at 1 => "zb".
	if err := b.Append('a'); err != nil {
		t.Fatalf("Append('a') failed: %v", err)
	}
	if err := b.Append('b'); err != nil {
		t.Fatalf("Append('b') failed: %v", err)
	}
	if err := b.Insert(0, 'z'); err != nil {
		t.Fatalf("Insert(0, 'z') failed: %v", err)
	}
	if err := b.Remove(1); err != nil {
		t.Fatalf("Remove(1) failed: %v", err)
	}

	if got := revealString(t, b); got != "zb" {
		t.Errorf("content = %q, want %q", got, "zb")
	}
	if got := b.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestBuffer_InsertAtEnd(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	if err := b.Insert(0, 'x'); err != nil {
		t.Fatalf("Insert into empty buffer failed: %v", err)
	}
	if err := b.Insert(1, 'y'); err != nil {
		t.Fatalf("Insert at end failed: %v", err)
	}
	if got := revealString(t, b); got != "xy" {
		t.Errorf("content = %q, want %q", got, "xy")
	}
}

func TestBuffer_Set(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	for _, r := range "password" {
		if err := b.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := b.Set(0, 'P'); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := revealString(t, b); got != "Password" {
		t.Errorf("content = %q, want %q", got, "Password")
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	for _, r := range "wipe-me" {
		if err := b.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := b.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := b.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if got := revealString(t, b); got != "" {
		t.Errorf("content after Clear = %q, want empty", got)
	}
}

func TestBuffer_IndexValidation(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	for _, r := range "ab" {
		if err := b.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	tests := []struct {
		name string
		op   func() error
	}{
		{"insert negative", func() error { return b.Insert(-1, 'x') }},
		{"insert past end", func() error { return b.Insert(3, 'x') }},
		{"remove negative", func() error { return b.Remove(-1) }},
		{"remove at length", func() error { return b.Remove(2) }},
		{"set negative", func() error { return b.Set(-1, 'x') }},
		{"set at length", func() error { return b.Set(2, 'x') }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.op(); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}

	// Failed edits leave the content untouched.
	if got := revealString(t, b); got != "ab" {
		t.Errorf("content after failed edits = %q, want %q", got, "ab")
	}
}

func TestBuffer_ReadOnlyEnforcement(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	if err := b.Append('s'); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	b.MakeReadOnly()

	if !b.IsReadOnly() {
		t.Fatal("IsReadOnly() = false after MakeReadOnly")
	}

	mutations := []struct {
		name string
		op   func() error
	}{
		{"append", func() error { return b.Append('x') }},
		{"insert", func() error { return b.Insert(0, 'x') }},
		{"remove", func() error { return b.Remove(0) }},
		{"set", func() error { return b.Set(0, 'x') }},
		{"clear", func() error { return b.Clear() }},
	}
	for _, mutation := range mutations {
		t.Run(mutation.name, func(t *testing.T) {
			if err := mutation.op(); !errors.Is(err, ErrReadOnly) {
				t.Errorf("expected ErrReadOnly, got %v", err)
			}
		})
	}

	// Reads still work.
	if got := b.Len(); got != 1 {
		t.Errorf("Len() on read-only buffer = %d, want 1", got)
	}
	if got := revealString(t, b); got != "s" {
		t.Errorf("content = %q, want %q", got, "s")
	}
}

func TestBuffer_CopyIndependence(t *testing.T) {
	original := newBuffer(t)
	defer original.Close()

	for _, r := range "orig" {
		if err := original.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	original.MakeReadOnly()

	duplicate, err := original.Copy()
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	defer duplicate.Close()

	// The copy is writable even when the source is read-only.
	if duplicate.IsReadOnly() {
		t.Error("Copy() of a read-only buffer should be writable")
	}
	if err := duplicate.Append('!'); err != nil {
		t.Fatalf("Append to copy failed: %v", err)
	}

	if got := revealString(t, original); got != "orig" {
		t.Errorf("original changed with the copy: %q", got)
	}
	if got := revealString(t, duplicate); got != "orig!" {
		t.Errorf("copy content = %q, want %q", got, "orig!")
	}
}

func TestBuffer_MaxLength(t *testing.T) {
	runes := make([]rune, MaxLength)
	for i := range runes {
		runes[i] = 'a'
	}
	b, err := NewFromRunes(runes)
	if err != nil {
		t.Fatalf("NewFromRunes at MaxLength failed: %v", err)
	}
	defer b.Close()

	if err := b.Append('x'); !errors.Is(err, ErrTooLong) {
		t.Errorf("Append past MaxLength: expected ErrTooLong, got %v", err)
	}
	if err := b.Insert(0, 'x'); !errors.Is(err, ErrTooLong) {
		t.Errorf("Insert past MaxLength: expected ErrTooLong, got %v", err)
	}

	// Non-growing edits still work at the ceiling.
	if err := b.Set(0, 'z'); err != nil {
		t.Errorf("Set at MaxLength failed: %v", err)
	}
	if err := b.Remove(0); err != nil {
		t.Errorf("Remove at MaxLength failed: %v", err)
	}

	if _, err := NewFromRunes(make([]rune, MaxLength+1)); !errors.Is(err, ErrTooLong) {
		t.Errorf("NewFromRunes past MaxLength: expected ErrTooLong, got %v", err)
	}
}

func TestBuffer_UseZeroesScratch(t *testing.T) {
	b := newBuffer(t)
	defer b.Close()

	for _, r := range "peek" {
		if err := b.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	var captured []rune
	err := b.Use(func(view []rune) error {
		if string(view) != "peek" {
			t.Errorf("view = %q, want %q", string(view), "peek")
		}
		captured = view
		return nil
	})
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}

	testutil.RequireZeroed(t, captured, "scratch after Use")
}

func TestBuffer_OperationsAfterClose(t *testing.T) {
	b := newBuffer(t)
	if err := b.Append('x'); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := b.Append('x'); !errors.Is(err, ErrClosed) {
		t.Errorf("Append after Close: expected ErrClosed, got %v", err)
	}
	if _, err := b.String(); !errors.Is(err, ErrClosed) {
		t.Errorf("String after Close: expected ErrClosed, got %v", err)
	}
	if _, err := b.Copy(); !errors.Is(err, ErrClosed) {
		t.Errorf("Copy after Close: expected ErrClosed, got %v", err)
	}
	if got := b.Len(); got != 0 {
		t.Errorf("Len() after Close = %d, want 0", got)
	}
}

func TestBuffer_ConcurrentEdits(t *testing.T) {
	// Edits are serialized by the lock: after N concurrent appends the
	// buffer holds exactly N runes, all fully formed.
	b := newBuffer(t)
	defer b.Close()

	const workers = 8
	const appendsPerWorker = 25

	var group sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for i := 0; i < appendsPerWorker; i++ {
				if err := b.Append('c'); err != nil {
					t.Errorf("concurrent Append failed: %v", err)
					return
				}
			}
		}()
	}
	group.Wait()

	if got := b.Len(); got != workers*appendsPerWorker {
		t.Errorf("Len() = %d, want %d", got, workers*appendsPerWorker)
	}
}

func TestDecodeRunes(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"ascii", "secret"},
		{"multibyte", "pässwörd"},
		{"emoji", "🔑key"},
		{"empty", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := decodeRunes([]byte(test.encoded))
			if string(got) != test.encoded {
				t.Errorf("decodeRunes(%q) = %q", test.encoded, string(got))
			}
		})
	}
}
