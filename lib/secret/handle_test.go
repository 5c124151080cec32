// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"sync"
	"testing"
)

func TestHandle_AcquireReleaseLifecycle(t *testing.T) {
	h, err := newHandle([]byte("lifecycle"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}

	if err := h.acquire(); err != nil {
		t.Fatalf("acquire on live handle failed: %v", err)
	}
	if got := string(h.payload()); got != "lifecycle" {
		t.Errorf("payload = %q, want %q", got, "lifecycle")
	}
	h.release()

	h.dispose()
	if err := h.acquire(); !errors.Is(err, ErrDisposed) {
		t.Errorf("acquire after dispose-with-no-refs: expected ErrDisposed, got %v", err)
	}
}

func TestHandle_AcquireSucceedsWhileDisposePending(t *testing.T) {
	h, err := newHandle([]byte("pending"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}

	// Take a reference, then request dispose. The region stays live
	// until the reference is released, and new references may still be
	// taken while the dispose is pending.
	if err := h.acquire(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	h.dispose()

	if err := h.acquire(); err != nil {
		t.Fatalf("acquire during pending dispose failed: %v", err)
	}
	if got := string(h.payload()); got != "pending" {
		t.Errorf("payload during pending dispose = %q", got)
	}
	h.release()
	h.release() // last release performs the free

	if err := h.acquire(); !errors.Is(err, ErrDisposed) {
		t.Errorf("acquire after final release: expected ErrDisposed, got %v", err)
	}
}

func TestHandle_DisposeIdempotent(t *testing.T) {
	h, err := newHandle([]byte("twice"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}
	h.dispose()
	h.dispose() // second dispose must not double-free (arena would panic)
}

func TestHandle_ReleaseWithoutAcquirePanics(t *testing.T) {
	h, err := newHandle([]byte("unbalanced"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}
	defer h.dispose()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on release without acquire")
		}
	}()
	h.release()
}

func TestHandle_PayloadWithoutAcquirePanics(t *testing.T) {
	h, err := newHandle([]byte("guarded"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}
	defer h.dispose()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on payload access without acquire")
		}
	}()
	h.payload()
}

func TestHandle_DuplicateIsDeepCopy(t *testing.T) {
	original, err := newHandle([]byte("deep"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}

	duplicate, err := original.duplicate()
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	defer duplicate.dispose()

	if original.base.Unwrap() == duplicate.base.Unwrap() {
		t.Error("duplicate shares the original's allocation")
	}

	original.dispose()

	if err := duplicate.acquire(); err != nil {
		t.Fatalf("acquire on duplicate after disposing original failed: %v", err)
	}
	if got := string(duplicate.payload()); got != "deep" {
		t.Errorf("duplicate payload = %q, want %q", got, "deep")
	}
	duplicate.release()
}

func TestHandle_ConcurrentAcquireReleaseDisposeRace(t *testing.T) {
	// Many goroutines acquire/release while one disposes. The freed
	// transition must happen exactly once: a double free would panic
	// inside the arena, and a leak is indirectly covered by acquire
	// eventually reporting ErrDisposed.
	for round := 0; round < 50; round++ {
		h, err := newHandle([]byte("contended"))
		if err != nil {
			t.Fatalf("newHandle failed: %v", err)
		}

		const workers = 8
		var group sync.WaitGroup
		for worker := 0; worker < workers; worker++ {
			group.Add(1)
			go func() {
				defer group.Done()
				for i := 0; i < 20; i++ {
					if err := h.acquire(); err != nil {
						if !errors.Is(err, ErrDisposed) {
							t.Errorf("unexpected acquire error: %v", err)
						}
						return
					}
					_ = h.payloadLen()
					h.release()
				}
			}()
		}
		group.Add(1)
		go func() {
			defer group.Done()
			h.dispose()
		}()
		group.Wait()

		if err := h.acquire(); !errors.Is(err, ErrDisposed) {
			t.Fatalf("handle not freed after race round: %v", err)
		}
	}
}

func TestHandle_ConcurrentDispose(t *testing.T) {
	// Racing disposers must agree on a single free.
	h, err := newHandle([]byte("dispose-race"))
	if err != nil {
		t.Fatalf("newHandle failed: %v", err)
	}

	var group sync.WaitGroup
	for i := 0; i < 8; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			h.dispose()
		}()
	}
	group.Wait()
}
