// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package arena provides raw allocation of secret-storage regions,
// isolated where possible from the general-purpose allocator.
//
// An [Arena] hands out fixed-size regions laid out as a small header
// (corruption-detection cookie plus payload length) followed by the
// payload bytes. Regions are identified by their base address, not by
// a Go pointer, so the garbage collector never traces them and generic
// object-graph walkers never see them.
//
// Two allocator backends exist, selected once at process start:
//
//   - mmap: anonymous mmap regions locked into physical RAM (mlock)
//     and, on Linux, excluded from core dumps (MADV_DONTDUMP). Memory
//     lives entirely outside the Go heap.
//   - heap: ordinary Go allocations tracked in a registry. Used on
//     platforms without mmap support and in test harnesses that need
//     to inspect a region after it has been freed.
//
// [Arena.Free] overwrites the entire region (header and payload) with
// zero bytes before returning it to the backend. A cookie mismatch on
// free or on header access indicates memory corruption or a double
// free and panics: continuing after corruption of secret memory is
// never safe.
//
// The arena is defense-in-depth, not a security boundary. It reduces
// the chance that dangling pointers elsewhere in the process alias
// freed secret memory; it does not defend against an attacker who can
// already read process memory.
//
// Depends on golang.org/x/sys/unix. No other internal dependencies.
package arena
