// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides reference-counted containers for sensitive
// data such as passwords, access tokens, and encryption keys.
//
// A [Container] copies its contents into memory allocated by
// lib/arena: outside the Go heap where the platform supports it
// (anonymous mmap, locked against swap, excluded from core dumps),
// always zeroed before release. The container stores the region's
// address and byte length only in encoded form (lib/veil), so
// reflection-based field walkers and generic serializers never see
// either value.
//
// Containers are logically immutable: contents are written once at
// construction and only ever read afterward. Every read produces a
// copy — no operation returns a reference into the backing region.
//
//   - [New] / [NewFromBytes] -- copy a typed slice into protected memory
//   - [Container.RevealInto] -- copy out into a caller-supplied slice
//   - [Container.Reveal] -- copy out into a new, unprotected slice
//   - [Container.Use] -- run a callback over a transient scratch copy
//     that is zeroed on every exit path, including panics
//   - [Container.Clone] -- independent deep copy
//   - [Container.Close] -- release; idempotent, concurrency-safe
//
// Close is safe to call while reveals are in flight on other
// goroutines: an atomic reference count defers the actual free (and
// zeroing) until the last in-flight read completes. The region is
// freed exactly once.
//
// [ReadFromPath] constructs a container from a file or stdin, zeroing
// every intermediate buffer.
//
// Depends on lib/arena and lib/veil. Imported by lib/securetext,
// lib/sealed, and lib/enclave.
package secret
