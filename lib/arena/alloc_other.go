// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package arena

// Platforms without anonymous mmap fall back to the heap backend.
func newPlatformAllocator() (allocator, bool) {
	return nil, false
}
