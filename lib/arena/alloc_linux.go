// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapAllocator allocates anonymous regions outside the Go heap. Each
// region is:
//   - Locked into physical RAM (mlock), preventing swap
//   - Excluded from core dumps (MADV_DONTDUMP)
//   - Invisible to the garbage collector
type mmapAllocator struct{}

func newPlatformAllocator() (allocator, bool) {
	return mmapAllocator{}, true
}

func (mmapAllocator) alloc(size int) ([]byte, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("mlock failed: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, fmt.Errorf("madvise(MADV_DONTDUMP) failed: %w", err)
	}
	return region, nil
}

func (mmapAllocator) free(region []byte) error {
	if err := unix.Munlock(region); err != nil {
		return fmt.Errorf("munlock failed: %w", err)
	}
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}
