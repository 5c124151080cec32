// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package arena

import "runtime"

// Zero overwrites b with zero bytes. The KeepAlive prevents the
// compiler from eliding the stores when b is about to become
// unreachable.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
