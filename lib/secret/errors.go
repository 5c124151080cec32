// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "errors"

var (
	// ErrDisposed is returned when a container is used after Close.
	ErrDisposed = errors.New("secret: container has been disposed")

	// ErrDestinationTooShort is returned by RevealInto when the
	// destination cannot hold the full contents. The destination is
	// left unmodified.
	ErrDestinationTooShort = errors.New("secret: destination buffer is too short")
)
