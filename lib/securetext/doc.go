// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package securetext provides an editable text buffer for secret
// character data — passwords assembled one keystroke at a time,
// passphrases under construction — without ever holding the full
// plaintext in an ordinary Go slice for longer than one scratch-buffer
// lifetime.
//
// A [Buffer] holds its content as an immutable secret.Container of
// runes. Every edit builds the complete new content in a scratch
// slice, constructs a new container, swaps it in, and closes the old
// one, all under the buffer's lock; the scratch is zeroed on every
// exit path. The held container is therefore always fully formed —
// a reader never observes a partial edit.
//
//   - [Buffer.Append], [Buffer.Insert], [Buffer.Remove], [Buffer.Set],
//     [Buffer.Clear] -- edits, serialized by the instance lock
//   - [Buffer.MakeReadOnly] -- one-way; no way back to writable
//   - [Buffer.Copy] -- independent clone of the current content
//   - [Buffer.Use] / [Buffer.String] -- reveal via scratch copy /
//     unprotected heap string (explicit escape hatch)
//   - [ReadPassword] -- interactive terminal prompt with echo disabled
//
// Content length is capped at [MaxLength] runes to bound worst-case
// scratch allocation.
//
// Depends on lib/secret and golang.org/x/term.
package securetext
