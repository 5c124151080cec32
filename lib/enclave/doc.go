// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package enclave holds secrets encrypted at rest in process memory.
//
// A Container keeps plaintext in locked memory for as long as the
// value lives; an Enclave goes one step further and keeps only
// XChaCha20-Poly1305 ciphertext on the ordinary heap, with the random
// data-encryption key stored in a secret container. Plaintext exists
// only inside Open calls. This is the right shape for secrets that
// are held long-term but used rarely: the window in which a memory
// dump captures usable plaintext shrinks to the duration of each Open.
package enclave
