// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption and decryption over secret
// containers. It wraps filippo.io/age for the operations a secret
// store needs: generate x25519 keypairs, encrypt container contents to
// multiple recipients, and decrypt with a private key held in
// protected memory.
//
// Ciphertext is base64-encoded for storage in text config files or
// environment blocks. Plaintext never crosses the package boundary as
// a plain slice: encryption reads the source container through its
// scratch-copy callback, and decryption moves the result into a fresh
// container, zeroing the intermediate bytes.
//
// Key exports:
//
//   - [GenerateKeypair] -- new age x25519 keypair, private key in a
//     secret container
//   - [Encrypt] -- encrypt container contents to age public keys
//   - [Decrypt] -- decrypt base64 ciphertext with a container-held key
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Depends on lib/secret for protected memory.
package sealed
