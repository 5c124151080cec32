// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Oubliette seals secrets to age recipients and unseals them again,
// keeping plaintext in locked memory for the lifetime of the process.
// It reads secrets from a file, stdin, or an interactive password
// prompt, and writes ciphertext as base64 text suitable for storing
// in configuration files or state stores.
// Subcommands: keygen, seal, unseal.
package main
