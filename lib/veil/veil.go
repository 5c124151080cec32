// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

// Package veil stores machine words (addresses, lengths) in an encoded
// form so that no structurally-visible field ever equals the plain
// value. Reflection-based dumpers, naive serializers, and memory-scan
// tools that look for literal pointer or length values see only the
// encoded word.
//
// The encoding is a rotation followed by XOR with a per-process mask
// derived at startup from fresh entropy. It is reversible by anyone
// who knows the transform and can read the mask — by design. The goal
// is defeating accidental disclosure through generic code paths, not
// resisting an attacker with arbitrary memory access.
package veil

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"

	"github.com/zeebo/blake3"
)

// maskDomainKey is the BLAKE3 keyed-hash domain for mask derivation.
// The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes, so the key is inspectable in hex dumps
// without sacrificing any property of BLAKE3 keyed mode.
var maskDomainKey = [32]byte{
	'o', 'u', 'b', 'l', 'i', 'e', 't', 't', 'e', '.', 'v', 'e', 'i', 'l', '.', 'm',
	'a', 's', 'k', '.', 'v', '1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// rotation is the fixed left-rotation applied before masking. Any odd
// count works; the rotation exists so that an encoded word is not a
// plain XOR that low-entropy inputs (small lengths) would make easy to
// spot in a scan.
const rotation = 17

// mask is the per-process encoding mask, derived once at init and
// immutable afterward.
var mask uintptr

func init() {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("veil: reading mask entropy: " + err.Error())
	}

	hasher, err := blake3.NewKeyed(maskDomainKey[:])
	if err != nil {
		panic("veil: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(seed[:])
	digest := hasher.Sum(nil)

	mask = uintptr(binary.LittleEndian.Uint64(digest[:8]))
	if mask == 0 {
		// A zero mask would store values in the clear.
		mask = uintptr(binary.LittleEndian.Uint64(digest[8:16])) | 1
	}
}

// Word holds exactly one machine word of encoded state. The zero Word
// is not meaningful; always construct via Wrap. Word is a value type
// with no ownership implications: it neither allocates nor frees.
type Word struct {
	value uintptr
}

// Wrap encodes a raw word.
func Wrap(raw uintptr) Word {
	return Word{value: uintptr(bits.RotateLeft(uint(raw), rotation)) ^ mask}
}

// Unwrap decodes the stored word.
func (w Word) Unwrap() uintptr {
	return uintptr(bits.RotateLeft(uint(w.value)^uint(mask), -rotation))
}
