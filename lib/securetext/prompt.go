// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package securetext

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/oubliette-security/oubliette/lib/secret"
)

// ReadPassword prompts on stderr and reads a password from the
// terminal with echo disabled, returning it in a read-write Buffer.
// Every intermediate representation is zeroed before returning.
// Fails when stdin is not a terminal; non-interactive callers should
// read from a file or stdin via secret.ReadFromPath instead.
func ReadPassword(prompt string) (*Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, errors.New("securetext: no terminal available for interactive password prompt")
	}

	fmt.Fprint(os.Stderr, prompt)
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("securetext: reading password: %w", err)
	}
	defer secret.Zero(passwordBytes)

	runes := decodeRunes(passwordBytes)
	defer zeroRunes(runes)

	return NewFromRunes(runes)
}

// decodeRunes decodes UTF-8 bytes into a rune slice without the
// intermediate heap string a []rune(string(b)) conversion would leave
// behind.
func decodeRunes(encoded []byte) []rune {
	runes := make([]rune, 0, len(encoded))
	for offset := 0; offset < len(encoded); {
		r, size := utf8.DecodeRune(encoded[offset:])
		runes = append(runes, r)
		offset += size
	}
	return runes
}
