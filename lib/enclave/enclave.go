// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package enclave

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/oubliette-security/oubliette/lib/secret"
)

// KeySize is the size in bytes of the per-enclave data-encryption key.
const KeySize = 32

// Version is the version byte prepended to every sealed blob. Included
// as additional authenticated data (AAD) in the AEAD Seal/Open call,
// so tampering with the version byte causes authentication failure.
const Version byte = 0x01

// Overhead is the total byte overhead per sealed blob:
// 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16 (Poly1305 tag).
const Overhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// HKDF info string for deriving the AEAD key from the enclave key.
// Changing this invalidates all existing enclaves.
var hkdfInfoSeal = []byte("oubliette.enclave.seal.v1")

// BLAKE3 keyed-hash domain tag for Fingerprint.
var fingerprintDomain = []byte("oubliette.enclave.fingerprint.v1")

// Enclave holds a secret as ciphertext on the ordinary heap. The
// data-encryption key lives in a secret container; the plaintext is
// reconstructed only inside Open and zeroed when the returned
// container is closed.
//
// An Enclave is safe for concurrent Open calls. Close zeroes and
// releases the key; after Close, Open returns an error.
type Enclave struct {
	key        *secret.Container[byte]
	ciphertext []byte
}

// Seal encrypts the plaintext under a fresh random key and returns an
// Enclave holding the ciphertext. The plaintext container is borrowed
// for the duration of the call and is NOT closed; the caller keeps
// ownership and should close it once the enclave replaces it.
func Seal(plaintext *secret.Container[byte]) (*Enclave, error) {
	keyBytes := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
		return nil, fmt.Errorf("generating enclave key: %w", err)
	}
	// NewFromBytes copies into locked memory; zero the heap copy.
	key, err := secret.NewFromBytes(keyBytes)
	secret.Zero(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("storing enclave key: %w", err)
	}

	var ciphertext []byte
	sealErr := plaintext.Use(func(data []byte) error {
		var err error
		ciphertext, err = sealBlob(key, data)
		return err
	})
	if sealErr != nil {
		key.Close()
		return nil, sealErr
	}

	return &Enclave{key: key, ciphertext: ciphertext}, nil
}

// Open decrypts the enclave and returns the plaintext in a new secret
// container. The caller owns the returned container and must close it.
func (e *Enclave) Open() (*secret.Container[byte], error) {
	plaintext, err := openBlob(e.key, e.ciphertext)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(plaintext)
	return secret.NewFromBytes(plaintext)
}

// Size returns the plaintext length in bytes. The length of an
// AEAD-sealed blob is not confidential; callers size destination
// buffers with it.
func (e *Enclave) Size() int {
	return len(e.ciphertext) - Overhead
}

// Fingerprint returns a BLAKE3 keyed hash of the plaintext, keyed by
// the enclave key. Two enclaves holding the same plaintext produce
// different fingerprints; the same enclave always produces the same
// one. Useful as a cache or map key that reveals nothing about the
// content.
func (e *Enclave) Fingerprint() ([32]byte, error) {
	var result [32]byte
	plaintext, err := e.Open()
	if err != nil {
		return result, err
	}
	defer plaintext.Close()

	err = plaintext.Use(func(data []byte) error {
		return e.key.Use(func(keyBytes []byte) error {
			hasher, err := blake3.NewKeyed(keyBytes)
			if err != nil {
				return fmt.Errorf("initializing keyed hash: %w", err)
			}
			hasher.Write(fingerprintDomain)
			hasher.Write(data)
			copy(result[:], hasher.Sum(nil))
			return nil
		})
	})
	return result, err
}

// Close zeroes and releases the enclave key, making the ciphertext
// permanently unrecoverable. Idempotent.
func (e *Enclave) Close() error {
	return e.key.Close()
}

// sealBlob encrypts plaintext using XChaCha20-Poly1305 under a key
// derived from the enclave key, producing the standard blob format:
//
//	[Version: 1 byte (0x01)] [Nonce: 24 bytes (random)] [Ciphertext+Tag: N+16 bytes]
//
// The version byte is included as AAD, so it is authenticated.
func sealBlob(key *secret.Container[byte], plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 1+chacha20poly1305.NonceSizeX, len(plaintext)+Overhead)
	output[0] = Version
	copy(output[1:], nonce[:])

	// Seal appends the ciphertext+tag to output.
	output = aead.Seal(output, nonce[:], plaintext, []byte{Version})
	return output, nil
}

// openBlob decrypts a blob produced by sealBlob. It verifies the
// version byte, extracts the nonce, and authenticates the ciphertext
// against the AAD. The returned plaintext is on the ordinary heap;
// the caller must zero it.
func openBlob(key *secret.Container[byte], blob []byte) ([]byte, error) {
	if len(blob) < Overhead {
		return nil, fmt.Errorf("sealed blob is %d bytes, minimum is %d (version + nonce + tag)",
			len(blob), Overhead)
	}

	version := blob[0]
	if version != Version {
		return nil, fmt.Errorf("sealed blob version %d is not supported (expected %d)", version, Version)
	}

	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := blob[1+chacha20poly1305.NonceSizeX:]

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte{version})
	if err != nil {
		return nil, fmt.Errorf("AEAD decryption failed (wrong key or tampered data): %w", err)
	}
	return plaintext, nil
}

// newAEAD derives the AEAD key from the enclave key via HKDF-SHA256
// and constructs the XChaCha20-Poly1305 cipher. The salt is nil: the
// enclave key is already uniformly random, so HKDF's extract phase
// with nil salt is appropriate per RFC 5869.
func newAEAD(key *secret.Container[byte]) (cipher.AEAD, error) {
	var aead cipher.AEAD
	useErr := key.Use(func(keyBytes []byte) error {
		reader := hkdf.New(sha256.New, keyBytes, nil, hkdfInfoSeal)
		derived := make([]byte, KeySize)
		if _, err := io.ReadFull(reader, derived); err != nil {
			secret.Zero(derived)
			return fmt.Errorf("HKDF key derivation failed: %w", err)
		}
		defer secret.Zero(derived)
		x, err := chacha20poly1305.NewX(derived)
		if err != nil {
			return fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
		}
		aead = x
		return nil
	})
	if useErr != nil {
		return nil, useErr
	}
	return aead, nil
}
