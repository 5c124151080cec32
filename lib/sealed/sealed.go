// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/oubliette-security/oubliette/lib/secret"
)

// Keypair holds an age x25519 keypair. The private key lives in a
// secret container (protected memory, zeroed on close). The public key
// is a plain string, safe to publish.
//
// The caller must call Close when the keypair is no longer needed.
type Keypair struct {
	// PrivateKey is the secret key in AGE-SECRET-KEY-1... format. Must
	// never be logged, written to disk in plaintext, or passed on a
	// command line.
	PrivateKey *secret.Container[byte]

	// PublicKey is the corresponding public key in age1... format.
	PublicKey string
}

// Close releases the private key memory. Idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair with the private
// key in a secret container.
//
// The caller must call Close on the returned Keypair when done.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}

	// Move the private key into protected memory immediately. The
	// identity's own string representation is a heap value that will
	// be collected eventually — unavoidable with the age API — so the
	// container is the durable copy.
	privateKeyBytes := []byte(identity.String())
	privateKey, err := secret.NewFromBytes(privateKeyBytes)
	secret.Zero(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Encrypt encrypts the contents of a secret container to one or more
// recipients specified by their age public key strings (age1...
// format). Returns the ciphertext as a standard base64-encoded string.
// The plaintext is read through the container's scratch-copy callback
// and never escapes this function.
//
// At least one recipient is required.
func Encrypt(plaintext *secret.Container[byte], recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertextBuffer bytes.Buffer
	err := plaintext.Use(func(view []byte) error {
		writer, err := age.Encrypt(&ciphertextBuffer, recipients...)
		if err != nil {
			return fmt.Errorf("creating age encryptor: %w", err)
		}
		if _, err := writer.Write(view); err != nil {
			return fmt.Errorf("writing plaintext to age encryptor: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("finalizing age encryption: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(ciphertextBuffer.Bytes()), nil
}

// Decrypt decrypts a base64-encoded ciphertext string using the given
// private key and returns the plaintext in a new secret container.
//
// The private key is borrowed and NOT closed by this function. The
// caller must call Close on the returned container.
func Decrypt(ciphertext string, privateKey *secret.Container[byte]) (*secret.Container[byte], error) {
	rawCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 ciphertext: %w", err)
	}

	var plaintext []byte
	err = privateKey.Use(func(keyView []byte) error {
		// age.ParseX25519Identity requires a string. The heap copy is
		// brief and request-scoped; the container remains the durable
		// copy of the key.
		identity, err := age.ParseX25519Identity(string(keyView))
		if err != nil {
			return fmt.Errorf("parsing private key: %w", err)
		}

		reader, err := age.Decrypt(bytes.NewReader(rawCiphertext), identity)
		if err != nil {
			return fmt.Errorf("decrypting: %w", err)
		}

		plaintext, err = io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("reading decrypted plaintext: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer secret.Zero(plaintext)

	container, err := secret.NewFromBytes(plaintext)
	if err != nil {
		return nil, fmt.Errorf("protecting decrypted plaintext: %w", err)
	}
	return container, nil
}

// ParsePublicKey validates an age public key string. Returns an error
// if the key is not a valid age x25519 public key.
func ParsePublicKey(publicKey string) error {
	_, err := age.ParseX25519Recipient(publicKey)
	if err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

// ParsePrivateKey validates an age private key held in a secret
// container. The key is borrowed and NOT closed.
func ParsePrivateKey(privateKey *secret.Container[byte]) error {
	return privateKey.Use(func(keyView []byte) error {
		if _, err := age.ParseX25519Identity(string(keyView)); err != nil {
			return fmt.Errorf("invalid age private key: %w", err)
		}
		return nil
	})
}
