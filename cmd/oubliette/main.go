// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/oubliette-security/oubliette/lib/sealed"
	"github.com/oubliette-security/oubliette/lib/secret"
	"github.com/oubliette-security/oubliette/lib/securetext"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "keygen":
		return runKeygen(os.Args[2:])
	case "seal":
		return runSeal(os.Args[2:])
	case "unseal":
		return runUnseal(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: oubliette <subcommand> [flags]

Subcommands:
  keygen   Generate an age keypair
  seal     Encrypt a secret to one or more age recipients
  unseal   Decrypt a sealed secret

Run 'oubliette <subcommand> --help' for subcommand flags.
`)
}

// runKeygen generates a new age keypair and prints it.
// The public key goes to stdout (for sharing/embedding).
// The private key goes to stderr, or to --output with mode 0600.
func runKeygen(args []string) error {
	flags := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	var outputPath string
	flags.StringVar(&outputPath, "output", "", "write the private key to this file instead of stderr")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}
	defer keypair.Close()

	privateKey, err := secret.RevealString(keypair.PrivateKey)
	if err != nil {
		return fmt.Errorf("revealing private key: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(privateKey+"\n"), 0600); err != nil {
			return fmt.Errorf("writing private key file: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "# Private key (keep this secret — store securely):\n")
		fmt.Fprintf(os.Stderr, "%s\n", privateKey)
	}
	fmt.Fprintf(os.Stdout, "%s\n", keypair.PublicKey)
	return nil
}

// runSeal encrypts a secret to age recipients and writes the
// ciphertext to stdout as base64 text.
func runSeal(args []string) error {
	flags := pflag.NewFlagSet("seal", pflag.ContinueOnError)
	var (
		configPath string
		recipients []string
		inPath     string
		prompt     bool
	)
	flags.StringVar(&configPath, "config", "", "path to config file (or OUBLIETTE_CONFIG)")
	flags.StringArrayVar(&recipients, "recipient", nil, "age public key to seal to (repeatable)")
	flags.StringVar(&inPath, "in", "-", "read the secret from this file (- for stdin)")
	flags.BoolVar(&prompt, "prompt", false, "read the secret from an interactive password prompt")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	recipients = append(recipients, cfg.Recipients...)
	if len(recipients) == 0 {
		flags.Usage()
		return fmt.Errorf("at least one recipient is required (--recipient or config file)")
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", recipient, err)
		}
	}

	plaintext, err := readPlaintext(inPath, prompt)
	if err != nil {
		return err
	}
	defer plaintext.Close()

	ciphertext, err := sealed.Encrypt(plaintext, recipients)
	if err != nil {
		return fmt.Errorf("sealing secret: %w", err)
	}

	logger := newCommandLogger().With("command", "seal")
	logger.Info("secret sealed",
		"recipients", len(recipients),
		"plaintext_bytes", plaintext.Len(),
		"ciphertext_chars", len(ciphertext))

	fmt.Fprintf(os.Stdout, "%s\n", ciphertext)
	return nil
}

// runUnseal decrypts a sealed secret and writes the plaintext to
// stdout. The private key is read from --identity or the config
// file's identity path, never from a flag value or the environment.
func runUnseal(args []string) error {
	flags := pflag.NewFlagSet("unseal", pflag.ContinueOnError)
	var (
		configPath   string
		identityPath string
		inPath       string
	)
	flags.StringVar(&configPath, "config", "", "path to config file (or OUBLIETTE_CONFIG)")
	flags.StringVar(&identityPath, "identity", "", "path to the age private key file")
	flags.StringVar(&inPath, "in", "-", "read the ciphertext from this file (- for stdin)")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if identityPath == "" {
		identityPath = cfg.Identity
	}
	if identityPath == "" {
		flags.Usage()
		return fmt.Errorf("an identity is required (--identity or config file)")
	}

	privateKey, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return fmt.Errorf("reading private key: %w", err)
	}
	defer privateKey.Close()
	if err := sealed.ParsePrivateKey(privateKey); err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	ciphertextContainer, err := secret.ReadFromPath(inPath)
	if err != nil {
		return fmt.Errorf("reading ciphertext: %w", err)
	}
	defer ciphertextContainer.Close()
	// The ciphertext is not itself secret; it only transits a
	// container because ReadFromPath returns one.
	ciphertext, err := secret.RevealString(ciphertextContainer)
	if err != nil {
		return err
	}

	plaintext, err := sealed.Decrypt(strings.TrimSpace(ciphertext), privateKey)
	if err != nil {
		return fmt.Errorf("unsealing secret: %w", err)
	}
	defer plaintext.Close()

	logger := newCommandLogger().With("command", "unseal")
	logger.Info("secret unsealed", "plaintext_bytes", plaintext.Len())

	return plaintext.Use(func(data []byte) error {
		_, err := os.Stdout.Write(data)
		return err
	})
}

// readPlaintext acquires the secret to seal: interactively when prompt
// is set, otherwise from the file path (or stdin for "-").
func readPlaintext(inPath string, prompt bool) (*secret.Container[byte], error) {
	if !prompt {
		return secret.ReadFromPath(inPath)
	}

	buffer, err := securetext.ReadPassword("Secret: ")
	if err != nil {
		return nil, fmt.Errorf("reading secret from terminal: %w", err)
	}
	defer buffer.Close()
	return containerFromBuffer(buffer)
}

// containerFromBuffer re-encodes an interactive text buffer as UTF-8
// bytes in a new container. The transient encoding scratch is zeroed.
func containerFromBuffer(buffer *securetext.Buffer) (*secret.Container[byte], error) {
	var container *secret.Container[byte]
	err := buffer.Use(func(view []rune) error {
		encoded := make([]byte, 0, len(view)*utf8.UTFMax)
		for _, r := range view {
			encoded = utf8.AppendRune(encoded, r)
		}
		defer secret.Zero(encoded)
		var err error
		container, err = secret.NewFromBytes(encoded)
		return err
	})
	if err != nil {
		return nil, err
	}
	return container, nil
}
