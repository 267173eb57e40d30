// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain opens the OS keychain/credential store used for kenes secrets.
// It maps the configured backend name onto the keyring library's backends and
// falls back to the native store of the current platform when none is configured.
//
// The package supports macOS Keychain, Windows Credential Manager, the Secret
// Service and KWallet on Linux, pass, and an encrypted file store for headless hosts.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "kenes"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken = "access_token"
)

// Config selects and configures the keyring backend.
type Config struct {
	// Backend is a keyring backend name ("keychain", "wincred", "secret-service",
	// "kwallet", "pass", "file"). Empty selects the native backends for the OS.
	Backend string
	// FileDir is the directory of the encrypted file backend.
	FileDir string
	// Password unlocks the encrypted file backend.
	Password string
}

// ErrNoPassword is returned when the file backend is selected without a password.
var ErrNoPassword = errors.New("file keyring requires a password (set KENES_KEYRING_PASSWORD)")

// Open opens the keyring described by cfg.
func Open(cfg Config) (keyring.Keyring, error) {
	backends, err := allowedBackends(cfg.Backend, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	kc := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: backends,
		PassPrefix:      ServiceName,
		KWalletAppID:    ServiceName,
		KWalletFolder:   ServiceName,
		FileDir:         cfg.FileDir,
	}

	// Hint prefixes where supported to minimize namespace collisions
	if runtime.GOOS == "windows" {
		kc.WinCredPrefix = ServiceName
	}

	for _, b := range backends {
		if b == keyring.FileBackend {
			if cfg.Password == "" {
				return nil, ErrNoPassword
			}
			kc.FilePasswordFunc = keyring.FixedStringPrompt(cfg.Password)
		}
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// allowedBackends resolves the backend list for a configured name on the given OS.
func allowedBackends(name, goos string) ([]keyring.BackendType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch goos {
		case "darwin":
			// Try macOS Keychain first, then pass (password store) as fallback
			return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}, nil
		case "windows":
			return []keyring.BackendType{keyring.WinCredBackend}, nil
		default:
			return []keyring.BackendType{
				keyring.SecretServiceBackend,
				keyring.KWalletBackend,
				keyring.PassBackend,
			}, nil
		}
	}

	switch keyring.BackendType(name) {
	case keyring.KeychainBackend, keyring.WinCredBackend, keyring.SecretServiceBackend,
		keyring.KWalletBackend, keyring.PassBackend, keyring.FileBackend, keyring.KeyCtlBackend:
		return []keyring.BackendType{keyring.BackendType(name)}, nil
	}
	return nil, fmt.Errorf("unknown keyring backend %q", name)
}
