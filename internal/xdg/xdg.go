// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for kenes.
// It falls back to the traditional locations when the XDG variables are
// unset, and creates every directory with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

// App is the directory name used under every XDG base.
const App = "kenes"

// ConfigDir returns the kenes config directory, creating it if missing.
// It falls back to ~/.config/kenes when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the kenes state directory (logs, file keyring), creating
// it if missing. It falls back to ~/.local/state/kenes when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", ".local", "state")
}

func resolve(env string, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, App)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
