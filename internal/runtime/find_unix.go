// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FindExecutable resolves the runtime binary. The configured trusted path
// wins when it exists; the fixed candidate list and finally PATH are
// consulted only when it does not. PATH is last on purpose: an attacker
// who controls PATH must not be able to shadow a present trusted binary.
func FindExecutable(trustedPath string) (string, error) {
	if trustedPath != "" {
		if _, err := os.Stat(trustedPath); err == nil {
			return trustedPath, nil
		}
	}

	possiblePaths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}
	if home := os.Getenv("HOME"); home != "" {
		possiblePaths = append(possiblePaths,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}
	possiblePaths = append(possiblePaths,
		"/Applications/Ollama.app/Contents/Resources/ollama",
	)

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("runtime binary not found at trusted path %q, common installation directories, or PATH", trustedPath)
}
