// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FindExecutable resolves the runtime binary on Windows. The configured
// trusted path wins when it exists; the fixed candidate list and finally
// PATH are consulted only when it does not.
func FindExecutable(trustedPath string) (string, error) {
	if trustedPath != "" {
		if _, err := os.Stat(trustedPath); err == nil {
			return trustedPath, nil
		}
	}

	possiblePaths := []string{}
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		possiblePaths = append(possiblePaths, filepath.Join(localAppData, "Programs", "Ollama", "ollama.exe"))
	}
	possiblePaths = append(possiblePaths,
		`C:\Program Files\Ollama\ollama.exe`,
		`C:\Program Files (x86)\Ollama\ollama.exe`,
	)
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		possiblePaths = append(possiblePaths,
			filepath.Join(userProfile, "Ollama", "ollama.exe"),
		)
	}

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	if path, err := exec.LookPath("ollama.exe"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("runtime binary not found at trusted path %q, common installation directories, or PATH", trustedPath)
}
