// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for costgate CLI output.
//
// Colors are disabled for piped output, NO_COLOR is respected, and
// FORCE_COLOR overrides detection (https://no-color.org/).
package cli

import (
	"os"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal (interactive prompts possible).
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal (colored output allowed).
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

var (
	colorOnce    sync.Once
	colorProfile termenv.Profile
)

// GetColorProfile returns the color profile for stdout, honoring NO_COLOR
// and FORCE_COLOR. Computed once.
func GetColorProfile() termenv.Profile {
	colorOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorProfile = termenv.Ascii
		case os.Getenv("FORCE_COLOR") != "":
			colorProfile = termenv.ANSI256
		case !IsStdoutTTY():
			colorProfile = termenv.Ascii
		default:
			colorProfile = termenv.ColorProfile()
		}
	})
	return colorProfile
}

// ColorsEnabled reports whether styled output should be emitted.
func ColorsEnabled() bool {
	return GetColorProfile() != termenv.Ascii
}

// =============================================================================
// WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the floor used for wrapping.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the stdout width, clamped to the minimum.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// FitCell truncates s to the given display width, ellipsis included.
// Display width, not byte or rune count: CJK and emoji are double-width.
func FitCell(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// PadCell pads s to the given display width.
func PadCell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
