// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - TTY-aware model output rendering.
package cli

import (
	"github.com/charmbracelet/glamour"
)

// renderOutput renders model output as markdown when stdout is a terminal
// and returns it untouched otherwise, so piped output stays clean.
func renderOutput(output string) string {
	if !IsStdoutTTY() {
		return output
	}
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return output
	}
	rendered, err := renderer.Render(output)
	if err != nil {
		return output
	}
	return rendered
}
