// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the costgate command-line surface.
//
// Commands:
//
//	route <text>     classify and route a task, print the decision
//	exec <model> <prompt>  run a prompt on a local model in the sandbox
//	stats            print the usage aggregate (and optional history)
//	shell            interactive session with config watching
//	doctor           environment checks
//	version          build information
//
// Output is TTY-aware: colors via lipgloss with termenv profile detection,
// markdown rendering via glamour only when stdout is a terminal, and a
// --json flag on route/stats for machine consumption. Fatal configuration
// errors (zero providers) exit non-zero with a single stderr line.
package cli
