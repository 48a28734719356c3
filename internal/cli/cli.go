// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and usage text for costgate.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdRoute
	CmdExec
	CmdStats
	CmdShell
	CmdDoctor
	CmdVerify
	CmdVersion
)

const usageText = `costgate - cost-aware task routing with a sandboxed local tier

Routes work to the cheapest capable provider tier (local model, baseline,
or gated premium) and executes local models inside a hardened sandbox.

USAGE:
  costgate <command> [options]

COMMANDS:
  route <text>           Classify the task and print the routing decision
  exec <model> <prompt>  Run a prompt on an allowlisted local model
  stats                  Print aggregate usage statistics
  shell                  Interactive session (route/exec/stats/history)
  doctor                 Check runtime binary, runtime API, and data dir
  verify                 Verify audit log HMAC signatures
  version                Print version information
  help                   Show this help

OPTIONS:
  --json                 Machine-readable output (route, stats)
  --history N            Include the N most recent decisions (stats)
  --max-output N         Cap sandbox output at N units (exec)
  --config PATH          Explicit configuration file

EXAMPLES:
  costgate route "Read a configuration file and extract settings"
  costgate route --json "Review this pull request"
  costgate exec llama3.2:3b "Summarize the attached notes"
  costgate stats --history 10

CONFIGURATION:
  ~/.costgate/config.toml (or config.json), overridable with
  COSTGATE_CONFIG, COSTGATE_RUNTIME_PATH, COSTGATE_RUNTIME_URL,
  COSTGATE_DATA_DIR, COSTGATE_PREMIUM_POLICY, COSTGATE_BASELINE.
`

// Parse maps os.Args to a command plus its remaining arguments.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdHelp, nil
	}
	switch args[0] {
	case "route":
		return CmdRoute, args[1:]
	case "exec", "run":
		return CmdExec, args[1:]
	case "stats":
		return CmdStats, args[1:]
	case "shell":
		return CmdShell, args[1:]
	case "doctor":
		return CmdDoctor, args[1:]
	case "verify":
		return CmdVerify, args[1:]
	case "version", "--version", "-v":
		return CmdVersion, args[1:]
	case "help", "--help", "-h":
		return CmdHelp, args[1:]
	default:
		fmt.Fprintf(os.Stderr, "costgate: unknown command %q\n\n", args[0])
		return CmdHelp, nil
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleVersion prints build information.
func HandleVersion() {
	fmt.Printf("costgate %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
