// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestArgParser_FlagsAndPositional(t *testing.T) {
	p := NewArgParser([]string{"--config", "/tmp/c.toml", "read", "the", "file"})

	if got := p.Flag("config"); got != "/tmp/c.toml" {
		t.Errorf("Flag(config) = %q", got)
	}
	if got := p.PositionalJoined(); got != "read the file" {
		t.Errorf("PositionalJoined() = %q", got)
	}
	if n := len(p.Positional()); n != 3 {
		t.Errorf("len(Positional()) = %d, want 3", n)
	}
}

func TestArgParser_EqualsForm(t *testing.T) {
	p := NewArgParser([]string{"--history=5", "--json=true", "--override=false"})

	if got := p.IntFlag("history", 0); got != 5 {
		t.Errorf("IntFlag(history) = %d, want 5", got)
	}
	if !p.BoolFlag("json") {
		t.Error("json should be true")
	}
	if p.BoolFlag("override") {
		t.Error("override should be false")
	}
}

func TestArgParser_KnownBoolFlagsDoNotSwallowPositional(t *testing.T) {
	// --json takes no value; the task text after it stays positional.
	p := NewArgParser([]string{"--json", "Review", "this", "PR"})

	if !p.BoolFlag("json") {
		t.Error("json flag not set")
	}
	if got := p.PositionalJoined(); got != "Review this PR" {
		t.Errorf("PositionalJoined() = %q", got)
	}
}

func TestArgParser_TrailingFlagIsBool(t *testing.T) {
	p := NewArgParser([]string{"stats", "--verbose"})

	if !p.BoolFlag("verbose") {
		t.Error("trailing flag should parse as bool")
	}
	if got := p.PositionalJoined(); got != "stats" {
		t.Errorf("PositionalJoined() = %q", got)
	}
}

func TestArgParser_NumericDefaults(t *testing.T) {
	p := NewArgParser([]string{"--history", "abc", "--temperature", "0.7"})

	if got := p.IntFlag("history", 20); got != 20 {
		t.Errorf("malformed int should use default, got %d", got)
	}
	if got := p.IntFlag("missing", 7); got != 7 {
		t.Errorf("missing int should use default, got %d", got)
	}
	if got := p.FloatFlag("temperature", 0); got != 0.7 {
		t.Errorf("FloatFlag(temperature) = %v, want 0.7", got)
	}
	if got := p.FloatFlag("missing", 1.5); got != 1.5 {
		t.Errorf("missing float should use default, got %v", got)
	}
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
		rest int
	}{
		{[]string{"costgate"}, CmdHelp, 0},
		{[]string{"costgate", "route", "some", "task"}, CmdRoute, 2},
		{[]string{"costgate", "exec", "llama3.2:3b", "hi"}, CmdExec, 2},
		{[]string{"costgate", "run", "llama3.2:3b", "hi"}, CmdExec, 2},
		{[]string{"costgate", "stats"}, CmdStats, 0},
		{[]string{"costgate", "shell"}, CmdShell, 0},
		{[]string{"costgate", "doctor"}, CmdDoctor, 0},
		{[]string{"costgate", "verify"}, CmdVerify, 0},
		{[]string{"costgate", "version"}, CmdVersion, 0},
		{[]string{"costgate", "--version"}, CmdVersion, 0},
		{[]string{"costgate", "-h"}, CmdHelp, 0},
		{[]string{"costgate", "frobnicate"}, CmdHelp, 0},
	}

	orig := os.Args
	defer func() { os.Args = orig }()
	for _, tt := range tests {
		os.Args = tt.args
		cmd, rest := Parse()
		if cmd != tt.want {
			t.Errorf("Parse(%v) = %v, want %v", tt.args, cmd, tt.want)
		}
		if len(rest) != tt.rest {
			t.Errorf("Parse(%v) rest = %d args, want %d", tt.args, len(rest), tt.rest)
		}
	}
}

// =============================================================================
// CELL FORMATTING
// =============================================================================

func TestFitCell(t *testing.T) {
	if got := FitCell("short", 10); got != "short" {
		t.Errorf("FitCell(short) = %q", got)
	}
	if got := FitCell("a very long provider name", 10); got != "a very lo…" {
		t.Errorf("FitCell(long) = %q", got)
	}
	// Double-width runes count as two columns.
	if got := FitCell("日本語テキスト", 6); got != "日本…" {
		t.Errorf("FitCell(cjk) = %q", got)
	}
}

func TestPadCell(t *testing.T) {
	if got := PadCell("ab", 5); got != "ab   " {
		t.Errorf("PadCell(ab, 5) = %q", got)
	}
	if got := len([]rune(PadCell("toolongvalue", 5))); got != 5 {
		t.Errorf("PadCell should truncate to width, got %d runes", got)
	}
}
