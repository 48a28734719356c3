// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for costgate commands.
//
// Every command shares one parser so flag handling stays consistent:
//   - Long flags: --flag value or --flag=value
//   - Boolean flags: --flag (no value)
//   - Positional arguments: everything else, in order
package cli

import (
	"strconv"
	"strings"
)

// ArgParser provides unified argument parsing for CLI commands.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// knownBoolFlags are flags that never take a value, so a following
// positional argument is not swallowed as their value.
var knownBoolFlags = map[string]struct{}{
	"json":     {},
	"override": {},
}

// NewArgParser parses raw arguments.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		if strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			name := strings.TrimLeft(parts[0], "-")
			if parts[1] == "true" || parts[1] == "false" {
				p.boolFlags[name] = parts[1] == "true"
			} else {
				p.flags[name] = parts[1]
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		_, boolOnly := knownBoolFlags[name]
		if !boolOnly && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i += 2
		} else {
			p.boolFlags[name] = true
			i++
		}
	}
	return p
}

// Flag returns the value of a string flag, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// IntFlag returns the value of an integer flag, or def when absent or
// malformed.
func (p *ArgParser) IntFlag(name string, def int) int {
	v, ok := p.flags[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// FloatFlag returns the value of a float flag, or def when absent or
// malformed.
func (p *ArgParser) FloatFlag(name string, def float64) float64 {
	v, ok := p.flags[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// Positional returns all positional arguments in order.
func (p *ArgParser) Positional() []string {
	return p.positional
}

// PositionalJoined returns the positional arguments joined with spaces.
// Lets users skip shell quoting: `costgate route read the config file`.
func (p *ArgParser) PositionalJoined() string {
	return strings.Join(p.positional, " ")
}
