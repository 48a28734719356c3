// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// SANDBOX: Input validation ahead of the subprocess boundary
package sandbox

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxPromptLength is the hard prompt cap in characters.
const MaxPromptLength = 100_000

// allowedVendors is the fixed set of model vendors the sandbox will run.
// The list is deliberately compiled in: the allowlist must hold even when
// configuration or the catalog is wrong.
var allowedVendors = map[string]struct{}{
	"llama3":        {},
	"llama3.1":      {},
	"llama3.2":      {},
	"qwen2.5-coder": {},
	"codellama":     {},
	"mistral":       {},
	"phi3":          {},
	"gemma2":        {},
	"local-model":   {},
}

// modelIDPattern is the anchored vendor:size shape. Anchoring matters:
// nothing before the vendor, nothing after the size, so shell metacharacters
// and embedded commands can never ride along.
var modelIDPattern = regexp.MustCompile(`^([a-z0-9.-]+):([a-z0-9][a-z0-9.-]*)$`)

// =============================================================================
// PROVIDER ID
// =============================================================================

// validateProviderID enforces the vendor:size allowlist. Rejection
// guarantees no process was started and no other side effect occurred.
func validateProviderID(id string) error {
	m := modelIDPattern.FindStringSubmatch(id)
	if m == nil {
		return errs.Validation("sandbox.execute", "provider id %q does not match the vendor:size allowlist", util.TruncateRunes(id, 60))
	}
	if _, ok := allowedVendors[m[1]]; !ok {
		return errs.Validation("sandbox.execute", "vendor %q is not allowlisted", m[1])
	}
	return nil
}

// =============================================================================
// PROMPT
// =============================================================================

// validatePrompt enforces the character cap on the raw prompt.
func validatePrompt(prompt string) error {
	if n := util.RuneLen(prompt); n > MaxPromptLength {
		return errs.Validation("sandbox.execute", "prompt length %d exceeds cap %d", n, MaxPromptLength)
	}
	return nil
}

// sanitizePrompt normalizes to NFKC and strips NUL and all other control
// characters except tab and newline. Normalization runs first so a control
// character cannot be reassembled by a later decomposition.
func sanitizePrompt(prompt string) string {
	normalized := norm.NFKC.String(prompt)
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if r == 0 || unicode.IsControl(r) {
			return -1
		}
		return r
	}, normalized)
}
