// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// LEDGER: Audit record format and secret redaction
package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/costgate/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxExcerptLength caps the task excerpt persisted with each record.
const MaxExcerptLength = 100

// Actions recorded in the audit log.
const (
	ActionRoute     = "ROUTE"
	ActionGateCheck = "GATE_CHECK"
	ActionExecute   = "EXECUTE"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is one append-only audit entry. Records are never mutated or
// deleted after Append.
type Record struct {
	Timestamp           time.Time
	SessionID           string
	Action              string
	TaskExcerpt         string
	Decision            string
	Reason              string
	RecommendedProvider string

	// SavingsPct feeds the aggregate for ROUTE records only.
	SavingsPct float64
}

// ToLogLine formats the record as a single pipe-separated audit line.
// The excerpt is quoted; empty fields stay empty rather than shifting
// columns, so the line always has the same shape.
func (r *Record) ToLogLine() string {
	excerpt := ""
	if r.TaskExcerpt != "" {
		excerpt = fmt.Sprintf("%q", r.TaskExcerpt)
	}
	return fmt.Sprintf("%s | %s | %s | %s | %s | %s | %s",
		r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		r.SessionID,
		r.Action,
		excerpt,
		r.Decision,
		r.Reason,
		r.RecommendedProvider,
	)
}

// =============================================================================
// SECRET REDACTION
// =============================================================================

// secretPatterns match common credential shapes. Task text can contain
// anything; nothing secret-shaped may reach the audit file.
var secretPatterns = []struct {
	name    string
	pattern *regexp.Regexp
	replace string
}{
	{"Anthropic", regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-]{20,}`), "[ANTHROPIC_KEY_REDACTED]"},
	{"OpenAI", regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), "[API_KEY_REDACTED]"},
	{"GitHub", regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36,}`), "[GITHUB_TOKEN_REDACTED]"},
	{"AWS", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "[AWS_KEY_REDACTED]"},
	{"Bearer", regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-_.]+`), "Bearer [TOKEN_REDACTED]"},
	{"JWT", regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), "[JWT_REDACTED]"},
	{"Password", regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*\S+`), "[PASSWORD_REDACTED]"},
}

// Redact replaces secret-shaped substrings in s.
func Redact(s string) string {
	for _, sp := range secretPatterns {
		s = sp.pattern.ReplaceAllString(s, sp.replace)
	}
	return s
}

// excerpt redacts and truncates task text for persistence. Redaction runs
// first: truncation must never split a secret in a way that defeats the
// pattern match.
func excerpt(taskText string) string {
	clean := Redact(strings.ReplaceAll(taskText, "\n", " "))
	return util.TruncateRunes(clean, MaxExcerptLength)
}
