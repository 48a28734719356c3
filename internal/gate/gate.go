// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gate implements the premium-tier permission gate.
//
// The gate is fail-secure: every internal fault (panic, throttle exhaustion,
// audit write failure) resolves to denied. There is no code path that grants
// premium access by accident; the only grant requires a might-justify-premium
// keyword match plus an explicit override flag in the task context.
package gate

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jeranaias/costgate/internal/provider"
	"github.com/jeranaias/costgate/internal/task"
)

// ============================================================================
// DECISION TYPES
// ============================================================================

// State is the gate's verdict for one premium candidate.
type State int

const (
	// StateDenied refuses premium for this task.
	StateDenied State = iota
	// StateGranted allows premium for this task.
	StateGranted
	// StateRequestRequired defers to a human. Absent an explicit override
	// flag, callers treat it as denied.
	StateRequestRequired
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateDenied:
		return "denied"
	case StateGranted:
		return "granted"
	case StateRequestRequired:
		return "request_required"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Decision is the gate's full answer: state, reason, and the provider to
// use instead when premium is refused.
type Decision struct {
	State               State  `json:"state"`
	Reason              string `json:"reason"`
	RecommendedProvider string `json:"recommended_provider,omitempty"`
}

// ============================================================================
// KEYWORD TABLES
// ============================================================================

// OverrideFlag is the task-context key for an explicit human override.
// Only "1" or "true" counts.
const OverrideFlag = "premium_override"

// routineKeywords mark low-risk work the baseline tier handles fine. They
// are checked first: a routine match denies premium even when justification
// keywords are also present, which is what defeats keyword stuffing.
var routineKeywords = []string{
	"read file", "list files", "copy", "rename", "typo", "spelling",
	"format", "lint", "sort", "what is", "simple", "summarize briefly",
}

// premiumKeywords mark work that might justify the premium tier. A match
// alone never grants: it produces request_required, and only the explicit
// override flag upgrades that to granted.
var premiumKeywords = []string{
	"security", "vulnerability", "penetration", "threat model", "compliance",
	"architecture", "critical", "production incident", "migration plan", "audit",
}

// ============================================================================
// GATE
// ============================================================================

// AuditSink receives exactly one record per gate invocation. Implemented by
// ledger.Ledger.
type AuditSink interface {
	RecordGateCheck(taskText, decision, reason, recommended string) error
}

// Gate authorizes premium-tier candidates. Safe for concurrent use.
type Gate struct {
	baselineID string
	limiter    *rate.Limiter
	audit      AuditSink
}

// New creates a gate recommending the given baseline on refusal. The
// limiter bounds evaluation rate; exhausting it is an internal fault and
// denies.
func New(baselineID string, ratePerSec float64, burst int, audit AuditSink) *Gate {
	return &Gate{
		baselineID: baselineID,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), burst),
		audit:      audit,
	}
}

// Check authorizes one premium candidate for one task. Callers only gate
// premium candidates; anything else is a caller bug and denies.
//
// Rule order:
//  1. Routine keyword -> denied, baseline recommended
//  2. Might-justify keyword -> granted with override flag, else request_required
//  3. Default -> denied
//
// Every invocation produces exactly one audit record. Any internal fault
// resolves to denied with a distinct log line.
func (g *Gate) Check(candidate *provider.Config, t task.Task) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("GATE: internal fault during premium check: %v", r)
			d = g.deny("internal gate fault; premium access denied")
			g.recordBestEffort(t.Text, d)
		}
	}()

	if candidate == nil || candidate.Tier != provider.TierPremium {
		d = g.deny("gate evaluates premium candidates only")
		return g.record(t.Text, d)
	}

	if !g.limiter.Allow() {
		log.Printf("GATE: evaluation rate limit exceeded, denying premium")
		d = g.deny("gate throttled; premium access denied")
		return g.record(t.Text, d)
	}

	d = g.evaluate(t)
	return g.record(t.Text, d)
}

func (g *Gate) evaluate(t task.Task) Decision {
	lower := strings.ToLower(t.Text)

	for _, kw := range routineKeywords {
		if strings.Contains(lower, kw) {
			return g.deny(fmt.Sprintf("task matches routine pattern %q; baseline tier is sufficient", kw))
		}
	}

	for _, kw := range premiumKeywords {
		if strings.Contains(lower, kw) {
			if t.ContextFlag(OverrideFlag) {
				return Decision{
					State:  StateGranted,
					Reason: fmt.Sprintf("premium justified (%q) with explicit override", kw),
				}
			}
			return Decision{
				State:               StateRequestRequired,
				Reason:              fmt.Sprintf("premium may be justified (%q); explicit approval required", kw),
				RecommendedProvider: g.baselineID,
			}
		}
	}

	return g.deny("no premium justification found")
}

func (g *Gate) deny(reason string) Decision {
	return Decision{
		State:               StateDenied,
		Reason:              reason,
		RecommendedProvider: g.baselineID,
	}
}

// record writes the mandatory audit record. A failed write is an internal
// fault: the caller gets denied, and the failure is logged distinctly.
func (g *Gate) record(taskText string, d Decision) Decision {
	if err := g.audit.RecordGateCheck(taskText, d.State.String(), d.Reason, d.RecommendedProvider); err != nil {
		log.Printf("GATE: audit record failed, denying premium: %v", err)
		return g.deny("gate audit unavailable; premium access denied")
	}
	return d
}

// recordBestEffort records after a recovered panic. A second fault here
// must not escape the gate.
func (g *Gate) recordBestEffort(taskText string, d Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("GATE: audit record failed after fault: %v", r)
		}
	}()
	if err := g.audit.RecordGateCheck(taskText, d.State.String(), d.Reason, d.RecommendedProvider); err != nil {
		log.Printf("GATE: audit record failed after fault: %v", err)
	}
}
