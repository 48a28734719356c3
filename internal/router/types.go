// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ROUTER: Decision type and engine dependencies
package router

import (
	"fmt"

	"github.com/jeranaias/costgate/internal/gate"
	"github.com/jeranaias/costgate/internal/provider"
	"github.com/jeranaias/costgate/internal/task"
)

// ============================================================================
// ROUTING DECISION
// ============================================================================

// Decision is the routing engine's answer for one task.
type Decision struct {
	// ProviderID is the selected provider.
	ProviderID string `json:"provider_id"`

	// Tier is the selected provider's tier name.
	Tier string `json:"tier"`

	// Category is the classified task category.
	Category string `json:"category"`

	// Confidence is the classification confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// EstimatedCost is the projected cost in cents, never negative.
	EstimatedCost float64 `json:"estimated_cost"`

	// CostSavingsPct is the saving against the designated baseline in
	// [0, 100].
	CostSavingsPct float64 `json:"cost_savings_pct"`

	// Reasoning explains the selection: category, confidence, savings,
	// and any premium downgrade.
	Reasoning string `json:"reasoning"`

	// Downgraded is true when a premium candidate was dropped by the
	// permission gate and the decision fell back.
	Downgraded bool `json:"downgraded,omitempty"`
}

// String returns a compact single-line form for logs.
func (d Decision) String() string {
	return fmt.Sprintf("%s [%s] cost=%.4f¢ saves=%.0f%% (%s %.2f)",
		d.ProviderID, d.Tier, d.EstimatedCost, d.CostSavingsPct, d.Category, d.Confidence)
}

// ============================================================================
// ENGINE DEPENDENCIES
// ============================================================================

// PermissionGate authorizes premium-tier candidates. Implemented by
// gate.Gate; declared here so tests can substitute outcomes.
type PermissionGate interface {
	Check(candidate *provider.Config, t task.Task) gate.Decision
}

// UsageRecorder persists routing audit records. Implemented by
// ledger.Ledger.
type UsageRecorder interface {
	RecordRouting(taskText, providerID, reasoning string, savingsPct float64)
}

// DecisionSink receives decided routes for history storage. Implemented by
// storage.History; optional.
type DecisionSink interface {
	SaveDecision(t task.Task, d Decision) error
}

// Options configures engine construction.
type Options struct {
	// PremiumPolicy is "strict" (silent downgrade) or "prompt" (downgrade
	// surfaced in reasoning). Neither grants premium without an override.
	PremiumPolicy string

	// History receives decided routes; nil disables history.
	History DecisionSink
}
